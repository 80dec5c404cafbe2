package service

import (
	"time"

	"github.com/afyacard/healthcard-backend/internal/model"
)

// CampaignWindow computes the UTC eligibility window for one campaign at
// the given instant. The window is the full business-timezone calendar day
// at the campaign's offset from "today", inclusive on both ends:
// [startOfDay, startOfNextDay - 1ms]. Days are taken in the business
// timezone, never in raw UTC and never in the server's local zone; getting
// this wrong shifts every boundary patient into the wrong day.
func CampaignWindow(now time.Time, campaign model.CampaignType, loc *time.Location) (from, to time.Time) {
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	day = day.AddDate(0, 0, campaign.OffsetDays())

	from = day.UTC()
	to = day.AddDate(0, 0, 1).Add(-time.Millisecond).UTC()
	return from, to
}
