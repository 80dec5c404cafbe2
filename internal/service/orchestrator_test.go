package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/afyacard/healthcard-backend/internal/errors"
	"github.com/afyacard/healthcard-backend/internal/model"
	"github.com/afyacard/healthcard-backend/internal/repository"
	"github.com/afyacard/healthcard-backend/internal/service"
)

func TestRunRenewalCampaigns_DisabledReturnsCleanly(t *testing.T) {
	cfg := testConfig()
	cfg.Notifications.Enabled = false

	patients := &fakePatientRepo{patients: []repository.EligiblePatient{eligiblePatient(1, "254712345678")}}
	ledger := newFakeLedger()
	sender := &fakeSender{}

	orch := &service.Orchestrator{Service: newTestService(t, patients, ledger, sender, cfg)}
	summary, err := orch.RunRenewalCampaigns()
	require.NoError(t, err, "a disabled kill switch is not an error")

	assert.True(t, summary.Disabled)
	assert.Empty(t, patients.calls, "no selector queries while disabled")
	assert.Empty(t, sender.calls, "no outbound calls while disabled")
	assert.Empty(t, ledger.records, "no store writes while disabled")
}

func TestRunRenewalCampaigns_RunsCampaignsInOrder(t *testing.T) {
	patients := &fakePatientRepo{}
	orch := &service.Orchestrator{Service: newTestService(t, patients, newFakeLedger(), &fakeSender{}, testConfig())}

	summary, err := orch.RunRenewalCampaigns()
	require.NoError(t, err)

	assert.Equal(t, []model.CampaignType{
		model.CampaignRenewalD7,
		model.CampaignRenewalD0,
		model.CampaignRenewalD30,
	}, patients.calls)
	assert.Len(t, summary.Campaigns, 3)
	assert.NotEmpty(t, summary.RunID)
}

func TestRunRenewalCampaigns_SelectorFailureAbortsRun(t *testing.T) {
	patients := &fakePatientRepo{err: errors.New("db down")}
	orch := &service.Orchestrator{Service: newTestService(t, patients, newFakeLedger(), &fakeSender{}, testConfig())}

	_, err := orch.RunRenewalCampaigns()
	assert.ErrorContains(t, err, "db down")
	assert.Len(t, patients.calls, 1, "the remaining campaigns must not run")
}

func TestRunRenewalCampaigns_MissingGatewayConfigFailsBeforeProcessing(t *testing.T) {
	cfg := testConfig()
	cfg.Gateway.AccessToken = ""

	patients := &fakePatientRepo{}
	orch := &service.Orchestrator{Service: newTestService(t, patients, newFakeLedger(), &fakeSender{}, cfg)}

	_, err := orch.RunRenewalCampaigns()
	var missing *appErrors.ErrMissingGatewayConfig
	require.ErrorAs(t, err, &missing)
	assert.Empty(t, patients.calls)
}

func TestRunRenewalCampaigns_NonProdRequiresTestDestination(t *testing.T) {
	cfg := testConfig()
	cfg.Notifications.Environment = "dev"
	cfg.Notifications.TestDestination = ""

	patients := &fakePatientRepo{}
	orch := &service.Orchestrator{Service: newTestService(t, patients, newFakeLedger(), &fakeSender{}, cfg)}

	_, err := orch.RunRenewalCampaigns()
	var missing *appErrors.ErrMissingGatewayConfig
	require.ErrorAs(t, err, &missing)
	assert.Empty(t, patients.calls, "non-prod must never process patients without a redirect target")
}
