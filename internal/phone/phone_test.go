package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "already digits", raw: "254712345678", want: "254712345678"},
		{name: "international format", raw: "+254 712 345 678", want: "254712345678"},
		{name: "dashes and parens", raw: "(0712) 345-678", want: "0712345678"},
		{name: "too short", raw: "12345", wantErr: true},
		{name: "letters only", raw: "not-a-number", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "exactly minimum", raw: "071234567", want: "071234567"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("+254712345678"))
	assert.False(t, IsValid("12"))
}
