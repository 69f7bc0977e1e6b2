package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marksight/pkg/contracts/domain"
)

func TestValidateSections(t *testing.T) {
	v := NewConfigValidator(nil)

	tests := []struct {
		name    string
		cfg     domain.SectionConfig
		wantErr bool
	}{
		{
			name: "valid ranges and explicit",
			cfg: domain.SectionConfig{
				Ranges:   map[string]domain.SectionRange{"A": {Start: "1RV21CS001", End: "1RV21CS060"}},
				Explicit: map[string]string{"1RV21CS900": "C"},
			},
		},
		{
			name: "empty config is valid",
			cfg:  domain.SectionConfig{},
		},
		{
			name: "missing range end",
			cfg: domain.SectionConfig{
				Ranges: map[string]domain.SectionRange{"A": {Start: "1RV21CS001"}},
			},
			wantErr: true,
		},
		{
			name: "range bounds without digits",
			cfg: domain.SectionConfig{
				Ranges: map[string]domain.SectionRange{"A": {Start: "ABC", End: "XYZ"}},
			},
			wantErr: true,
		},
		{
			name: "empty section name",
			cfg: domain.SectionConfig{
				Ranges: map[string]domain.SectionRange{" ": {Start: "1", End: "60"}},
			},
			wantErr: true,
		},
		{
			name: "empty explicit section",
			cfg: domain.SectionConfig{
				Explicit: map[string]string{"1RV21CS001": " "},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSections(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateCredits(t *testing.T) {
	v := NewConfigValidator(nil)

	assert.NoError(t, v.ValidateCredits(domain.CreditConfig{"CS301": 4, "CS302": 0}))
	assert.NoError(t, v.ValidateCredits(nil))

	assert.Error(t, v.ValidateCredits(domain.CreditConfig{"CS301": 5}), "weight above band")
	assert.Error(t, v.ValidateCredits(domain.CreditConfig{"CS301": -1}), "negative weight")
	assert.Error(t, v.ValidateCredits(domain.CreditConfig{" ": 3}), "empty code")
}
