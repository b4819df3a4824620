package submission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInputValidator_Validate(t *testing.T) {
	v := &InputValidator{now: func() time.Time {
		return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	}}

	scope := int64(7)
	badScope := int64(0)
	proof := "proofs/1/2025/03/01/a.jpg"
	badProof := "../etc/passwd"

	tests := []struct {
		name    string
		in      Input
		wantErr bool
	}{
		{"valid", Input{ForDate: "2025-03-01", Steps: 8000, ScopeID: &scope, ProofPath: &proof}, false},
		{"tomorrow is allowed", Input{ForDate: "2025-03-11", Steps: 1}, false},
		{"two days ahead", Input{ForDate: "2025-03-12", Steps: 1}, true},
		{"malformed date", Input{ForDate: "03/01/2025", Steps: 100}, true},
		{"zero steps", Input{ForDate: "2025-03-01", Steps: 0}, true},
		{"negative steps", Input{ForDate: "2025-03-01", Steps: -5}, true},
		{"too many steps", Input{ForDate: "2025-03-01", Steps: MaxSteps + 1}, true},
		{"path traversal", Input{ForDate: "2025-03-01", Steps: 10, ProofPath: &badProof}, true},
		{"zero scope", Input{ForDate: "2025-03-01", Steps: 10, ScopeID: &badScope}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
