package bulletin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestMovement verifies month-over-month movement labels
func TestMovement(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"forward movement", "2023-01-01", "2023-02-01", "+31"},
		{"retrogression in days", "2023-02-01", "2023-01-01", "-31"},
		{"no movement", "2023-01-01", "2023-01-01", "0"},
		{"stays current", "C", "C", "Current"},
		{"became current", "2023-01-01", "C", "Became Current"},
		{"retrogressed from current", "C", "2023-01-01", "Retrogressed"},
		{"unavailable has no delta", "U", "2023-01-01", ""},
		{"became unavailable has no delta", "2023-01-01", "U", ""},
		{"missing side", "", "2023-01-01", ""},
		{"unparseable passthrough value", "PENDING", "2023-01-01", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Movement(tt.a, tt.b))
		})
	}
}
