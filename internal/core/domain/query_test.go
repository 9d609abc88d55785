package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeedback_Validate(t *testing.T) {
	tests := []struct {
		name    string
		fb      Feedback
		wantErr bool
	}{
		{"lowest rating", Feedback{QueryID: 1, Rating: MinRating}, false},
		{"highest rating", Feedback{QueryID: 1, Rating: MaxRating, Comment: "spot on"}, false},
		{"rating too low", Feedback{QueryID: 1, Rating: 0}, true},
		{"rating too high", Feedback{QueryID: 1, Rating: 6}, true},
		{"missing query", Feedback{Rating: 3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fb.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
