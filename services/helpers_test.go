package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dosada05/sport-events/models"
)

func TestRoundTo_HalfToEven(t *testing.T) {
	assert.Equal(t, 6.12, roundTo(6.125, 2))
	assert.Equal(t, 6.38, roundTo(6.375, 2))
	assert.Equal(t, 1.5, roundTo(1.5, 2))
}

func TestIsValidParticipantTransition(t *testing.T) {
	tests := []struct {
		from, to models.ParticipantStatus
		want     bool
	}{
		{models.ParticipantPending, models.ParticipantConfirmed, true},
		{models.ParticipantPending, models.ParticipantRejected, true},
		{models.ParticipantConfirmed, models.ParticipantCancelled, true},
		{models.ParticipantPending, models.ParticipantCancelled, false},
		{models.ParticipantRejected, models.ParticipantConfirmed, false},
		{models.ParticipantCancelled, models.ParticipantConfirmed, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isValidParticipantTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
