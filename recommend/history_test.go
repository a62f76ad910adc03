package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func rating(v int) *int { return &v }

func TestHistoryScores(t *testing.T) {
	tests := []struct {
		name    string
		records []ParticipationRecord
		want    SportScores
	}{
		{
			name:    "no records",
			records: nil,
			want:    SportScores{},
		},
		{
			name:    "one confirmed unrated",
			records: []ParticipationRecord{{EventID: 1, SportID: 7, Status: ParticipationConfirmed}},
			want:    SportScores{7: 3.5},
		},
		{
			name:    "one confirmed rated five",
			records: []ParticipationRecord{{EventID: 1, SportID: 7, Status: ParticipationConfirmed, Rating: rating(5)}},
			want:    SportScores{7: 6.5},
		},
		{
			name:    "one confirmed rated three",
			records: []ParticipationRecord{{EventID: 1, SportID: 7, Status: ParticipationConfirmed, Rating: rating(3)}},
			want:    SportScores{7: 5.5},
		},
		{
			name:    "only a cancellation",
			records: []ParticipationRecord{{EventID: 1, SportID: 9, Status: ParticipationCancelled}},
			want:    SportScores{9: -1.0},
		},
		{
			name: "pending and rejected are ignored",
			records: []ParticipationRecord{
				{EventID: 1, SportID: 2, Status: ParticipationPending},
				{EventID: 2, SportID: 3, Status: ParticipationRejected},
			},
			want: SportScores{},
		},
		{
			name: "mixed in one sport",
			records: []ParticipationRecord{
				{EventID: 1, SportID: 4, Status: ParticipationConfirmed},
				{EventID: 2, SportID: 4, Status: ParticipationConfirmed, Rating: rating(4)},
				{EventID: 3, SportID: 4, Status: ParticipationCancelled},
			},
			// (3 + 3+2+1 - 1) / 2 + min(2*0.5, 3)
			want: SportScores{4: 5.0},
		},
		{
			name: "net zero total is dropped",
			records: []ParticipationRecord{
				{EventID: 1, SportID: 4, Status: ParticipationConfirmed},
				{EventID: 2, SportID: 4, Status: ParticipationCancelled},
				{EventID: 3, SportID: 4, Status: ParticipationCancelled},
				{EventID: 4, SportID: 4, Status: ParticipationCancelled},
			},
			want: SportScores{},
		},
		{
			name: "separate sports",
			records: []ParticipationRecord{
				{EventID: 1, SportID: 1, Status: ParticipationConfirmed},
				{EventID: 2, SportID: 2, Status: ParticipationCancelled},
			},
			want: SportScores{1: 3.5, 2: -1.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HistoryScores(tt.records)
			assert.Len(t, got, len(tt.want))
			for sportID, want := range tt.want {
				assert.InDelta(t, want, got[sportID], 1e-9, "sport %d", sportID)
			}
		})
	}
}

func TestHistoryScores_Bounded(t *testing.T) {
	records := make([]ParticipationRecord, 0, 40)
	for i := 0; i < 40; i++ {
		records = append(records, ParticipationRecord{EventID: i, SportID: 1, Status: ParticipationConfirmed, Rating: rating(5)})
	}

	got := HistoryScores(records)

	assert.GreaterOrEqual(t, got[1], 0.0)
	assert.LessOrEqual(t, got[1], 10.0)
	// 6 per event on average plus the capped activity bonus.
	assert.InDelta(t, 9.0, got[1], 1e-9)
}

func TestSportScores_GetMissing(t *testing.T) {
	assert.Equal(t, 0.0, SportScores{1: 2}.Get(5))
}
