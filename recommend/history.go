package recommend

import "math"

const (
	confirmedPoints   = 3.0
	ratedPoints       = 2.0
	highRatingPoints  = 1.0
	highRatingMin     = 4
	cancelledPenalty  = 1.0
	activityBonusStep = 0.5
	activityBonusCap  = 3.0
	historyScoreCap   = 10.0
)

// SportScores maps a sport ID to an affinity score.
type SportScores map[int]float64

// Get returns the score for a sport, or 0 when the sport has no entry.
func (s SportScores) Get(sportID int) float64 {
	return s[sportID]
}

// HistoryScores reduces participation records to a per-sport affinity.
//
// Confirmed participations earn points (more when rated, more again when
// rated 4 or 5) and count towards an activity bonus; cancellations cost a
// point. Pending and rejected records are ignored. Sports whose running total
// nets to zero are left out, so a cancellation-only sport keeps its negative
// score while an unrelated sport never appears.
func HistoryScores(records []ParticipationRecord) SportScores {
	raw := make(map[int]float64)
	counts := make(map[int]int)

	for _, rec := range records {
		switch rec.Status {
		case ParticipationConfirmed:
			raw[rec.SportID] += confirmedPoints
			counts[rec.SportID]++
			if rec.Rating != nil {
				raw[rec.SportID] += ratedPoints
				if *rec.Rating >= highRatingMin {
					raw[rec.SportID] += highRatingPoints
				}
			}
		case ParticipationCancelled:
			raw[rec.SportID] -= cancelledPenalty
		}
	}

	scores := make(SportScores, len(raw))
	for sportID, total := range raw {
		if total == 0 {
			continue
		}
		count := counts[sportID]
		avg := total / float64(max(count, 1))
		bonus := math.Min(float64(count)*activityBonusStep, activityBonusCap)
		scores[sportID] = math.Min(avg+bonus, historyScoreCap)
	}
	return scores
}
