package recommend

import "math"

const (
	maxDistancePoints = 5.0
	urgentFillRatio   = 0.8
	urgentFillPoints  = 2.0
	busyFillRatio     = 0.5
	busyFillPoints    = 1.0
)

// ScoreEvent computes the additive score of one candidate for a user.
//
// pref may be nil when the user declared nothing for the candidate's sport.
// ok is false when the user has a home location and the candidate lies
// beyond the effective search radius; such candidates must be dropped.
func ScoreEvent(user UserProfile, pref *SportPreference, historyScore float64, c Candidate) (score float64, distanceKm *float64, ok bool) {
	if pref != nil {
		score += float64(pref.InterestLevel)
		score += SkillMatchScore(pref.SkillLevel, c.Difficulty)
	}

	score += historyScore

	if user.HasHome() {
		d := DistanceKm(*user.Latitude, *user.Longitude, c.Latitude, c.Longitude)
		radius := user.EffectiveRadiusKm()
		if d > radius {
			return 0, nil, false
		}
		score += math.Max(0, maxDistancePoints*(1-d/radius))
		rounded := roundTo(d, 1)
		distanceKm = &rounded
	}

	score += fillUrgency(c.ConfirmedCount, c.MaxParticipants)

	return roundTo(score, 2), distanceKm, true
}

func fillUrgency(confirmed, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	ratio := float64(confirmed) / float64(capacity)
	switch {
	case ratio >= urgentFillRatio:
		return urgentFillPoints
	case ratio >= busyFillRatio:
		return busyFillPoints
	default:
		return 0
	}
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}
