package recommend

import (
	"context"
	"fmt"
	"sort"
)

// CandidateQuery describes the candidate pool requested from a supplier.
//
// Suppliers must only return public, upcoming events that are not full.
// An empty SportIDs means no sport filter (the fallback pool).
type CandidateQuery struct {
	SportIDs        []int
	ExcludeEventIDs []int
	// Limit caps the number of rows; 0 means no limit.
	Limit int
}

// CandidateSupplier loads candidate events, typically from the database.
type CandidateSupplier interface {
	Candidates(ctx context.Context, q CandidateQuery) ([]Candidate, error)
}

// CandidateSupplierFunc adapts a function to CandidateSupplier.
type CandidateSupplierFunc func(ctx context.Context, q CandidateQuery) ([]Candidate, error)

func (f CandidateSupplierFunc) Candidates(ctx context.Context, q CandidateQuery) ([]Candidate, error) {
	return f(ctx, q)
}

// Input holds the user snapshot for one pass.
type Input struct {
	User           UserProfile
	Preferences    []SportPreference
	Participations []ParticipationRecord
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultMaxResults sets the cap used when Recommend is called with maxResults <= 0.
func WithDefaultMaxResults(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.defaultMaxResults = n
		}
	}
}

// Engine runs the recommendation pipeline. It holds no per-user state and is
// safe for concurrent use as long as the supplier is.
type Engine struct {
	supplier          CandidateSupplier
	defaultMaxResults int
}

// NewEngine creates an Engine pulling candidates from supplier.
func NewEngine(supplier CandidateSupplier, opts ...Option) *Engine {
	e := &Engine{
		supplier:          supplier,
		defaultMaxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend ranks candidate events for the user in in.
//
// Users with neither preferences nor history get the generic pool unscored.
// Otherwise candidates for the relevant sports are scored, events beyond the
// search radius are dropped, and the rest are sorted by score (ties: earlier
// start, then lower event ID) and truncated to maxResults. Supplier errors
// are returned wrapped.
func (e *Engine) Recommend(ctx context.Context, in Input, maxResults int) (*Result, error) {
	if maxResults <= 0 {
		maxResults = e.defaultMaxResults
	}

	history := HistoryScores(in.Participations)

	prefs := make(map[int]*SportPreference, len(in.Preferences))
	sportIDs := make([]int, 0, len(in.Preferences)+len(history))
	for i := range in.Preferences {
		p := &in.Preferences[i]
		if _, dup := prefs[p.SportID]; dup {
			continue
		}
		prefs[p.SportID] = p
		sportIDs = append(sportIDs, p.SportID)
	}
	historyOnly := make([]int, 0, len(history))
	for sportID := range history {
		if _, ok := prefs[sportID]; !ok {
			historyOnly = append(historyOnly, sportID)
		}
	}
	sort.Ints(historyOnly)
	sportIDs = append(sportIDs, historyOnly...)

	if len(sportIDs) == 0 {
		return e.fallback(ctx, maxResults)
	}

	joined := make(map[int]struct{}, len(in.Participations))
	exclude := make([]int, 0, len(in.Participations))
	for _, rec := range in.Participations {
		if _, ok := joined[rec.EventID]; ok {
			continue
		}
		joined[rec.EventID] = struct{}{}
		exclude = append(exclude, rec.EventID)
	}

	candidates, err := e.supplier.Candidates(ctx, CandidateQuery{
		SportIDs:        sportIDs,
		ExcludeEventIDs: exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}

	items := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		if _, ok := joined[c.EventID]; ok || c.IsFull() {
			continue
		}
		score, distance, ok := ScoreEvent(in.User, prefs[c.SportID], history.Get(c.SportID), c)
		if !ok {
			continue
		}
		items = append(items, Recommendation{Candidate: c, Score: score, DistanceKm: distance})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Candidate.StartsAt.Equal(b.Candidate.StartsAt) {
			return a.Candidate.StartsAt.Before(b.Candidate.StartsAt)
		}
		return a.Candidate.EventID < b.Candidate.EventID
	})

	if len(items) > maxResults {
		items = items[:maxResults]
	}

	return &Result{Items: items, Considered: len(candidates)}, nil
}

func (e *Engine) fallback(ctx context.Context, maxResults int) (*Result, error) {
	candidates, err := e.supplier.Candidates(ctx, CandidateQuery{Limit: maxResults})
	if err != nil {
		return nil, fmt.Errorf("load fallback candidates: %w", err)
	}

	items := make([]Recommendation, 0, min(len(candidates), maxResults))
	for _, c := range candidates {
		if len(items) == maxResults {
			break
		}
		if c.IsFull() {
			continue
		}
		items = append(items, Recommendation{Candidate: c})
	}

	return &Result{Items: items, Fallback: true, Considered: len(candidates)}, nil
}
