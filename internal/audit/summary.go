package audit

import "custodia/internal/domain"

// Summary holds the compliance counters over one sequence of entries.
type Summary struct {
	Total              int
	SuccessCount       int
	SecurityEventCount int // failed + unauthorized
}

// Summarize computes the compliance counters for exactly the entries given,
// full log or filtered subset. Pure: it never re-queries a store, so the
// result is always consistent with its input.
func Summarize(entries []domain.Entry) Summary {
	s := Summary{Total: len(entries)}
	for _, entry := range entries {
		if entry.Status == domain.StatusSuccess {
			s.SuccessCount++
		}
	}
	s.SecurityEventCount = s.Total - s.SuccessCount
	return s
}
