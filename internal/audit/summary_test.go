package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"custodia/internal/domain"
)

func TestSummarize(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, Summary{}, Summarize(nil))
	})

	t.Run("single entry", func(t *testing.T) {
		s := Summarize([]domain.Entry{{Status: domain.StatusSuccess}})
		assert.Equal(t, Summary{Total: 1, SuccessCount: 1, SecurityEventCount: 0}, s)
	})

	t.Run("every non-success status is a security event", func(t *testing.T) {
		s := Summarize([]domain.Entry{
			{Status: domain.StatusSuccess},
			{Status: domain.StatusSuccess},
			{Status: domain.StatusFailed},
			{Status: domain.StatusUnauthorized},
		})
		assert.Equal(t, Summary{Total: 4, SuccessCount: 2, SecurityEventCount: 2}, s)
		assert.Equal(t, s.Total, s.SuccessCount+s.SecurityEventCount)
	})

	t.Run("works over a filtered subset", func(t *testing.T) {
		subset := []domain.Entry{{Status: domain.StatusUnauthorized}}
		assert.Equal(t, Summary{Total: 1, SecurityEventCount: 1}, Summarize(subset))
	})
}
