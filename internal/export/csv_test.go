package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"custodia/internal/domain"
	id "custodia/pkg/domain"
)

func TestWriteCSV(t *testing.T) {
	actorID := id.NewUserID()
	entries := []domain.Entry{
		{
			ID:           1,
			Timestamp:    time.Date(2024, 10, 18, 14, 32, 15, 0, time.UTC),
			Actor:        "Officer Smith",
			ActorID:      actorID,
			Action:       domain.ActionViewed,
			Resource:     "CASE-2024-001",
			ResourceKind: domain.KindCase,
			Status:       domain.StatusSuccess,
			OriginAddr:   "192.168.1.100",
			Details:      "Accessed case details, evidence inventory",
		},
		{
			ID:           2,
			Timestamp:    time.Date(2024, 10, 18, 13, 45, 22, 0, time.UTC),
			Actor:        domain.ActorUnknown,
			Action:       "Attempted Access",
			Resource:     "CASE-2024-003",
			ResourceKind: domain.KindCase,
			Status:       domain.StatusUnauthorized,
			OriginAddr:   "203.0.113.45",
			Details:      "Unauthorized access attempt blocked",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, entries))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	// Header plus exactly the given entries, in the given order.
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{
		"1", "2024-10-18T14:32:15Z", "Officer Smith", actorID.String(),
		"Viewed", "CASE-2024-001", "case", "success", "192.168.1.100",
		"Accessed case details, evidence inventory",
	}, rows[1])
	assert.Equal(t, "unknown", rows[2][2])
	assert.Equal(t, "", rows[2][3], "no actor id column for the unknown actor")
}

func TestWriteCSV_EmptySequence(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}
