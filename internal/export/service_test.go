package export

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailtown/platform/internal/storage"
)

func TestRenderCSVShapesRows(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	updated := created.Add(2 * time.Hour)
	rows := []storage.ValueRow{
		{RecordID: uuid.MustParse("11111111-1111-1111-1111-111111111111"), Value: "Buddy", CreatedAt: created, UpdatedAt: updated},
		{RecordID: uuid.MustParse("22222222-2222-2222-2222-222222222222"), Value: "Luna, the second", CreatedAt: created, UpdatedAt: created},
	}

	data, err := renderCSV(rows)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"record_id", "value", "created_at", "updated_at"}, records[0])
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", records[1][0])
	assert.Equal(t, "Buddy", records[1][1])
	assert.Equal(t, "2026-03-14T09:30:00Z", records[1][2])
	assert.Equal(t, "2026-03-14T11:30:00Z", records[1][3])

	// Embedded commas survive the round trip
	assert.Equal(t, "Luna, the second", records[2][1])
}

func TestRenderCSVEmptyPropertyStillHasHeader(t *testing.T) {
	data, err := renderCSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"record_id", "value", "created_at", "updated_at"}, records[0])
}

func TestClearConfirmationContract(t *testing.T) {
	tests := []struct {
		name      string
		req       ClearRequest
		propName  string
		satisfied bool
	}{
		{"confirmed with exact name", ClearRequest{Confirmed: true, ConfirmationName: "FavoriteTreat"}, "FavoriteTreat", true},
		{"not confirmed", ClearRequest{Confirmed: false, ConfirmationName: "FavoriteTreat"}, "FavoriteTreat", false},
		{"wrong name", ClearRequest{Confirmed: true, ConfirmationName: "favoritetreat"}, "FavoriteTreat", false},
		{"empty name", ClearRequest{Confirmed: true}, "FavoriteTreat", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.satisfied, confirmationSatisfied(tt.req, tt.propName))
		})
	}
}
