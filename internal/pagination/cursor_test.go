package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id        string
	createdAt time.Time
}

func TestRoundTrip(t *testing.T) {
	ts := time.Date(2026, 7, 4, 18, 45, 12, 987654321, time.UTC)
	id := "9f1c2d3e-4b5a-6c7d-8e9f-0a1b2c3d4e5f"

	cursor, err := Decode(Encode(ts, id))
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.True(t, cursor.CreatedAt.Equal(ts))
	assert.Equal(t, id, cursor.ID)
}

func TestDecodeEmptyMeansFirstPage(t *testing.T) {
	cursor, err := Decode("")
	require.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	cases := map[string]string{
		"not base64":   "%%%not-base64%%%",
		"no separator": base64.URLEncoding.EncodeToString([]byte("1700000000000")),
		"bad nanos":    base64.URLEncoding.EncodeToString([]byte("yesterday|txid")),
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(input)
			assert.ErrorIs(t, err, ErrInvalidCursor)
		})
	}
}

func TestComputePage(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]row, 0, 4)
	for i, id := range []string{"tx-4", "tx-3", "tx-2", "tx-1"} {
		rows = append(rows, row{id: id, createdAt: base.Add(-time.Duration(i) * time.Minute)})
	}
	key := func(r row) (time.Time, string) { return r.createdAt, r.id }

	t.Run("short page has no continuation", func(t *testing.T) {
		page, cursor, hasMore := ComputePage(rows[:2], 3, key)
		assert.Len(t, page, 2)
		assert.Empty(t, cursor)
		assert.False(t, hasMore)
	})

	t.Run("full page without overflow has no continuation", func(t *testing.T) {
		page, cursor, hasMore := ComputePage(rows[:3], 3, key)
		assert.Len(t, page, 3)
		assert.Empty(t, cursor)
		assert.False(t, hasMore)
	})

	t.Run("overflow row is trimmed and keyed", func(t *testing.T) {
		page, cursor, hasMore := ComputePage(rows, 3, key)
		require.Len(t, page, 3)
		assert.True(t, hasMore)

		decoded, err := Decode(cursor)
		require.NoError(t, err)
		assert.Equal(t, "tx-2", decoded.ID)
		assert.True(t, decoded.CreatedAt.Equal(rows[2].createdAt))
	})
}
