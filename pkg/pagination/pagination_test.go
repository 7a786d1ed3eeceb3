package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	id string
	at time.Time
}

func keyOf(e entry) Cursor {
	return Cursor{CreatedAt: e.at, ID: e.id}
}

func newestFirst(n int) []entry {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]entry, n)
	for i := range out {
		out[i] = entry{id: string(rune('a' + i)), at: base.Add(-time.Duration(i) * time.Minute)}
	}
	return out
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
	assert.Equal(t, 7, NormalizeLimit(7))
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 5, time.UTC)
	parsed, err := ParseCursor(EncodeCursor(Cursor{CreatedAt: at, ID: "ORD1"}))
	require.NoError(t, err)
	assert.Equal(t, "ORD1", parsed.ID)
	assert.True(t, at.Equal(parsed.CreatedAt))

	empty, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = ParseCursor("not base64!")
	assert.Error(t, err)
}

func TestPageWalksTheList(t *testing.T) {
	items := newestFirst(5)

	page, next, err := Page(items, Params{Limit: 2}, keyOf)
	require.NoError(t, err)
	assert.Equal(t, []entry{items[0], items[1]}, page)
	require.NotEmpty(t, next)

	page, next, err = Page(items, Params{Limit: 2, Cursor: next}, keyOf)
	require.NoError(t, err)
	assert.Equal(t, []entry{items[2], items[3]}, page)

	page, next, err = Page(items, Params{Limit: 2, Cursor: next}, keyOf)
	require.NoError(t, err)
	assert.Equal(t, []entry{items[4]}, page)
	assert.Empty(t, next)
}

func TestPageResumesAfterMissingCursorItem(t *testing.T) {
	items := newestFirst(4)
	cursor := EncodeCursor(Cursor{CreatedAt: items[1].at, ID: "gone"})

	page, _, err := Page(items, Params{Limit: 10, Cursor: cursor}, keyOf)
	require.NoError(t, err)
	assert.Equal(t, []entry{items[2], items[3]}, page)
}
