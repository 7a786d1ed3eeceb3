package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many items any cursor query can request.
	MaxLimit = 100
)

// Params holds cursor pagination inputs from controllers.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor points at the last item of the previous page.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeCursor builds a base64 cursor string from the provided values.
func EncodeCursor(cursor Cursor) string {
	payload := fmt.Sprintf("%s|%s", cursor.CreatedAt.UTC().Format(time.RFC3339Nano), cursor.ID)
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes the cursor string back into its components.
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}

	t, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	return &Cursor{
		CreatedAt: t,
		ID:        parts[1],
	}, nil
}

// Page slices an already ordered list. keyOf returns the cursor of an item.
// The next cursor is empty on the last page. A cursor whose item is gone
// restarts from the first item after its timestamp.
func Page[T any](items []T, params Params, keyOf func(T) Cursor) ([]T, string, error) {
	limit := NormalizeLimit(params.Limit)
	cursor, err := ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}

	start := 0
	if cursor != nil {
		start = len(items)
		for i, item := range items {
			key := keyOf(item)
			if key.ID == cursor.ID {
				start = i + 1
				break
			}
			if key.CreatedAt.Before(cursor.CreatedAt) {
				start = i
				break
			}
		}
	}

	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	page := items[start:end]

	next := ""
	if end < len(items) && len(page) > 0 {
		next = EncodeCursor(keyOf(page[len(page)-1]))
	}
	return page, next, nil
}
