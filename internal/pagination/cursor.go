// Package pagination implements opaque keyset cursors for
// time-ordered listings. The wire format is "<epochMillis>_<id>" and
// must be preserved for client compatibility.
package pagination

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tidepool/internal/models"
)

// Cursor marks a position in a newest-first listing ordered by
// (created_at DESC, id DESC). Items strictly older than the cursor
// position are on subsequent pages.
type Cursor struct {
	CreatedAtMillis int64
	ID              uint
}

// Encode renders the wire token "<epochMillis>_<id>".
func (c Cursor) Encode() string {
	return fmt.Sprintf("%d_%d", c.CreatedAtMillis, c.ID)
}

// CreatedAt returns the cursor timestamp as a time value, suitable for
// direct comparison against stored millisecond-truncated timestamps.
func (c Cursor) CreatedAt() time.Time {
	return time.UnixMilli(c.CreatedAtMillis).UTC()
}

// Decode parses a wire token. An empty token yields (nil, nil),
// meaning "first page". Malformed tokens are a validation error.
func Decode(token string) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}

	millisPart, idPart, ok := strings.Cut(token, "_")
	if !ok {
		return nil, models.NewValidationError("Invalid cursor")
	}

	millis, err := strconv.ParseInt(millisPart, 10, 64)
	if err != nil || millis <= 0 {
		return nil, models.NewValidationError("Invalid cursor")
	}
	id, err := strconv.ParseUint(idPart, 10, 32)
	if err != nil || id == 0 {
		return nil, models.NewValidationError("Invalid cursor")
	}

	return &Cursor{CreatedAtMillis: millis, ID: uint(id)}, nil
}

// FromComment builds the cursor for the last comment of a page.
func FromComment(c *models.Comment) Cursor {
	return Cursor{
		CreatedAtMillis: c.CreatedAt.UnixMilli(),
		ID:              c.ID,
	}
}

// FromFollow builds the cursor for the last follow edge of a page.
func FromFollow(f *models.Follow) Cursor {
	return Cursor{
		CreatedAtMillis: f.CreatedAt.UnixMilli(),
		ID:              f.ID,
	}
}

// ClampLimit normalizes a requested page size into [1, max], applying
// def when the request did not specify one.
func ClampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
