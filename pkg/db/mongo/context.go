package mongo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithTimeout bounds ctx by timeout, keeping a shorter parent deadline. The
// driver looks the session up through ctx.Value, so operations on a context
// derived from a SessionContext still run inside its transaction.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}

// DuplicateKeyIndex reports whether err is a duplicate-key error and, if the
// server named it, which index was violated.
func DuplicateKeyIndex(err error) (string, bool) {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return "", false
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if name := indexFromMessage(e.Message); name != "" {
				return name, true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return indexFromMessage(ce.Message), true
	}
	return indexFromMessage(err.Error()), true
}

// indexFromMessage extracts the index name from a server message such as
// "E11000 duplicate key error collection: db.Bookings index: uniq_x dup key: {...}".
func indexFromMessage(msg string) string {
	const marker = " index: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if j := strings.IndexByte(rest, ' '); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
