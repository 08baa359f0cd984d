package connector

import (
	"context"

	"github.com/koustreak/sqlgenius/internal/database"
	"github.com/koustreak/sqlgenius/internal/errs"
	"github.com/koustreak/sqlgenius/internal/logger"
)

const (
	msgConnected    = "Connection successful!"
	msgFailedPrefix = "Connection failed: "
)

// Status is the human-readable outcome of a connection check.
type Status struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (s Status) String() string { return s.Message }

func failed(err error) Status {
	return Status{Message: msgFailedPrefix + logger.Mask(errs.Describe(err))}
}

// Probe runs SELECT 1 against db. It never returns an error: failures are
// reported in the Status message.
func Probe(ctx context.Context, db database.DB) Status {
	rows, err := db.Query(ctx, "SELECT 1")
	if err != nil {
		logger.FromContext(ctx).WarnWith("connection probe failed", map[string]any{
			"kind":  string(db.Kind()),
			"error": logger.Mask(err.Error()),
		})
		return failed(err)
	}
	if _, err := database.ScanTable(rows, 1); err != nil {
		return failed(err)
	}
	return Status{OK: true, Message: msgConnected}
}
