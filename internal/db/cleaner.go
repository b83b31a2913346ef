package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartStaleSessionCleaner periodically revokes bearer tokens older
// than the retention window. A client holding a revoked token gets 401
// on its next request and falls back to the sign-out flow.
func StartStaleSessionCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				res, err := db.ExecContext(ctx, `
                    DELETE FROM sessions
                     WHERE created_at < $1
                `, cutoff)
				if err != nil {
					log.Error("failed to clean stale sessions", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned stale sessions", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
