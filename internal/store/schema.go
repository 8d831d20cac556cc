// Package store persists practice sessions and their scores in PostgreSQL.
//
// A single [pgxpool.Pool] backs all operations. [Migrate] creates the
// practice_sessions table on first use, so no external migration tooling
// is required.
//
// Usage:
//
//	st, err := store.New(ctx, dsn)
//	if err != nil { … }
//	defer st.Close()
//
//	id, _ := st.Add(ctx, session)
//	trend, _ := st.ScoreTrend(ctx, time.Now().AddDate(0, -1, 0))
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlPracticeSessions = `
CREATE TABLE IF NOT EXISTS practice_sessions (
    id                BIGSERIAL    PRIMARY KEY,
    created_at        TIMESTAMPTZ  NOT NULL DEFAULT now(),
    script_name       TEXT         NOT NULL,
    script_text       TEXT         NOT NULL,
    audio_path        TEXT         NOT NULL DEFAULT '',
    transcript        TEXT         NOT NULL,
    wer               DOUBLE PRECISION NOT NULL,
    cer               DOUBLE PRECISION NOT NULL,
    clarity           DOUBLE PRECISION NOT NULL,
    score             DOUBLE PRECISION NOT NULL,
    articulation_rate DOUBLE PRECISION,
    pause_ratio       DOUBLE PRECISION,
    filled_pauses     INTEGER,
    avg_confidence    DOUBLE PRECISION,
    segments          JSONB        NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_practice_sessions_created_at
    ON practice_sessions (created_at);

CREATE INDEX IF NOT EXISTS idx_practice_sessions_script_name
    ON practice_sessions (script_name);
`

// Migrate ensures the practice_sessions table and its indexes exist.
// It is idempotent and safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ddlPracticeSessions); err != nil {
		return fmt.Errorf("store: migrate practice_sessions: %w", err)
	}
	return nil
}
