package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elocute/elocute/pkg/segment"
)

// ErrNotFound is returned by [Store.GetByID] when no session has the given id.
var ErrNotFound = errors.New("store: practice session not found")

// Session is one recorded practice attempt with its scores.
//
// The fluency fields are pointers because they are only available when the
// recogniser produced per-segment timestamps.
type Session struct {
	ID         int64
	CreatedAt  time.Time
	ScriptName string
	ScriptText string
	AudioPath  string
	Transcript string

	WER     float64
	CER     float64
	Clarity float64
	Score   float64

	ArticulationRate *float64
	PauseRatio       *float64
	FilledPauses     *int
	AvgConfidence    *float64

	// Segments are the augmented recogniser segments, stored as JSONB so the
	// playhead-synced transcript view can be replayed later.
	Segments []segment.Segment
}

// TrendPoint is one day of aggregated scores, produced by [Store.ScoreTrend].
type TrendPoint struct {
	Day        time.Time
	Sessions   int
	AvgScore   float64
	AvgWER     float64
	AvgClarity float64
}

// Store is a PostgreSQL-backed practice-session store.
// All methods are safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the PostgreSQL database at dsn and runs [Migrate].
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Add inserts sess and returns the generated id. sess.CreatedAt is ignored;
// the database assigns the insertion time.
func (s *Store) Add(ctx context.Context, sess Session) (int64, error) {
	segs, err := marshalSegments(sess.Segments)
	if err != nil {
		return 0, err
	}

	const q = `
		INSERT INTO practice_sessions
		    (script_name, script_text, audio_path, transcript,
		     wer, cer, clarity, score,
		     articulation_rate, pause_ratio, filled_pauses, avg_confidence,
		     segments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`

	var id int64
	err = s.pool.QueryRow(ctx, q,
		sess.ScriptName,
		sess.ScriptText,
		sess.AudioPath,
		sess.Transcript,
		sess.WER,
		sess.CER,
		sess.Clarity,
		sess.Score,
		sess.ArticulationRate,
		sess.PauseRatio,
		sess.FilledPauses,
		sess.AvgConfidence,
		segs,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store: add session: %w", err)
	}
	return id, nil
}

// UpdateScores rewrites the score columns of the session with the given id,
// leaving the script, transcript, and segments untouched. Used when a session
// is re-scored after a scoring change.
func (s *Store) UpdateScores(ctx context.Context, id int64, wer, cer, clarity, score float64) error {
	const q = `
		UPDATE practice_sessions
		SET    wer = $2, cer = $3, clarity = $4, score = $5
		WHERE  id = $1`

	tag, err := s.pool.Exec(ctx, q, id, wer, cer, clarity, score)
	if err != nil {
		return fmt.Errorf("store: update scores: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID returns the session with the given id, or [ErrNotFound].
func (s *Store) GetByID(ctx context.Context, id int64) (*Session, error) {
	const q = selectColumns + `
		WHERE  id = $1`

	rows, err := s.pool.Query(ctx, q, id)
	if err != nil {
		return nil, fmt.Errorf("store: get session: %w", err)
	}
	sessions, err := collectSessions(rows)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNotFound
	}
	return &sessions[0], nil
}

// List returns up to limit sessions ordered newest first. limit <= 0 returns
// all sessions.
func (s *Store) List(ctx context.Context, limit int) ([]Session, error) {
	q := selectColumns + `
		ORDER  BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		args = append(args, limit)
		q += fmt.Sprintf("\n\t\tLIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	return collectSessions(rows)
}

// ScoreTrend aggregates sessions since the given time into per-day averages,
// oldest first. Days without sessions are absent from the result.
func (s *Store) ScoreTrend(ctx context.Context, since time.Time) ([]TrendPoint, error) {
	const q = `
		SELECT date_trunc('day', created_at) AS day,
		       count(*),
		       avg(score),
		       avg(wer),
		       avg(clarity)
		FROM   practice_sessions
		WHERE  created_at >= $1
		GROUP  BY day
		ORDER  BY day`

	rows, err := s.pool.Query(ctx, q, since)
	if err != nil {
		return nil, fmt.Errorf("store: score trend: %w", err)
	}
	points, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TrendPoint, error) {
		var p TrendPoint
		err := row.Scan(&p.Day, &p.Sessions, &p.AvgScore, &p.AvgWER, &p.AvgClarity)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("store: scan trend rows: %w", err)
	}
	return points, nil
}

const selectColumns = `
		SELECT id, created_at, script_name, script_text, audio_path, transcript,
		       wer, cer, clarity, score,
		       articulation_rate, pause_ratio, filled_pauses, avg_confidence,
		       segments
		FROM   practice_sessions`

// collectSessions scans pgx rows into Session values, decoding the segments
// JSONB column.
func collectSessions(rows pgx.Rows) ([]Session, error) {
	sessions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Session, error) {
		var (
			sess Session
			segs []byte
		)
		if err := row.Scan(
			&sess.ID,
			&sess.CreatedAt,
			&sess.ScriptName,
			&sess.ScriptText,
			&sess.AudioPath,
			&sess.Transcript,
			&sess.WER,
			&sess.CER,
			&sess.Clarity,
			&sess.Score,
			&sess.ArticulationRate,
			&sess.PauseRatio,
			&sess.FilledPauses,
			&sess.AvgConfidence,
			&segs,
		); err != nil {
			return Session{}, err
		}
		if len(segs) > 0 {
			if err := json.Unmarshal(segs, &sess.Segments); err != nil {
				return Session{}, fmt.Errorf("decode segments: %w", err)
			}
		}
		return sess, nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: scan rows: %w", err)
	}
	if sessions == nil {
		sessions = []Session{}
	}
	return sessions, nil
}

func marshalSegments(segs []segment.Segment) ([]byte, error) {
	if segs == nil {
		segs = []segment.Segment{}
	}
	b, err := json.Marshal(segs)
	if err != nil {
		return nil, fmt.Errorf("store: encode segments: %w", err)
	}
	return b, nil
}
