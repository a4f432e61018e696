package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/shieldball/internal/arena"
)

// Session is a persisted simulation run.
type Session struct {
	SessionID  string   `json:"session_id"`
	Seed       uint64   `json:"seed"`
	Rows       int      `json:"rows"`
	Cols       int      `json:"cols"`
	ConfigJSON string   `json:"config_json,omitempty"`
	StartedAt  int64    `json:"started_at"`
	FinishedAt *int64   `json:"finished_at,omitempty"`
	Ticks      int      `json:"ticks"`
	Shots      int      `json:"shots"`
	Hits       int      `json:"hits"`
	Agreement  *float64 `json:"agreement,omitempty"`
}

// Summary aggregates the recorded ticks of one session.
type Summary struct {
	Ticks             int
	ByState           map[string]int // final state name to tick count
	PhaseChanges      int
	AtTarget          int
	MaxDistanceFactor float64
	Duration          time.Duration
}

// Recorder persists sessions and their ticks.
type Recorder struct {
	db *sql.DB
}

// NewRecorder creates a Recorder over an open, migrated database.
func NewRecorder(db *sql.DB) *Recorder {
	return &Recorder{db: db}
}

// StartSession inserts a new session. If SessionID is empty, a UUID is
// generated. StartedAt defaults to now.
func (r *Recorder) StartSession(s *Session) error {
	if s.SessionID == "" {
		s.SessionID = uuid.New().String()
	}
	if s.StartedAt == 0 {
		s.StartedAt = time.Now().UnixNano()
	}
	var cfg interface{}
	if s.ConfigJSON != "" {
		cfg = s.ConfigJSON
	}
	return retryOnBusy(func() error {
		_, err := r.db.Exec(`
			INSERT INTO sim_sessions (session_id, seed, rows, cols, config_json, started_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.SessionID, int64(s.Seed), s.Rows, s.Cols, cfg, s.StartedAt,
		)
		return err
	})
}

// RecordTicks inserts a batch of tick reports in one transaction.
func (r *Recorder) RecordTicks(sessionID string, reps []arena.TickReport) error {
	if len(reps) == 0 {
		return nil
	}
	return retryOnBusy(func() error {
		tx, err := r.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		stmt, err := tx.Prepare(`
			INSERT INTO sim_ticks (
				session_id, tick, elapsed_ms, phase, x, y, target_id, target_key,
				at_target, phase_changed, math_state, pixel_state, final_state,
				time_factor, distance_factor
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, rep := range reps {
			var targetID, targetKey interface{}
			if rep.HasTarget {
				targetID, targetKey = rep.Target.ID, rep.Target.Key.String()
			}
			if _, err := stmt.Exec(
				sessionID, rep.Tick, rep.Elapsed.Milliseconds(), rep.Phase.String(),
				rep.Pos.X, rep.Pos.Y, targetID, targetKey,
				boolInt(rep.AtTarget), boolInt(rep.PhaseChanged),
				rep.Result.Math.String(), rep.Result.Pixel.String(), rep.Result.Final.String(),
				rep.TimeFactor, rep.DistanceFactor,
			); err != nil {
				return fmt.Errorf("tick %d: %w", rep.Tick, err)
			}
		}
		return tx.Commit()
	})
}

// FinishSession stores the final counters of a session.
func (r *Recorder) FinishSession(sessionID string, st arena.Stats) error {
	var agreement interface{}
	if st.AtTarget > 0 {
		agreement = st.Agreement()
	}
	return retryOnBusy(func() error {
		res, err := r.db.Exec(`
			UPDATE sim_sessions
			SET finished_at = ?, ticks = ?, shots = ?, hits = ?, agreement = ?
			WHERE session_id = ?`,
			time.Now().UnixNano(), st.Ticks, st.Shots, st.Hits, agreement, sessionID,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("session %s not found", sessionID)
		}
		return nil
	})
}

// GetSession returns one session.
func (r *Recorder) GetSession(sessionID string) (*Session, error) {
	row := r.db.QueryRow(`
		SELECT session_id, seed, rows, cols, config_json, started_at, finished_at,
		       ticks, shots, hits, agreement
		FROM sim_sessions WHERE session_id = ?`, sessionID)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	return s, err
}

// ListSessions returns all sessions, newest first.
func (r *Recorder) ListSessions() ([]*Session, error) {
	rows, err := r.db.Query(`
		SELECT session_id, seed, rows, cols, config_json, started_at, finished_at,
		       ticks, shots, hits, agreement
		FROM sim_sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(sc scanner) (*Session, error) {
	var (
		s          Session
		seed       int64
		cfg        sql.NullString
		finishedAt sql.NullInt64
		agreement  sql.NullFloat64
	)
	if err := sc.Scan(&s.SessionID, &seed, &s.Rows, &s.Cols, &cfg, &s.StartedAt, &finishedAt,
		&s.Ticks, &s.Shots, &s.Hits, &agreement); err != nil {
		return nil, err
	}
	s.Seed = uint64(seed)
	s.ConfigJSON = cfg.String
	if finishedAt.Valid {
		s.FinishedAt = &finishedAt.Int64
	}
	if agreement.Valid {
		s.Agreement = &agreement.Float64
	}
	return &s, nil
}

// Summary aggregates the ticks recorded for a session.
func (r *Recorder) Summary(sessionID string) (*Summary, error) {
	sum := &Summary{ByState: make(map[string]int)}
	var maxElapsed sql.NullInt64
	var maxFactor sql.NullFloat64
	err := r.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(phase_changed), 0), COALESCE(SUM(at_target), 0),
		       MAX(distance_factor), MAX(elapsed_ms)
		FROM sim_ticks WHERE session_id = ?`, sessionID,
	).Scan(&sum.Ticks, &sum.PhaseChanges, &sum.AtTarget, &maxFactor, &maxElapsed)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	sum.MaxDistanceFactor = maxFactor.Float64
	sum.Duration = time.Duration(maxElapsed.Int64) * time.Millisecond

	rows, err := r.db.Query(`
		SELECT final_state, COUNT(*) FROM sim_ticks
		WHERE session_id = ? GROUP BY final_state`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("summary by state: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var state string
		var n int
		if err := rows.Scan(&state, &n); err != nil {
			return nil, err
		}
		sum.ByState[state] = n
	}
	return sum, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
