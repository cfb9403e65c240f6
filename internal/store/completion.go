package store

import (
	"database/sql"
	"time"
)

// Completion is one credited exercise hold.
type Completion struct {
	ID         int64
	MatchID    string
	Player     int
	Exercise   string
	Level      int
	Magnitude  float64
	Effect     string
	Message    string
	OccurredAt time.Time
}

// CompletionRepository stores credited exercise holds.
type CompletionRepository struct {
	db *sql.DB
}

// Completions returns the completion repository for this store.
func (s *Store) Completions() *CompletionRepository {
	return &CompletionRepository{db: s.db}
}

// Add inserts a completion and sets its ID.
func (r *CompletionRepository) Add(c *Completion) error {
	result, err := r.db.Exec(
		`INSERT INTO completions (match_id, player, exercise, level, magnitude, effect, message, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.MatchID, c.Player, c.Exercise, c.Level, c.Magnitude, c.Effect, c.Message, c.OccurredAt,
	)
	if err != nil {
		return err
	}

	c.ID, err = result.LastInsertId()
	return err
}

// ListByMatch retrieves the completions of one match in order.
func (r *CompletionRepository) ListByMatch(matchID string) ([]*Completion, error) {
	return r.query(
		`SELECT id, match_id, player, exercise, level, magnitude, effect, message, occurred_at
		 FROM completions WHERE match_id = ? ORDER BY occurred_at, id`,
		matchID,
	)
}

// List retrieves every completion in order.
func (r *CompletionRepository) List() ([]*Completion, error) {
	return r.query(
		`SELECT id, match_id, player, exercise, level, magnitude, effect, message, occurred_at
		 FROM completions ORDER BY occurred_at, id`,
	)
}

// Totals returns, per exercise, how many holds a player had credited in a
// match.
func (r *CompletionRepository) Totals(matchID string, player int) (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT exercise, COUNT(*) FROM completions
		 WHERE match_id = ? AND player = ? GROUP BY exercise`,
		matchID, player,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var exercise string
		var n int
		if err := rows.Scan(&exercise, &n); err != nil {
			return nil, err
		}
		totals[exercise] = n
	}
	return totals, rows.Err()
}

func (r *CompletionRepository) query(q string, args ...any) ([]*Completion, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Completion
	for rows.Next() {
		c := &Completion{}
		err := rows.Scan(&c.ID, &c.MatchID, &c.Player, &c.Exercise, &c.Level,
			&c.Magnitude, &c.Effect, &c.Message, &c.OccurredAt)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
