package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// NoWinner marks a match without a winner.
const NoWinner = -1

// Match represents a recorded match.
type Match struct {
	ID         string
	Exercise   string
	StartedAt  time.Time
	EndedAt    *time.Time
	Winner     int
	WinnerName string
	CreatedAt  time.Time
	Players    []MatchPlayer
}

// Finished reports whether the match has ended.
func (m *Match) Finished() bool {
	return m.EndedAt != nil
}

// MatchPlayer is the final record of one player slot in a match.
type MatchPlayer struct {
	Slot  int
	Name  string
	HP    float64
	MaxHP float64
	Level int
	XP    float64
	Score int
}

// MatchRepository provides operations on recorded matches.
type MatchRepository struct {
	db *sql.DB
}

// Matches returns the match repository for this store.
func (s *Store) Matches() *MatchRepository {
	return &MatchRepository{db: s.db}
}

// Create inserts a new, unfinished match.
func (r *MatchRepository) Create(m *Match) error {
	m.CreatedAt = time.Now()
	m.Winner = NoWinner
	m.WinnerName = ""

	_, err := r.db.Exec(
		`INSERT INTO matches (id, exercise, started_at, winner, winner_name, created_at)
		 VALUES (?, ?, ?, NULL, '', ?)`,
		m.ID, m.Exercise, m.StartedAt, m.CreatedAt,
	)
	return err
}

// Finish records the end of a match and the final player records.
// winner is NoWinner when the match was abandoned.
func (r *MatchRepository) Finish(id string, endedAt time.Time, winner int, winnerName string, players []MatchPlayer) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var w sql.NullInt64
	if winner != NoWinner {
		w = sql.NullInt64{Int64: int64(winner), Valid: true}
	}

	result, err := tx.Exec(
		`UPDATE matches SET ended_at = ?, winner = ?, winner_name = ? WHERE id = ?`,
		endedAt, w, winnerName, id,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(`DELETE FROM match_players WHERE match_id = ?`, id); err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO match_players (match_id, slot, name, hp, max_hp, level, xp, score)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err := stmt.Exec(id, p.Slot, p.Name, p.HP, p.MaxHP, p.Level, p.XP, p.Score); err != nil {
			return fmt.Errorf("insert player %d: %w", p.Slot, err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a match and its players.
func (r *MatchRepository) GetByID(id string) (*Match, error) {
	m, err := scanMatch(r.db.QueryRow(
		`SELECT id, exercise, started_at, ended_at, winner, winner_name, created_at
		 FROM matches WHERE id = ?`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m.Players, err = r.players(id)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// List retrieves all matches, most recent first, with their players.
func (r *MatchRepository) List() ([]*Match, error) {
	rows, err := r.db.Query(
		`SELECT id, exercise, started_at, ended_at, winner, winner_name, created_at
		 FROM matches ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, m := range matches {
		if m.Players, err = r.players(m.ID); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

// Delete removes a match and everything recorded for it.
func (r *MatchRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MatchRepository) players(matchID string) ([]MatchPlayer, error) {
	rows, err := r.db.Query(
		`SELECT slot, name, hp, max_hp, level, xp, score
		 FROM match_players WHERE match_id = ? ORDER BY slot`,
		matchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []MatchPlayer
	for rows.Next() {
		var p MatchPlayer
		if err := rows.Scan(&p.Slot, &p.Name, &p.HP, &p.MaxHP, &p.Level, &p.XP, &p.Score); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (*Match, error) {
	m := &Match{}
	var ended sql.NullTime
	var winner sql.NullInt64

	if err := row.Scan(&m.ID, &m.Exercise, &m.StartedAt, &ended, &winner, &m.WinnerName, &m.CreatedAt); err != nil {
		return nil, err
	}

	if ended.Valid {
		t := ended.Time
		m.EndedAt = &t
	}
	m.Winner = NoWinner
	if winner.Valid {
		m.Winner = int(winner.Int64)
	}
	return m, nil
}
