package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Matches table - one row per match between two players
		`CREATE TABLE IF NOT EXISTS matches (
			id TEXT PRIMARY KEY,
			exercise TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			winner INTEGER,
			winner_name TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Match players table - final record of each player slot
		`CREATE TABLE IF NOT EXISTS match_players (
			match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			slot INTEGER NOT NULL,
			name TEXT NOT NULL,
			hp REAL NOT NULL,
			max_hp REAL NOT NULL,
			level INTEGER NOT NULL,
			xp REAL NOT NULL,
			score INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (match_id, slot)
		)`,

		// Completions table - every credited exercise hold
		`CREATE TABLE IF NOT EXISTS completions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
			player INTEGER NOT NULL,
			exercise TEXT NOT NULL CHECK(exercise IN ('arm_raise', 'side_stretch', 'squat')),
			level INTEGER NOT NULL,
			magnitude REAL NOT NULL,
			effect TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			occurred_at DATETIME NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_matches_started_at ON matches(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_completions_match_id ON completions(match_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
