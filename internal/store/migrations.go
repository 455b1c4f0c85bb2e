package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Readings table - one row per estimated hand
		`CREATE TABLE IF NOT EXISTS readings (
			id TEXT PRIMARY KEY,
			skeleton_id INTEGER NOT NULL,
			side TEXT NOT NULL CHECK(side IN ('left', 'right')),
			outcome TEXT NOT NULL,
			finger_count INTEGER NOT NULL DEFAULT 0,
			label TEXT NOT NULL DEFAULT '',
			fingertips TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Actions table - plugin actions to execute when a label is recognized
		`CREATE TABLE IF NOT EXISTS actions (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL CHECK(label IN ('rock', 'scissors', 'paper')),
			plugin_name TEXT NOT NULL,
			action_name TEXT NOT NULL,
			config TEXT NOT NULL DEFAULT '{}',
			enabled INTEGER NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_readings_created_at ON readings(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_readings_label ON readings(label)`,
		`CREATE INDEX IF NOT EXISTS idx_actions_label ON actions(label)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
