package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Action binds a gesture label to a plugin action.
type Action struct {
	ID         string
	Label      string
	PluginName string
	ActionName string
	Config     json.RawMessage
	Enabled    bool
	CreatedAt  time.Time
}

const actionColumns = `id, label, plugin_name, action_name, config, enabled, created_at`

// ActionRepository provides CRUD operations for actions.
type ActionRepository struct {
	db *sql.DB
}

// Actions returns the action repository for this store.
func (s *Store) Actions() *ActionRepository {
	return &ActionRepository{db: s.db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(row rowScanner) (*Action, error) {
	a := &Action{}
	var config string
	var enabled int

	if err := row.Scan(&a.ID, &a.Label, &a.PluginName, &a.ActionName, &config, &enabled, &a.CreatedAt); err != nil {
		return nil, err
	}

	a.Config = json.RawMessage(config)
	a.Enabled = enabled != 0
	return a, nil
}

func configOrEmpty(c json.RawMessage) string {
	if len(c) == 0 {
		return "{}"
	}
	return string(c)
}

// Create inserts a new action into the database.
func (r *ActionRepository) Create(a *Action) error {
	a.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO actions (`+actionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Label, a.PluginName, a.ActionName, configOrEmpty(a.Config), a.Enabled, a.CreatedAt,
	)
	return err
}

// GetByID retrieves an action by its ID.
func (r *ActionRepository) GetByID(id string) (*Action, error) {
	a, err := scanAction(r.db.QueryRow(
		`SELECT `+actionColumns+` FROM actions WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

// GetByLabel retrieves the newest enabled action bound to a label.
// Returns nil, nil if no action is bound to the label.
func (r *ActionRepository) GetByLabel(label string) (*Action, error) {
	a, err := scanAction(r.db.QueryRow(
		`SELECT `+actionColumns+` FROM actions
		 WHERE label = ? AND enabled = 1
		 ORDER BY created_at DESC LIMIT 1`,
		label,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// List retrieves all actions, newest first.
func (r *ActionRepository) List() ([]*Action, error) {
	rows, err := r.db.Query(`SELECT ` + actionColumns + ` FROM actions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []*Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return actions, nil
}

// Update updates an existing action in the database.
func (r *ActionRepository) Update(a *Action) error {
	result, err := r.db.Exec(
		`UPDATE actions SET label = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		a.Label, a.PluginName, a.ActionName, configOrEmpty(a.Config), a.Enabled, a.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// Delete removes an action from the database by its ID.
func (r *ActionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM actions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
