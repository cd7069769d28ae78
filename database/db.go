package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// Documents live in coarse JSON rows: one row for the config singleton, one
// row per user, one row per project. Every save rewrites the whole document,
// matching the portal's "read-modify-rewrite-whole-array" discipline. The
// last write wins; there is no merge.
func InitDB(path string) (*sql.DB, error) {
	if path == "" {
		path = "./portal.db"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS system_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create system_config table: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create projects table: %w", err)
	}

	log.Println("Database initialized successfully")
	return db, nil
}

// Store handles document persistence for config, users and projects.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetConfig retrieves the config singleton. A missing or unreadable document
// falls back to the hard-coded default rather than failing.
func (s *Store) GetConfig() (*AppConfig, error) {
	row := s.db.QueryRow("SELECT data FROM system_config WHERE id = 1")

	var dataStr string
	err := row.Scan(&dataStr)
	if err == sql.ErrNoRows {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query config: %w", err)
	}

	var cfg AppConfig
	if err := json.Unmarshal([]byte(dataStr), &cfg); err != nil {
		log.Printf("Stored config is unreadable, using default: %v", err)
		return DefaultConfig(), nil
	}

	return &cfg, nil
}

// SaveConfig rewrites the config singleton.
func (s *Store) SaveConfig(cfg *AppConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO system_config (id, data, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, string(data))
	if err != nil {
		return fmt.Errorf("failed to upsert config: %w", err)
	}

	return nil
}

// ListUsers returns all user documents.
func (s *Store) ListUsers() ([]User, error) {
	rows, err := s.db.Query("SELECT data FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var dataStr string
		if err := rows.Scan(&dataStr); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		var u User
		if err := json.Unmarshal([]byte(dataStr), &u); err != nil {
			return nil, fmt.Errorf("failed to unmarshal user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// GetUser retrieves one user document. Returns nil when not found.
func (s *Store) GetUser(id string) (*User, error) {
	row := s.db.QueryRow("SELECT data FROM users WHERE id = ?", id)

	var dataStr string
	err := row.Scan(&dataStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	var u User
	if err := json.Unmarshal([]byte(dataStr), &u); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return &u, nil
}

// SaveUser rewrites one user document.
func (s *Store) SaveUser(u *User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO users (id, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, u.ID, string(data))
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// DeleteUser removes a user document. Tickets referencing the user keep
// their dangling assignee ids; that is tolerated.
func (s *Store) DeleteUser(id string) error {
	_, err := s.db.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ListProjects returns all project documents.
func (s *Store) ListProjects() ([]Project, error) {
	rows, err := s.db.Query("SELECT data FROM projects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var dataStr string
		if err := rows.Scan(&dataStr); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		var p Project
		if err := json.Unmarshal([]byte(dataStr), &p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate projects: %w", err)
	}

	return projects, nil
}

// GetProject retrieves one project document. Returns nil when not found.
func (s *Store) GetProject(id string) (*Project, error) {
	row := s.db.QueryRow("SELECT data FROM projects WHERE id = ?", id)

	var dataStr string
	err := row.Scan(&dataStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}

	var p Project
	if err := json.Unmarshal([]byte(dataStr), &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project: %w", err)
	}

	return &p, nil
}

// FindProjectByItem returns the project containing the given item id, or nil.
func (s *Store) FindProjectByItem(itemID string) (*Project, error) {
	projects, err := s.ListProjects()
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].FindItem(itemID) >= 0 {
			return &projects[i], nil
		}
	}
	return nil, nil
}

// SaveProject rewrites one project document wholesale.
func (s *Store) SaveProject(p *Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO projects (id, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, p.ID, string(data))
	if err != nil {
		return fmt.Errorf("failed to upsert project: %w", err)
	}

	return nil
}

// DeleteProject removes a project document along with its embedded items.
func (s *Store) DeleteProject(id string) error {
	_, err := s.db.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// Seed populates an empty database with the default config, the demo
// accounts and the sample project.
func (s *Store) Seed() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	if err := s.SaveConfig(DefaultConfig()); err != nil {
		return err
	}
	for _, u := range SeedUsers() {
		u := u
		if err := s.SaveUser(&u); err != nil {
			return err
		}
	}
	sample := SeedProject()
	if err := s.SaveProject(&sample); err != nil {
		return err
	}

	log.Println("Seeded demo accounts and sample project")
	return nil
}
