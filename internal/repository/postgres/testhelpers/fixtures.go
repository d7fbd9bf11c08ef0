package testhelpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
)

// LoadFixtures loads SQL fixture files into the database
func LoadFixtures(db *sql.DB, fixturesPath string, files []string) error {
	for _, file := range files {
		path := filepath.Join(fixturesPath, file)
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read fixture %s: %w", file, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("load fixture %s: %w", file, err)
		}
	}

	return nil
}

// InsertSource creates an ACTIVE source row and returns its id
func InsertSource(db *sql.DB, uid string) (int64, error) {
	var id int64
	err := db.QueryRowContext(context.Background(), `
		INSERT INTO sources (uid, name, static_status, realtime_status)
		VALUES ($1, $1, 'ACTIVE', 'ACTIVE')
		RETURNING id`, uid).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert source %s: %w", uid, err)
	}
	return id, nil
}
