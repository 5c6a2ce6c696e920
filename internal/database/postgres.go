package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// ConnectPostgres connects to PostgreSQL and initializes the catalog schema.
func ConnectPostgres(postgresURI string) (*sql.DB, error) {
	db, err := sql.Open("postgres", postgresURI)
	if err != nil {
		return nil, err
	}

	// Connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if err = initCatalogTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// initCatalogTables creates the catalog tables if they don't exist.
func initCatalogTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			category VARCHAR(255) NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS items (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			title VARCHAR(255) NOT NULL,
			body TEXT,
			item_date TIMESTAMP NOT NULL DEFAULT NOW(),
			feature_image TEXT,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			category_id UUID REFERENCES categories(id) ON DELETE SET NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_items_published ON items(published)`,
		`CREATE INDEX IF NOT EXISTS idx_items_item_date ON items(item_date)`,
		`CREATE INDEX IF NOT EXISTS idx_items_category_id ON items(category_id)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL catalog tables initialized")
	return nil
}
