package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Up      string
	Down    string
}

// Migrations contains all database migrations
var Migrations = []Migration{
	{
		Version: 1,
		Up: `
			CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

			CREATE TABLE IF NOT EXISTS users (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				username VARCHAR(50) UNIQUE NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				profile_pic TEXT,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);
		`,
		Down: `
			DROP TABLE IF EXISTS users;
		`,
	},
	{
		Version: 2,
		Up: `
			CREATE TABLE IF NOT EXISTS channels (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				handle VARCHAR(32) UNIQUE NOT NULL,
				owner_id UUID UNIQUE NOT NULL REFERENCES users(id),
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL,
				banner_url TEXT,
				banner_public_id TEXT,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);
		`,
		Down: `
			DROP TABLE IF EXISTS channels;
		`,
	},
	{
		Version: 3,
		Up: `
			CREATE TABLE IF NOT EXISTS channel_subscriptions (
				channel_id UUID NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				PRIMARY KEY (channel_id, user_id)
			);

			CREATE INDEX IF NOT EXISTS idx_channel_subscriptions_user ON channel_subscriptions(user_id);
		`,
		Down: `
			DROP TABLE IF EXISTS channel_subscriptions;
		`,
	},
	{
		Version: 4,
		Up: `
			CREATE TABLE IF NOT EXISTS videos (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				channel_id UUID NOT NULL REFERENCES channels(id),
				uploader_id UUID NOT NULL REFERENCES users(id),
				title VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				category VARCHAR(100) NOT NULL,
				video_url TEXT NOT NULL,
				video_public_id TEXT NOT NULL,
				thumbnail_url TEXT NOT NULL,
				thumbnail_public_id TEXT NOT NULL,
				duration INT NOT NULL DEFAULT 0,
				views BIGINT NOT NULL DEFAULT 0 CHECK (views >= 0),
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_videos_channel ON videos(channel_id);
			CREATE INDEX IF NOT EXISTS idx_videos_uploader ON videos(uploader_id);
			CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos(created_at DESC);
		`,
		Down: `
			DROP TABLE IF EXISTS videos;
		`,
	},
	{
		Version: 5,
		Up: `
			CREATE TABLE IF NOT EXISTS video_reactions (
				video_id UUID NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
				user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				value SMALLINT NOT NULL CHECK (value IN (-1, 1)),
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				PRIMARY KEY (video_id, user_id)
			);
		`,
		Down: `
			DROP TABLE IF EXISTS video_reactions;
		`,
	},
	{
		Version: 6,
		Up: `
			CREATE TABLE IF NOT EXISTS comments (
				id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
				video_id UUID NOT NULL REFERENCES videos(id),
				author_id UUID NOT NULL REFERENCES users(id),
				text TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_comments_video ON comments(video_id, created_at DESC);
		`,
		Down: `
			DROP TABLE IF EXISTS comments;
		`,
	},
}

// sortedMigrations returns Migrations in ascending version order
func sortedMigrations() []Migration {
	sorted := make([]Migration, len(Migrations))
	copy(sorted, Migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })
	return sorted
}

// RunMigrations runs all pending migrations
func RunMigrations(db *sql.DB) error {
	// Ensure migrations table exists
	if err := ensureMigrationsTable(db); err != nil {
		return err
	}

	currentVersion, err := CurrentVersion(db)
	if err != nil {
		return err
	}

	for _, migration := range sortedMigrations() {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("running migration", slog.Int("version", migration.Version))

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		if _, err := tx.Exec(migration.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %d: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// RollbackLatest reverts the most recently applied migration and returns its
// version, or 0 when nothing is applied
func RollbackLatest(db *sql.DB) (int, error) {
	if err := ensureMigrationsTable(db); err != nil {
		return 0, err
	}

	currentVersion, err := CurrentVersion(db)
	if err != nil {
		return 0, err
	}
	if currentVersion == 0 {
		return 0, nil
	}

	var target *Migration
	for _, m := range sortedMigrations() {
		if m.Version == currentVersion {
			m := m
			target = &m
			break
		}
	}
	if target == nil {
		return 0, fmt.Errorf("applied migration %d is unknown to this binary", currentVersion)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(target.Down); err != nil {
		return 0, fmt.Errorf("failed to revert migration %d: %w", target.Version, err)
	}
	if _, err := tx.Exec("DELETE FROM schema_migrations WHERE version = $1", target.Version); err != nil {
		return 0, fmt.Errorf("failed to unrecord migration %d: %w", target.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rollback %d: %w", target.Version, err)
	}
	return target.Version, nil
}

func ensureMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// CurrentVersion returns the highest applied migration version
func CurrentVersion(db *sql.DB) (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}
