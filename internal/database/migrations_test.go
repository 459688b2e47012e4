package database

import (
	"testing"
)

func TestMigrations_VersionsUniqueAndReversible(t *testing.T) {
	seen := make(map[int]bool)
	for _, m := range Migrations {
		if seen[m.Version] {
			t.Fatalf("duplicate migration version %d", m.Version)
		}
		seen[m.Version] = true
		if m.Up == "" || m.Down == "" {
			t.Errorf("migration %d must define both Up and Down", m.Version)
		}
	}
}

func TestSortedMigrations(t *testing.T) {
	sorted := sortedMigrations()
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Version >= sorted[i].Version {
			t.Fatalf("migrations not ascending at %d: %d >= %d", i, sorted[i-1].Version, sorted[i].Version)
		}
	}
}
