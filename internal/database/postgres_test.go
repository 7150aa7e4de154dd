package database

import "testing"

func TestMigrationVersion(t *testing.T) {
	tests := []struct {
		name    string
		version int
		ok      bool
	}{
		{"001_initial_schema.sql", 1, true},
		{"002_incidents.sql", 2, true},
		{"042_backfill.sql", 42, true},
		{"000_bad.sql", 0, false},
		{"notes.sql", 0, false},
		{"abc_schema.sql", 0, false},
		{"README.md", 0, false},
	}

	for _, tc := range tests {
		version, ok := migrationVersion(tc.name)
		if version != tc.version || ok != tc.ok {
			t.Fatalf("migrationVersion(%q) = (%d, %v), want (%d, %v)", tc.name, version, ok, tc.version, tc.ok)
		}
	}
}
