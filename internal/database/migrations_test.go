package database

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/mentorhub/interviews/migrations"
)

func TestReadMigrationsOrdersAndTitles(t *testing.T) {
	fsys := fstest.MapFS{
		"002_create_interviews.up.sql":   {Data: []byte("CREATE TABLE interviews ();")},
		"001_create_jobs.up.sql":         {Data: []byte("CREATE TABLE jobs ();")},
		"001_create_jobs.down.sql":       {Data: []byte("DROP TABLE jobs;")},
		"README.md":                      {Data: []byte("ignored")},
		"badname.up.sql":                 {Data: []byte("ignored")},
		"003_add_interview_index.up.sql": {Data: []byte("CREATE INDEX x ON interviews (id);")},
	}

	got, err := ReadMigrations(fsys)
	if err != nil {
		t.Fatalf("ReadMigrations() error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(got))
	}
	if got[0].Version != "001" || got[1].Version != "002" || got[2].Version != "003" {
		t.Errorf("unexpected order: %s %s %s", got[0].Version, got[1].Version, got[2].Version)
	}
	if got[0].Title != "create jobs" {
		t.Errorf("unexpected title %q", got[0].Title)
	}
	if got[0].Checksum != calculateChecksum("CREATE TABLE jobs ();") {
		t.Error("checksum mismatch")
	}
}

func TestValidateChecksums(t *testing.T) {
	migrations := []Migration{
		{Version: "001", Title: "create jobs", Checksum: "aaa"},
		{Version: "002", Title: "create interviews", Checksum: "bbb"},
	}

	if err := validateChecksums(migrations, map[string]string{"001": "aaa"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := validateChecksums(migrations, map[string]string{"001": "aaa", "002": "changed"})
	if err == nil {
		t.Fatal("expected checksum mismatch error")
	}
	if !strings.Contains(err.Error(), "create interviews") {
		t.Errorf("error should name the modified migration: %v", err)
	}
}

func TestEmbeddedMigrationsParse(t *testing.T) {
	got, err := ReadMigrations(migrations.FS)
	if err != nil {
		t.Fatalf("ReadMigrations() error: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("expected embedded migrations")
	}
	for _, m := range got {
		if strings.TrimSpace(m.UpSQL) == "" {
			t.Errorf("migration %s is empty", m.Version)
		}
	}
}
