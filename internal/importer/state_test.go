package importer

import (
	"os"
	"path/filepath"
	"testing"
)

// TestStateDBLifecycle verifies the applied-files ledger: unknown files have
// no entry, marked files come back with their dataset and row counts, and a
// changed hash makes a file new again.
func TestStateDBLifecycle(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	entry, err := state.Lookup("sessions.csv", 100, "aaa")
	if err != nil {
		t.Fatal(err)
	}
	if entry != nil {
		t.Errorf("unknown file has a ledger entry: %+v", entry)
	}

	stats := ApplyStats{Inserted: 12, Skipped: 3, Failed: 1}
	if err := state.MarkApplied("sessions.csv", 100, "aaa", "sessions", stats); err != nil {
		t.Fatal(err)
	}

	entry, err = state.Lookup("sessions.csv", 100, "aaa")
	if err != nil {
		t.Fatal(err)
	}
	if entry == nil {
		t.Fatal("marked file has no ledger entry")
	}
	if entry.Dataset != "sessions" || entry.Inserted != 12 || entry.Skipped != 3 || entry.Failed != 1 {
		t.Errorf("ledger entry = %+v, want sessions 12/3/1", entry)
	}

	// Same path, different content.
	entry, err = state.Lookup("sessions.csv", 100, "bbb")
	if err != nil {
		t.Fatal(err)
	}
	if entry != nil {
		t.Errorf("changed file still has a ledger entry: %+v", entry)
	}
}

// TestHashFile verifies hashing is stable for equal content and differs when
// the content changes.
func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	if err := os.WriteFile(a, []byte("student_id,day\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("student_id,day\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ha, err := HashFile(a)
	if err != nil {
		t.Fatal(err)
	}
	hb, err := HashFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha != hb {
		t.Error("identical content hashed differently")
	}

	if err := os.WriteFile(b, []byte("changed"), 0644); err != nil {
		t.Fatal(err)
	}
	hb, err = HashFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if ha == hb {
		t.Error("different content hashed equally")
	}
}
