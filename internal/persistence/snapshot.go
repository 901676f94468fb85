package persistence

import (
	"os"
	"path/filepath"
)

// SnapshotPath returns the fixed snapshot location under dir (§6).
func SnapshotPath(dir string) string {
	return filepath.Join(dir, "snapshot.json")
}

// ReadSnapshot returns the raw snapshot bytes, or (nil, nil) if the file
// is absent — Reload tolerates its absence (§6).
func ReadSnapshot(dir string) ([]byte, error) {
	data, err := os.ReadFile(SnapshotPath(dir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "read-snapshot", Err: err}
	}
	return data, nil
}

// WriteSnapshot writes data to the snapshot file atomically: written to
// a temp file in the same directory, then renamed into place, so a
// crash mid-write never leaves a truncated snapshot for the next
// Reload to choke on.
func WriteSnapshot(dir string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StoreError{Op: "mkdir-snapshot", Err: err}
	}
	tmp, err := os.CreateTemp(dir, "snapshot-*.json.tmp")
	if err != nil {
		return &StoreError{Op: "write-snapshot", Err: err}
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &StoreError{Op: "write-snapshot", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &StoreError{Op: "write-snapshot", Err: err}
	}
	if err := os.Rename(tmpPath, SnapshotPath(dir)); err != nil {
		os.Remove(tmpPath)
		return &StoreError{Op: "write-snapshot", Err: err}
	}
	return nil
}
