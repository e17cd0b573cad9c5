// Package archive rotates the session directory out of the way, so that a
// new study period starts without prior sessions while the old snapshots
// stay available.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const prefix = "sessions-"

// ArchiveSessions moves the sessions directory to
// <parent>/archive/sessions-YYYYMMDD-HHMMSS and returns the new path
func ArchiveSessions(sessionsDir string, out io.Writer) (string, error) {
	return archiveAt(sessionsDir, out, time.Now())
}

func archiveAt(sessionsDir string, out io.Writer, now time.Time) (string, error) {
	if _, err := os.Stat(sessionsDir); os.IsNotExist(err) {
		return "", fmt.Errorf("sessions directory does not exist: %s", sessionsDir)
	}

	archiveDir := Dir(sessionsDir)
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := filepath.Join(archiveDir, prefix+now.Format("20060102-150405"))
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, prefix+now.Format("20060102-150405.000000"))
	}

	if err := os.Rename(sessionsDir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive sessions directory: %w", err)
	}

	fmt.Fprintf(out, "Sessions directory archived to: %s\n", archivePath)
	return archivePath, nil
}

// Dir returns the archive directory used for sessionsDir
func Dir(sessionsDir string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(sessionsDir)), "archive")
}

// List returns the archived session directories, oldest first
func List(archiveDir string) ([]string, error) {
	entries, err := os.ReadDir(archiveDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			names = append(names, e.Name())
		}
	}
	// The timestamp format sorts chronologically
	sort.Strings(names)
	return names, nil
}

// Prune removes all but the newest keep archives. keep <= 0 keeps all.
func Prune(archiveDir string, keep int, out io.Writer) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	names, err := List(archiveDir)
	if err != nil {
		return 0, fmt.Errorf("failed to list archives: %w", err)
	}

	removed := 0
	for len(names)-removed > keep {
		path := filepath.Join(archiveDir, names[removed])
		if err := os.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		fmt.Fprintf(out, "Removed old archive: %s\n", path)
		removed++
	}
	return removed, nil
}
