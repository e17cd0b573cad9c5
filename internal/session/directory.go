package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/olegs18/transcriber/internal"
	"github.com/olegs18/transcriber/internal/record"
	"github.com/olegs18/transcriber/internal/store"
)

const sessionExt = ".csv"

// Info describes one session file
type Info struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// Directory is the folder holding session snapshots
type Directory struct {
	root     string
	defaults store.Defaults
}

// NewDirectory returns the session directory at root. defaults are used
// when loading session files.
func NewDirectory(root string, defaults store.Defaults) *Directory {
	return &Directory{root: root, defaults: defaults}
}

// Root returns the directory path
func (d *Directory) Root() string {
	return d.root
}

// Path resolves a session name to its file. The extension is optional and
// only the base name is used.
func (d *Directory) Path(name string) string {
	name = filepath.Base(name)
	if !strings.HasSuffix(name, sessionExt) {
		name += sessionExt
	}
	return filepath.Join(d.root, name)
}

// Load reads the named session, failing with store.ErrNoSession if it does
// not exist
func (d *Directory) Load(name string) (*record.Store, store.LoadReport, error) {
	return store.LoadExisting(d.Path(name), d.defaults)
}

// List returns the sessions, newest first
func (d *Directory) List() ([]Info, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session directory: %w", err)
	}

	var sessions []Info
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, sessionExt) || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", name, err)
		}
		sessions = append(sessions, Info{
			Name:    strings.TrimSuffix(name, sessionExt),
			Path:    filepath.Join(d.root, name),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].ModTime.Equal(sessions[j].ModTime) {
			return sessions[i].ModTime.After(sessions[j].ModTime)
		}
		return sessions[i].Name > sessions[j].Name
	})
	return sessions, nil
}

// Latest returns the name of the newest session
func (d *Directory) Latest() (string, error) {
	sessions, err := d.List()
	if err != nil {
		return "", err
	}
	if len(sessions) == 0 {
		return "", fmt.Errorf("%w: no sessions in %s", store.ErrNoSession, d.root)
	}
	return sessions[0].Name, nil
}

// NewName returns an unused session name for a session started at t
func (d *Directory) NewName(t time.Time) (string, error) {
	base := strings.TrimSuffix(internal.SessionFileName(t), sessionExt)
	name := base
	for i := 2; ; i++ {
		_, err := os.Stat(d.Path(name))
		if errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check session %s: %w", name, err)
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
}
