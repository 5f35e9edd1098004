// Package teams holds the optional player to team directory.
//
// The directory is loaded once from a versioned YAML file and passed to the
// ranking read path. It never influences extraction or scoring.
package teams

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/rumorboard/internal/domain/roster"
)

// SupportedVersion is the only file version this build understands.
const SupportedVersion = 1

// ErrUnsupportedVersion is returned for a file written for another version.
var ErrUnsupportedVersion = errors.New("unsupported teams file version")

type file struct {
	Version int               `yaml:"version"`
	Teams   map[string]string `yaml:"teams"`
}

// Directory maps players to team names.
type Directory struct {
	version int
	byKey   map[string]string
}

// Empty returns a directory that knows no teams.
func Empty() *Directory {
	return &Directory{byKey: map[string]string{}}
}

// Parse reads a versioned teams document.
func Parse(r io.Reader) (*Directory, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read teams: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Empty(), nil
	}
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse teams: %w", err)
	}
	if f.Version != SupportedVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}
	d := &Directory{version: f.Version, byKey: make(map[string]string, len(f.Teams))}
	for player, team := range f.Teams {
		team = strings.TrimSpace(team)
		if k := roster.Key(player); k != "" && team != "" {
			d.byKey[k] = team
		}
	}
	return d, nil
}

// LoadFile reads the teams file at path. A missing file yields an empty directory.
func LoadFile(path string) (*Directory, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open teams %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Version returns the file version, zero for an empty directory.
func (d *Directory) Version() int {
	if d == nil {
		return 0
	}
	return d.version
}

// Len returns the number of players with a team.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.byKey)
}

// Team returns the team for a player, matching names the way the roster does.
func (d *Directory) Team(player string) (string, bool) {
	if d == nil {
		return "", false
	}
	t, ok := d.byKey[roster.Key(player)]
	return t, ok
}
