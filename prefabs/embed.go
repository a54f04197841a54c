package prefabs

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

//go:embed scripts/*.tengo
var ScriptsFS embed.FS

//go:embed levels/*.yaml
var LevelsFS embed.FS

// DiskRoot is where on-disk overrides of the embedded files are looked up.
// The viewer points it at the source tree so edits hot reload.
var DiskRoot = "prefabs"

// Load returns a level file, preferring the on-disk copy.
func Load(name string) ([]byte, error) {
	clean := cleanLevelPath(name)
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	return LevelsFS.ReadFile(clean)
}

// LoadScript returns a level script, preferring the on-disk copy.
func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := os.ReadFile(diskPath(clean)); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

func ModTime(name string) (time.Time, bool) {
	clean := cleanLevelPath(name)
	info, err := os.Stat(diskPath(clean))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// LevelNames lists the embedded levels by file name.
func LevelNames() []string {
	matches, err := fs.Glob(LevelsFS, "levels/*.yaml")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, path.Base(m))
	}
	sort.Strings(names)
	return names
}

func cleanLevelPath(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(p)
	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "levels/"); ok {
		s = after
	}
	if !strings.HasSuffix(s, ".yaml") && !strings.HasSuffix(s, ".yml") {
		s += ".yaml"
	}
	return fmt.Sprintf("levels/%s", s)
}

func cleanScriptPath(p string) string {
	if p == "" {
		return ""
	}

	s := filepath.ToSlash(p)

	if after, ok := strings.CutPrefix(s, "prefabs/scripts/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	if !strings.HasSuffix(s, ".tengo") {
		s += ".tengo"
	}

	return fmt.Sprintf("scripts/%s", s)
}

func diskPath(clean string) string {
	return filepath.Join(DiskRoot, filepath.FromSlash(clean))
}
