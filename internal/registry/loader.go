package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mmdevice/internal/common/fsutil"
)

// LibraryPrefix is the file name prefix of adapter libraries, optionally
// preceded by "lib" (e.g. libmmgr_dal_DemoCamera.so).
const LibraryPrefix = "mmgr_dal_"

var libraryExts = []string{".so", ".dylib", ".dll"}

// Library is an adapter library file found on a search path.
type Library struct {
	// Name is the module name: the file name without prefix and extension.
	Name string
	// Path is the absolute file path.
	Path string
}

// ScanDir lists adapter libraries in one directory. Unlike Scan it fails when
// the directory cannot be read.
func ScanDir(dir string) ([]Library, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var libs []Library
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name, ok := ModuleName(e.Name())
		if !ok {
			continue
		}
		libs = append(libs, Library{Name: name, Path: filepath.Join(abs, e.Name())})
	}
	return libs, nil
}

// Scan walks dirs in order and returns every adapter library found. When two
// directories hold the same module, the first one wins. Directories that do
// not exist are skipped.
func Scan(dirs []string) ([]Library, error) {
	var out []Library
	seen := make(map[string]bool)
	for _, dir := range dirs {
		libs, err := ScanDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return out, fmt.Errorf("%s: %w", dir, err)
		}
		for _, l := range libs {
			if seen[l.Name] {
				continue
			}
			seen[l.Name] = true
			out = append(out, l)
		}
	}
	return out, nil
}

// ModuleName extracts the module name from an adapter library file name.
func ModuleName(file string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(file))
	known := false
	for _, e := range libraryExts {
		if ext == e {
			known = true
			break
		}
	}
	if !known {
		return "", false
	}
	stem := strings.TrimSuffix(file, filepath.Ext(file))
	stem = strings.TrimPrefix(stem, "lib")
	if !strings.HasPrefix(stem, LibraryPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(stem, LibraryPrefix)
	if name == "" {
		return "", false
	}
	return name, true
}
