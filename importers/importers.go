// Package importers reads lox scripts from the file system.
package importers

import (
	"errors"
	"os"
	"path/filepath"
)

// FileImporter reads script files relative to a working directory.
type FileImporter struct {
	WorkDir string
	// FileReader reads the file at the absolute path, os.ReadFile is used if
	// it is nil.
	FileReader func(string) ([]byte, error)
}

// Name returns the absolute path of the script name.
func (m *FileImporter) Name(name string) string {
	if name == "" {
		return ""
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(m.WorkDir, path)
		if p, err := filepath.Abs(path); err == nil {
			path = p
		}
	}
	return path
}

// Import returns the content of the script name. Empty name will return an
// error.
func (m *FileImporter) Import(name string) ([]byte, error) {
	path := m.Name(name)
	if path == "" {
		return nil, errors.New("invalid import call")
	}
	if m.FileReader != nil {
		return m.FileReader(path)
	}
	return os.ReadFile(path)
}

// Fork returns a new FileImporter working in the directory of the script name.
func (m *FileImporter) Fork(name string) *FileImporter {
	return &FileImporter{
		WorkDir:    filepath.Dir(m.Name(name)),
		FileReader: m.FileReader,
	}
}

// ShebangReadFile reads the file and replaces a leading shebang with a
// comment so the first line is ignored by the scanner.
func ShebangReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	Shebang2Slashes(data)
	return data, nil
}

// Shebang2Slashes replaces "#!" at the start of b with "//".
func Shebang2Slashes(b []byte) {
	if len(b) > 1 && b[0] == '#' && b[1] == '!' {
		b[0] = '/'
		b[1] = '/'
	}
}
