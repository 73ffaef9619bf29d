package scanner

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/nix-mox/moxlint/internal/domain"
)

var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
	".direnv":      true,
	"result":       true,
	".moxlint":     true,
}

// FileScanner implements domain.ScriptScanner by walking the filesystem.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

// Scan returns the .nu files under root as slash-separated paths relative
// to root, sorted. Excluded paths from cfg are skipped.
func (s *FileScanner) Scan(root string, cfg domain.LintConfig) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, _ := filepath.Rel(absRoot, path)
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if path != absRoot && (skipDirs[d.Name()] || cfg.IsExcluded(relPath)) {
				return filepath.SkipDir
			}
			return nil
		}

		if !domain.IsNushellScript(d.Name()) || cfg.IsExcluded(relPath) {
			return nil
		}
		files = append(files, relPath)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
