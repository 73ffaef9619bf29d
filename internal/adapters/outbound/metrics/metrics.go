package metrics

import (
	"errors"
	"fmt"
	"os"

	"github.com/nix-mox/moxlint/internal/domain"
)

// FileSource implements domain.MetricsSource over the exposition file the
// nix-mox scripts write when metrics are enabled.
type FileSource struct{}

func New() *FileSource {
	return &FileSource{}
}

// Read returns the file content. A missing or empty file is reported as
// domain.ErrMetricsUnavailable.
func (s *FileSource) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrMetricsUnavailable, path)
		}
		return "", fmt.Errorf("reading metrics: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s is empty", domain.ErrMetricsUnavailable, path)
	}
	return string(data), nil
}
