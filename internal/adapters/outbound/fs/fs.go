package fs

import "os"

// OSChecker implements domain.FileChecker against the real filesystem.
type OSChecker struct{}

func New() *OSChecker { return &OSChecker{} }

func (OSChecker) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
