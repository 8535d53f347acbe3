package chat

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// StageUpload copies a caller-owned file into a scratch path the pipeline may
// consume. Ingestion deletes its input after indexing, so the original must
// never be handed over directly. The extension is kept, document type
// detection depends on it.
func StageUpload(sourcePath string) (Upload, error) {
	src, err := os.Open(sourcePath)
	if err != nil {
		return Upload{}, fmt.Errorf("could not open attachment %q: %w", sourcePath, err)
	}
	defer src.Close()

	name := filepath.Base(sourcePath)
	dst, err := os.CreateTemp("", "upload-*"+filepath.Ext(name))
	if err != nil {
		return Upload{}, fmt.Errorf("could not stage attachment %q: %w", name, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return Upload{}, fmt.Errorf("could not copy attachment %q: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return Upload{}, fmt.Errorf("could not stage attachment %q: %w", name, err)
	}

	return Upload{Name: name, Path: dst.Name()}, nil
}
