package chat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStageUpload_OriginalSurvivesIngestionCleanup(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "notes.txt")
	content := []byte("the caller keeps this file")
	if err := os.WriteFile(original, content, 0o644); err != nil {
		t.Fatal(err)
	}

	upload, err := StageUpload(original)
	if err != nil {
		t.Fatalf("StageUpload failed: %v", err)
	}
	t.Cleanup(func() { os.Remove(upload.Path) })

	if upload.Path == original {
		t.Fatal("staging handed the original path to the pipeline")
	}
	if upload.Name != "notes.txt" {
		t.Errorf("upload name got %q, want the original base name", upload.Name)
	}
	if filepath.Ext(upload.Path) != ".txt" {
		t.Errorf("staged path %q lost the extension", upload.Path)
	}

	staged, err := os.ReadFile(upload.Path)
	if err != nil {
		t.Fatalf("staged copy unreadable: %v", err)
	}
	if string(staged) != string(content) {
		t.Error("staged copy differs from the original")
	}

	// ingestion removes its input after indexing, the original must survive
	if err := os.Remove(upload.Path); err != nil {
		t.Fatalf("could not simulate ingestion cleanup: %v", err)
	}
	if _, err := os.Stat(original); err != nil {
		t.Errorf("original file gone after staged copy was consumed: %v", err)
	}
}

func TestStageUpload_MissingFileFails(t *testing.T) {
	if _, err := StageUpload(filepath.Join(t.TempDir(), "ghost.pdf")); err == nil {
		t.Error("expected error for a non-existent attachment")
	}
}
