package download

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMoveFileRenamesIntoPlace(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "audio.part")
	dest := filepath.Join(dir, "audio.mp3")
	if err := os.WriteFile(src, []byte("audio-bytes"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	if err := moveFile(src, dest); err != nil {
		t.Fatalf("moveFile: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Fatalf("unexpected contents %q", data)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("expected src removed, got %v", err)
	}
}

func TestCopyIntoStagesBesideDestination(t *testing.T) {
	srcDir := t.TempDir()
	destDir := t.TempDir()
	src := filepath.Join(srcDir, "audio.part")
	dest := filepath.Join(destDir, "audio.mp3")
	if err := os.WriteFile(src, []byte("audio-bytes"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	if err := copyInto(src, dest); err != nil {
		t.Fatalf("copyInto: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(data) != "audio-bytes" {
		t.Fatalf("unexpected contents %q", data)
	}
	// The staging file never outlives the copy.
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected staging file removed, got %v", err)
	}
	// copyInto leaves src for moveFile to remove.
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("expected src untouched, got %v", err)
	}
}

func TestCopyIntoMissingSourceLeavesNoDestination(t *testing.T) {
	destDir := t.TempDir()
	dest := filepath.Join(destDir, "audio.mp3")

	if err := copyInto(filepath.Join(destDir, "absent.part"), dest); err == nil {
		t.Fatal("expected error for missing source")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("expected no file at destination, got %v", err)
	}
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected no staging file, got %v", err)
	}
}
