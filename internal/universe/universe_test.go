package universe

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "symbols.txt")
	if err := os.WriteFile(path, []byte("AAPL\n\n  MSFT  \nNVDA\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := NewFileSource(path).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"AAPL", "MSFT", "NVDA"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("symbol %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFileSource_Missing(t *testing.T) {
	if _, err := NewFileSource(filepath.Join(t.TempDir(), "nope.txt")).Load(); err == nil {
		t.Error("expected error for missing file")
	}
}
