package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAndReadJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	in := map[string]string{"hello": "world"}
	if err := WriteJSONAtomic(path, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out map[string]string
	if !ReadJSONSafely(path, &out) {
		t.Fatal("expected snapshot to load")
	}
	if out["hello"] != "world" {
		t.Errorf("round trip mismatch: %v", out)
	}
	// No leftover temp file after a successful write.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after rename")
	}
}

func TestReadJSONSafelyMissingFile(t *testing.T) {
	var out map[string]string
	if ReadJSONSafely(filepath.Join(t.TempDir(), "nope.json"), &out) {
		t.Error("missing file should report false")
	}
}

func TestReadJSONSafelyInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	var out map[string]string
	if ReadJSONSafely(path, &out) {
		t.Error("invalid JSON should report false")
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Setenv("SAVO_TEST_BOOL", "yes")
	if !ParseBoolEnv("SAVO_TEST_BOOL", false) {
		t.Error("expected true for 'yes'")
	}
	t.Setenv("SAVO_TEST_BOOL", "garbage")
	if ParseBoolEnv("SAVO_TEST_BOOL", false) {
		t.Error("expected default for invalid value")
	}
	if !ParseBoolEnv("SAVO_TEST_BOOL_UNSET", true) {
		t.Error("expected default for unset variable")
	}
}

func TestParseIntEnv(t *testing.T) {
	t.Setenv("SAVO_TEST_INT", "42")
	if got := ParseIntEnv("SAVO_TEST_INT", 7); got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	t.Setenv("SAVO_TEST_INT", "nope")
	if got := ParseIntEnv("SAVO_TEST_INT", 7); got != 7 {
		t.Errorf("got %d, want default 7", got)
	}
}
