package file

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSerializeRoundTrip(t *testing.T) {
	type record struct {
		Name  string
		Count int
	}
	path := filepath.Join(t.TempDir(), "record")

	want := record{Name: "boot", Count: 3}
	if err := Serialize(path, &want); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	var got record
	if err := Unserialize(path, &got); err != nil {
		t.Fatalf("Unserialize failed: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log")

	if err := Append(path, []byte("first\n")); err != nil {
		t.Fatalf("Append (create) failed: %v", err)
	}
	if err := Append(path, []byte("second\n")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if want := "first\nsecond\n"; string(got) != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope")
	if Exists(path) {
		t.Error("Exists reported a missing file")
	}
	if err := Append(path, nil); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if !Exists(path) {
		t.Error("Exists missed a present file")
	}
}
