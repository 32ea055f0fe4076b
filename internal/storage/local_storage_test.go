package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStorageSaveAndDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}

	key, err := store.Save(context.Background(), []byte("hello"), SaveOptions{
		Category:  "u1",
		Extension: "txt",
		BaseName:  "notes",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(key, "u1/") || !strings.HasSuffix(key, ".txt") {
		t.Fatalf("unexpected object key: %s", key)
	}

	absPath := filepath.Join(store.LocalBaseDir(), filepath.FromSlash(key))
	data, err := os.ReadFile(absPath)
	if err != nil {
		t.Fatalf("failed to read stored file: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected content: %q", data)
	}

	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(absPath); !os.IsNotExist(err) {
		t.Fatalf("expected file to be removed, stat err: %v", err)
	}

	// Deleting a missing key is not an error.
	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("expected idempotent delete, got %v", err)
	}
}

func TestLocalStorageRejectsEmptyPayload(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	if _, err := store.Save(context.Background(), nil, SaveOptions{Category: "u1"}); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestLocalStorageDeleteRefusesEscape(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	if err := store.Delete(context.Background(), "../outside.txt"); err == nil {
		t.Fatal("expected error for key escaping the base dir")
	}
}

func TestBuildObjectPath(t *testing.T) {
	key := buildObjectPath("U 1!", "My Notes.txt", ".TXT")
	if !strings.HasPrefix(key, "u1/") {
		t.Fatalf("expected sanitised category prefix, got %s", key)
	}
	if !strings.HasSuffix(key, ".txt") {
		t.Fatalf("expected normalised extension, got %s", key)
	}

	// No category falls back to misc; no extension falls back to bin.
	key = buildObjectPath("", "", "")
	if !strings.HasPrefix(key, "misc/") || !strings.HasSuffix(key, ".bin") {
		t.Fatalf("unexpected fallback key: %s", key)
	}
}

func TestResolveContentType(t *testing.T) {
	if got := resolveContentType(SaveOptions{ContentType: "application/pdf", Extension: "txt"}); got != "application/pdf" {
		t.Fatalf("explicit content type should win, got %s", got)
	}
	if got := resolveContentType(SaveOptions{Extension: "unknownext"}); got != "application/octet-stream" {
		t.Fatalf("expected octet-stream fallback, got %s", got)
	}
}
