package storage

import (
	"io"
	"strings"
	"testing"
)

func TestLocalSaveOpenDelete(t *testing.T) {
	store := NewLocal(t.TempDir(), "/media/")

	name, err := store.Save("pages/gallery/photo.jpg", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if name != "pages/gallery/photo.jpg" {
		t.Fatalf("expected requested name, got %q", name)
	}
	if got := store.URL(name); got != "/media/pages/gallery/photo.jpg" {
		t.Fatalf("unexpected url %q", got)
	}

	rc, err := store.Open(name)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "data" {
		t.Fatalf("unexpected content %q", body)
	}

	if err := store.Delete(name); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if store.Exists(name) {
		t.Fatal("expected file to be removed")
	}
	if err := store.Delete(name); err != nil {
		t.Fatalf("deleting a missing file should succeed, got %v", err)
	}
}

func TestLocalSaveAvoidsCollisions(t *testing.T) {
	store := NewLocal(t.TempDir(), "/media")

	first, err := store.Save("a/b.png", strings.NewReader("1"))
	if err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	second, err := store.Save("a/b.png", strings.NewReader("2"))
	if err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct names, both were %q", first)
	}
	if !strings.HasPrefix(second, "a/b_") || !strings.HasSuffix(second, ".png") {
		t.Fatalf("unexpected collision name %q", second)
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	store := NewLocal(t.TempDir(), "/media")

	name, err := store.Save("../../etc/passwd", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if name != "etc/passwd" {
		t.Fatalf("expected name to be confined to root, got %q", name)
	}

	if _, err := store.Save("  ", strings.NewReader("x")); err == nil {
		t.Fatal("expected error for blank name")
	}
}
