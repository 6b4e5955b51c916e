package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type memoryFile struct {
	*bytes.Reader
}

func (memoryFile) Close() error { return nil }

func newMemoryFile(content string) memoryFile {
	return memoryFile{Reader: bytes.NewReader([]byte(content))}
}

func TestLocalStorageUploadAndDelete(t *testing.T) {
	service := NewLocalStorageService(t.TempDir())

	url, err := service.UploadFile(context.Background(), newMemoryFile("avatar-bytes"), "me.png", "avatars/parents")
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}

	if !strings.HasPrefix(url, "/uploads/avatars/parents/") {
		t.Fatalf("unexpected url: %q", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Fatalf("expected original extension kept, got %q", url)
	}

	if err := service.DeleteFile(context.Background(), url); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
}

func TestLocalStorageUploadWritesContent(t *testing.T) {
	base := t.TempDir()
	service := NewLocalStorageService(base)

	url, err := service.UploadFile(context.Background(), newMemoryFile("hello"), "doc.txt", "misc")
	if err != nil {
		t.Fatalf("UploadFile: %v", err)
	}

	onDisk := filepath.Join(base, strings.TrimPrefix(url, "/uploads/"))
	content, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(content) != "hello" {
		t.Fatalf("expected stored content %q, got %q", "hello", string(content))
	}
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	service := NewLocalStorageService(t.TempDir())

	if _, err := service.UploadFile(context.Background(), newMemoryFile("x"), "f.png", "../outside"); err == nil {
		t.Fatal("expected traversal folder to be rejected")
	}
	if err := service.DeleteFile(context.Background(), "/uploads/../secret"); err == nil {
		t.Fatal("expected traversal delete to be rejected")
	}
	if err := service.DeleteFile(context.Background(), "https://elsewhere/file.png"); err == nil {
		t.Fatal("expected non-upload url to be rejected")
	}
}
