package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

type StorageService interface {
	UploadFile(ctx context.Context, file multipart.File, filename string, folder string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

// LocalStorageService writes uploads under a fixed directory tree that the
// server exposes as static files at /uploads.
type LocalStorageService struct {
	baseDir string
}

func NewLocalStorageService(baseDir string) *LocalStorageService {
	return &LocalStorageService{baseDir: baseDir}
}

func (s *LocalStorageService) UploadFile(_ context.Context, file multipart.File, filename string, folder string) (string, error) {
	folder = strings.Trim(folder, "/")
	if folder == "" || strings.Contains(folder, "..") {
		return "", fmt.Errorf("invalid upload folder")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectName := uuid.NewString() + ext

	dir := filepath.Join(s.baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, objectName))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return "/uploads/" + path.Join(folder, objectName), nil
}

func (s *LocalStorageService) DeleteFile(_ context.Context, fileURL string) error {
	relative := strings.TrimPrefix(fileURL, "/uploads/")
	if relative == fileURL || strings.Contains(relative, "..") {
		return fmt.Errorf("file url is not an upload path")
	}

	err := os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(relative)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}
