package ingest

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound indicates the input path does not exist.
	ErrNotFound = errors.New("input path does not exist")
	// ErrUnsupportedInput indicates the input is neither a ZIP archive nor a directory.
	ErrUnsupportedInput = errors.New("input must be a ZIP archive or directory")
	// ErrCorruptArchive indicates the input looked like a ZIP archive but could not be read.
	ErrCorruptArchive = errors.New("corrupt ZIP archive")
)

// Ingester turns an input path (ZIP archive or directory) into a plain
// directory tree ready for traversal. Archives are extracted into a
// temporary workspace which Cleanup releases.
type Ingester struct {
	tempDir string
}

func NewIngester() *Ingester {
	return &Ingester{}
}

// Run resolves the input path into a workspace directory. Directories are
// used in place; ZIP archives are extracted into a temporary directory.
func (i *Ingester) Run(inputPath string) (string, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, inputPath)
		}
		return "", fmt.Errorf("failed to stat input path: %w", err)
	}

	if info.IsDir() {
		slog.Info("Using directory as workspace", "path", inputPath)
		return inputPath, nil
	}

	if strings.EqualFold(filepath.Ext(inputPath), ".zip") {
		return i.extractZip(inputPath)
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedInput, inputPath)
}

// Cleanup removes any temporary extraction directory. Safe to call
// multiple times and before Run.
func (i *Ingester) Cleanup() {
	if i.tempDir == "" {
		return
	}

	slog.Debug("Cleaning up temporary directory", "path", i.tempDir)
	if err := os.RemoveAll(i.tempDir); err != nil {
		slog.Warn("Failed to clean up temporary directory", "path", i.tempDir, "error", err)
	}
	i.tempDir = ""
}

func (i *Ingester) extractZip(zipPath string) (string, error) {
	slog.Info("Extracting ZIP archive", "path", zipPath)

	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrCorruptArchive, zipPath, err)
	}
	defer reader.Close()

	tempDir, err := os.MkdirTemp("", "omegaparse-")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary directory: %w", err)
	}
	i.tempDir = tempDir

	workspace := filepath.Join(tempDir, "extracted")
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		i.Cleanup()
		return "", fmt.Errorf("failed to create workspace: %w", err)
	}

	for _, file := range reader.File {
		if err := i.extractEntry(file, workspace); err != nil {
			i.Cleanup()
			return "", fmt.Errorf("%w: %s: %v", ErrCorruptArchive, zipPath, err)
		}
	}

	slog.Info("Extracted archive", "workspace", workspace, "entries", len(reader.File))
	return workspace, nil
}

func (i *Ingester) extractEntry(file *zip.File, workspace string) error {
	dest := filepath.Join(workspace, file.Name)

	// Reject entries that escape the workspace (zip-slip).
	if !strings.HasPrefix(dest, filepath.Clean(workspace)+string(os.PathSeparator)) {
		return fmt.Errorf("illegal entry path: %s", file.Name)
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return err
	}

	return nil
}
