package ingestion

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// MaxFileSize is the largest accepted input, in bytes.
const MaxFileSize = 5 * 1024 * 1024

// AllowedExtensions lists the accepted file extensions.
var AllowedExtensions = []string{".xlf", ".xliff", ".xml"}

// CheckFilename rejects names whose extension is not an XLIFF/XML extension.
func CheckFilename(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return &UploadError{
		Filename: name,
		Message:  fmt.Sprintf("expected one of %s", strings.Join(AllowedExtensions, ", ")),
		Cause:    ErrUnsupportedExtension,
	}
}

// ReadFile reads a localization file from disk, enforcing the extension and size limits.
func ReadFile(path string) (string, *Metadata, error) {
	if err := CheckFilename(path); err != nil {
		return "", nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadUpload(file, filepath.Base(path), MaxFileSize)
}

// ReadUpload reads at most limit bytes of an uploaded file named name.
// A non-positive limit means MaxFileSize.
func ReadUpload(r io.Reader, name string, limit int64) (string, *Metadata, error) {
	if limit <= 0 || limit > MaxFileSize {
		limit = MaxFileSize
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", nil, &UploadError{Filename: name, Message: "failed to read content", Cause: err}
	}
	if int64(len(data)) > limit {
		return "", nil, &UploadError{
			Filename: name,
			Message:  fmt.Sprintf("exceeds %d bytes", limit),
			Cause:    ErrFileTooLarge,
		}
	}
	if !utf8.Valid(data) {
		return "", nil, &UploadError{Filename: name, Message: "invalid UTF-8", Cause: ErrNotText}
	}

	content := string(data)
	return content, NewMetadata(content, name), nil
}

// FixedFilename derives the download name for a repaired file: messages.xlf -> messages_fixed.xlf.
func FixedFilename(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "fixed.xlf"
	}
	ext := filepath.Ext(base)
	if ext == "" {
		ext = ".xlf"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_fixed" + ext
}

// WriteOutput writes repaired content to outDir under FixedFilename(name) and returns the path.
func WriteOutput(outDir string, name string, content string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outPath := filepath.Join(outDir, FixedFilename(name))
	if err := os.WriteFile(outPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write repaired file: %w", err)
	}
	return outPath, nil
}
