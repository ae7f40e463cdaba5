package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dvloznov/sheet-import/internal/gcs"
	"github.com/dvloznov/sheet-import/internal/report"
)

// ReadLocation returns the bytes at a local path or a gs:// URI.
func ReadLocation(ctx context.Context, location string, store StorageService) ([]byte, error) {
	if gcs.IsURI(location) {
		if store == nil {
			return nil, fmt.Errorf("ReadLocation: %s: no storage service configured", location)
		}
		data, err := store.FetchFromGCS(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("ReadLocation: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("ReadLocation: %w", err)
	}
	return data, nil
}

// WriteLocation stores data at a local path, a gs:// URI or, for "-", stdout.
func WriteLocation(ctx context.Context, location string, data []byte, store StorageService, stdout io.Writer) error {
	switch {
	case location == StdoutLocation:
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("WriteLocation: stdout: %w", err)
		}
		return nil
	case gcs.IsURI(location):
		if store == nil {
			return fmt.Errorf("WriteLocation: %s: no storage service configured", location)
		}
		if err := store.UploadBytes(ctx, location, data, DocumentContentType); err != nil {
			return fmt.Errorf("WriteLocation: %w", err)
		}
		return nil
	}

	if dir := filepath.Dir(location); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("WriteLocation: %w", err)
		}
	}
	if err := os.WriteFile(location, data, 0o644); err != nil {
		return fmt.Errorf("WriteLocation: %w", err)
	}
	return nil
}

// LoadDocument reads and decodes a previously written document.
func LoadDocument(ctx context.Context, location string, store StorageService) (report.Document, error) {
	data, err := ReadLocation(ctx, location, store)
	if err != nil {
		return report.Document{}, fmt.Errorf("LoadDocument: %w", err)
	}
	doc, err := report.Decode(data)
	if err != nil {
		return report.Document{}, fmt.Errorf("LoadDocument: %s: %w", location, err)
	}
	return doc, nil
}

// documentName identifies the source sheet independently of where it is stored.
func documentName(location string) string {
	if gcs.IsURI(location) {
		return gcs.Filename(location)
	}
	return filepath.Base(location)
}
