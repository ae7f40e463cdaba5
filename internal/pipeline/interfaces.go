package pipeline

import (
	"github.com/dvloznov/sheet-import/internal/gcs"
)

// StorageService is the subset of storage operations the import needs.
// A nil StorageService is valid as long as no location is a gs:// URI.
type StorageService = gcs.StorageService
