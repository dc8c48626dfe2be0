package services

import (
	"context"

	"github.com/gofiber/fiber/v2/log"
	"github.com/terraincognita07/ereceipt/internal/storage"
)

// removeStoredFiles deletes files whose rows are already gone. Failures are
// logged and otherwise ignored.
func removeStoredFiles(ctx context.Context, files storage.FileStore, keys []string) {
	if files == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := files.Remove(ctx, key); err != nil {
			log.Warnf("remove stored file %s: %v", key, err)
		}
	}
}
