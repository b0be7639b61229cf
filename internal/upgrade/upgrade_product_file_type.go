package upgrade

import (
	"context"
	"mime"
	"path/filepath"

	"github.com/haierkeys/fast-asset-delivery/internal/model"

	"gorm.io/gorm"
)

// ProductFileTypeBackfill fills file_type of products uploaded before the column was written
type ProductFileTypeBackfill struct{}

func (ProductFileTypeBackfill) Version() string { return "0.2.0" }

func (ProductFileTypeBackfill) Description() string {
	return "backfill product.file_type from the stored file name"
}

func (ProductFileTypeBackfill) Up(ctx context.Context, tx *gorm.DB) error {
	var products []model.Product
	return tx.WithContext(ctx).
		Where("resource_id <> ? AND file_type = ?", "", "").
		FindInBatches(&products, 200, func(batch *gorm.DB, _ int) error {
			for _, p := range products {
				fileType := mime.TypeByExtension(filepath.Ext(p.FileName))
				if fileType == "" {
					fileType = "application/octet-stream"
				}
				if err := tx.WithContext(ctx).Model(&model.Product{}).
					Where("id = ?", p.ID).
					UpdateColumn("file_type", fileType).Error; err != nil {
					return err
				}
			}
			return nil
		}).Error
}
