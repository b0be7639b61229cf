package upgrade

import (
	"context"
	"fmt"

	"github.com/haierkeys/fast-asset-delivery/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const productDownloadURLColumn = "download_url"

// DropProductDownloadURL removes the permanent public URL column of early releases.
// Files are only reachable through signed links.
// DropProductDownloadURL 删除早期版本的永久公开下载地址字段
type DropProductDownloadURL struct{}

func (DropProductDownloadURL) Version() string { return "0.3.0" }

func (DropProductDownloadURL) Description() string {
	return "drop product.download_url"
}

func (DropProductDownloadURL) Up(ctx context.Context, tx *gorm.DB) error {
	tx = tx.WithContext(ctx)
	migrator := tx.Migrator()
	if !migrator.HasColumn(&model.Product{}, productDownloadURLColumn) {
		return nil
	}

	if tx.Dialector.Name() == "sqlite" {
		// sqlite 迁移器按带引号的列定义查找，早期版本手工添加的列匹配不到，直接执行 DDL
		stmt := &gorm.Statement{DB: tx}
		if err := stmt.Parse(&model.Product{}); err != nil {
			return err
		}
		err := tx.Exec("ALTER TABLE ? DROP COLUMN ?",
			clause.Table{Name: stmt.Schema.Table},
			clause.Column{Name: productDownloadURLColumn}).Error
		if err != nil {
			return err
		}
	} else if err := migrator.DropColumn(&model.Product{}, productDownloadURLColumn); err != nil {
		return err
	}

	// 列仍然存在时不能记录为已执行
	if migrator.HasColumn(&model.Product{}, productDownloadURLColumn) {
		return fmt.Errorf("column product.%s still present after drop", productDownloadURLColumn)
	}
	return nil
}
