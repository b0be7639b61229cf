// Package domain 定义领域模型和接口
package domain

import (
	"context"
	"time"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByID 根据ID获取用户
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByUsername 根据用户名获取用户
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Create 创建用户
	Create(ctx context.Context, user *User) (*User, error)
}

// ProductRepository 商品仓储接口
type ProductRepository interface {
	// GetByID 根据ID获取商品
	GetByID(ctx context.Context, id int64) (*Product, error)

	// GetByResourceID 根据资源ID获取商品
	GetByResourceID(ctx context.Context, resourceID string) (*Product, error)

	// Create 创建商品
	Create(ctx context.Context, product *Product) (*Product, error)

	// UpdateFile 更新商品文件信息
	UpdateFile(ctx context.Context, id int64, resourceID, fileName, fileType string, fileSize int64) error
}

// PurchaseRepository 购买记录仓储接口
type PurchaseRepository interface {
	// GetCompleted 获取用户对商品的已完成购买，不存在时返回 gorm.ErrRecordNotFound
	GetCompleted(ctx context.Context, userID, productID int64) (*Purchase, error)

	// Create 创建购买记录
	Create(ctx context.Context, purchase *Purchase) (*Purchase, error)

	// UpdateDownloadStats 累加下载次数并更新最后下载时间
	UpdateDownloadStats(ctx context.Context, userID, productID, countIncr int64, lastDownloadAt time.Time) error
}
