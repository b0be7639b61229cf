package dao

import (
	"context"

	"github.com/haierkeys/fast-asset-delivery/internal/domain"
	"github.com/haierkeys/fast-asset-delivery/internal/model"

	"github.com/jinzhu/copier"
)

// productRepository 实现 domain.ProductRepository 接口
type productRepository struct {
	dao *Dao
}

// NewProductRepository 创建 ProductRepository 实例
func NewProductRepository(dao *Dao) domain.ProductRepository {
	return &productRepository{dao: dao}
}

func (r *productRepository) toDomain(m *model.Product) *domain.Product {
	if m == nil {
		return nil
	}
	p := &domain.Product{}
	_ = copier.Copy(p, m)
	return p
}

// GetByID 根据ID获取商品
func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var m model.Product
	if err := r.dao.Db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByResourceID 根据资源ID获取商品，空资源ID视为不存在
func (r *productRepository) GetByResourceID(ctx context.Context, resourceID string) (*domain.Product, error) {
	var m model.Product
	err := r.dao.Db.WithContext(ctx).
		Where("resource_id = ? AND resource_id <> ''", resourceID).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建商品
func (r *productRepository) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	m := &model.Product{}
	if err := copier.Copy(m, product); err != nil {
		return nil, err
	}
	if err := r.dao.Db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// UpdateFile 更新商品文件信息
func (r *productRepository) UpdateFile(ctx context.Context, id int64, resourceID, fileName, fileType string, fileSize int64) error {
	return r.dao.Db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"resource_id": resourceID,
			"file_name":   fileName,
			"file_type":   fileType,
			"file_size":   fileSize,
		}).Error
}
