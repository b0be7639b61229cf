package dao

import (
	"context"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/domain"
	"github.com/haierkeys/fast-asset-delivery/internal/model"

	"gorm.io/gorm"
)

// purchaseRepository 实现 domain.PurchaseRepository 接口
type purchaseRepository struct {
	dao *Dao
}

// NewPurchaseRepository 创建 PurchaseRepository 实例
func NewPurchaseRepository(dao *Dao) domain.PurchaseRepository {
	return &purchaseRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *purchaseRepository) toDomain(m *model.Purchase) *domain.Purchase {
	if m == nil {
		return nil
	}
	p := &domain.Purchase{
		ID:              m.ID,
		UserID:          m.UserID,
		ProductID:       m.ProductID,
		Amount:          m.Amount,
		PaymentStatus:   domain.PaymentStatus(m.PaymentStatus),
		PaymentIntentID: m.PaymentIntentID,
		DownloadCount:   m.DownloadCount,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.LastDownloadAt != nil {
		p.LastDownloadAt = *m.LastDownloadAt
	}
	return p
}

// toModel 将领域模型转换为数据库模型
func (r *purchaseRepository) toModel(p *domain.Purchase) *model.Purchase {
	m := &model.Purchase{
		ID:              p.ID,
		UserID:          p.UserID,
		ProductID:       p.ProductID,
		Amount:          p.Amount,
		PaymentStatus:   string(p.PaymentStatus),
		PaymentIntentID: p.PaymentIntentID,
		DownloadCount:   p.DownloadCount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if !p.LastDownloadAt.IsZero() {
		t := p.LastDownloadAt
		m.LastDownloadAt = &t
	}
	return m
}

// GetCompleted 获取用户对商品的已完成购买
func (r *purchaseRepository) GetCompleted(ctx context.Context, userID, productID int64) (*domain.Purchase, error) {
	var m model.Purchase
	err := r.dao.Db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND payment_status = ?", userID, productID, string(domain.PaymentCompleted)).
		Order("id DESC").
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建购买记录
func (r *purchaseRepository) Create(ctx context.Context, purchase *domain.Purchase) (*domain.Purchase, error) {
	m := r.toModel(purchase)
	if err := r.dao.Db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// UpdateDownloadStats 累加下载次数并更新最后下载时间
func (r *purchaseRepository) UpdateDownloadStats(ctx context.Context, userID, productID, countIncr int64, lastDownloadAt time.Time) error {
	return r.dao.Db.WithContext(ctx).Model(&model.Purchase{}).
		Where("user_id = ? AND product_id = ? AND payment_status = ?", userID, productID, string(domain.PaymentCompleted)).
		Updates(map[string]interface{}{
			"download_count":   gorm.Expr("download_count + ?", countIncr),
			"last_download_at": lastDownloadAt,
		}).Error
}
