package service

import (
	"context"
	"errors"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/domain"

	"gorm.io/gorm"
)

// AccessPolicy decides whether a user may download the file of a product.
// Decisions are computed per call and never cached.
// AccessPolicy 判断用户是否可以下载商品文件，每次调用实时计算，不缓存
type AccessPolicy interface {
	CanAccess(ctx context.Context, user *domain.User, product *domain.Product) (domain.AccessDecision, error)
}

type accessPolicy struct {
	purchaseRepo domain.PurchaseRepository
	dbTimeout    time.Duration
}

// NewAccessPolicy 创建 AccessPolicy 实例
func NewAccessPolicy(purchaseRepo domain.PurchaseRepository, config *ServiceConfig) AccessPolicy {
	return &accessPolicy{
		purchaseRepo: purchaseRepo,
		dbTimeout:    config.Delivery.withDefaults().DBTimeout,
	}
}

// CanAccess owner first, then a purchase whose payment status is exactly completed.
// A repository failure is returned as an error, never as a denial.
func (p *accessPolicy) CanAccess(ctx context.Context, user *domain.User, product *domain.Product) (domain.AccessDecision, error) {
	if user == nil || product == nil {
		return domain.AccessDecision{Granted: false, Reason: domain.AccessDenied}, nil
	}

	if product.IsOwnedBy(user.ID) {
		return domain.AccessDecision{Granted: true, Reason: domain.AccessOwner}, nil
	}

	dbCtx, cancel := context.WithTimeout(ctx, p.dbTimeout)
	defer cancel()

	purchase, err := p.purchaseRepo.GetCompleted(dbCtx, user.ID, product.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AccessDecision{Granted: false, Reason: domain.AccessDenied}, nil
		}
		return domain.AccessDecision{}, err
	}

	if purchase.IsCompleted() {
		return domain.AccessDecision{Granted: true, Reason: domain.AccessPurchased}, nil
	}
	return domain.AccessDecision{Granted: false, Reason: domain.AccessDenied}, nil
}
