package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/domain"
	"github.com/haierkeys/fast-asset-delivery/internal/dto"
	"github.com/haierkeys/fast-asset-delivery/pkg/limiter"
	"github.com/haierkeys/fast-asset-delivery/pkg/linktoken"
	pkglogger "github.com/haierkeys/fast-asset-delivery/pkg/logger"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Flow selects how a delivery request proves it may fetch the resource
// Flow 下载流程
type Flow string

const (
	// FlowToken /download: link token plus bearer credential
	FlowToken Flow = "token"
	// FlowAccess /access: bearer credential only, answered with a fresh short lived URL
	FlowAccess Flow = "access"
)

// DeliveryRequest 下载请求
type DeliveryRequest struct {
	Flow       Flow
	ResourceID string
	Credential string
	Token      string
	Expires    string
	ClientIP   string
}

// DeliveryPlan is what the endpoint should answer: Object is streamed when set,
// otherwise the client is redirected to RedirectURL.
// DeliveryPlan 下载计划：Object 不为空时直接输出，否则重定向到 RedirectURL
type DeliveryPlan struct {
	User        *domain.User
	Product     *domain.Product
	Decision    domain.AccessDecision
	Object      *blob.Object
	RedirectURL string
	Outcome     string
}

// RateLimitedError carries the limiter decision of a rejected request
type RateLimitedError struct {
	Decision limiter.Decision
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: %d/%d, reset after %s", e.Decision.Count, e.Decision.Limit, e.Decision.ResetAfter)
}

func (e *RateLimitedError) Unwrap() error { return domain.ErrRateLimited }

// DeliveryService 受控下载服务
type DeliveryService interface {
	// Prepare runs rate check, token verification, authentication and authorization
	// in that order and returns how to deliver the bytes.
	// Prepare 依次执行限流、令牌校验、认证、授权，返回下载计划
	Prepare(ctx context.Context, req *DeliveryRequest) (*DeliveryPlan, error)

	// IssueLink mints a token link for an entitled user; ttl is capped by the configured maximum
	// IssueLink 为有权限的用户签发下载链接
	IssueLink(ctx context.Context, uid, productID int64, ttl time.Duration) (*dto.DownloadLinkResponse, error)
}

type deliveryService struct {
	userService UserService
	productRepo domain.ProductRepository
	policy      AccessPolicy
	locator     storage.Locator
	window      limiter.Window
	codec       *linktoken.Codec
	links       blob.LinkSigner
	stats       *DownloadStats
	logger      *zap.Logger
	config      DeliveryServiceConfig
	now         func() time.Time
}

// DeliveryDeps collaborators of the delivery service
type DeliveryDeps struct {
	UserService UserService
	ProductRepo domain.ProductRepository
	Policy      AccessPolicy
	Locator     storage.Locator
	Window      limiter.Window
	Codec       *linktoken.Codec
	Links       blob.LinkSigner
	Stats       *DownloadStats
}

// NewDeliveryService 创建 DeliveryService 实例
func NewDeliveryService(deps DeliveryDeps, logger *zap.Logger, config *ServiceConfig) DeliveryService {
	return newDeliveryService(deps, logger, config, time.Now)
}

func newDeliveryService(deps DeliveryDeps, logger *zap.Logger, config *ServiceConfig, now func() time.Time) *deliveryService {
	return &deliveryService{
		userService: deps.UserService,
		productRepo: deps.ProductRepo,
		policy:      deps.Policy,
		locator:     deps.Locator,
		window:      deps.Window,
		codec:       deps.Codec,
		links:       deps.Links,
		stats:       deps.Stats,
		logger:      logger,
		config:      config.Delivery.withDefaults(),
		now:         now,
	}
}

// Prepare 下载主流程
func (s *deliveryService) Prepare(ctx context.Context, req *DeliveryRequest) (plan *DeliveryPlan, err error) {
	start := time.Now()
	now := s.now()

	defer func() {
		outcome := outcomeOf(err)
		if err == nil && plan.Object == nil {
			outcome = OutcomeRedirected
		}
		if plan != nil {
			plan.Outcome = outcome
		}
		deliveryRequests.WithLabelValues(outcome).Inc()
		deliveryDuration.WithLabelValues(string(req.Flow)).Observe(time.Since(start).Seconds())
		s.logOutcome(req, plan, outcome, err)
	}()

	// 1. 解析身份，此时不拒绝，用于限流 key
	user, authErr := s.userService.Authenticate(ctx, req.Credential)
	if authErr != nil && !errors.Is(authErr, domain.ErrUnauthenticated) {
		return nil, authErr
	}

	// 2. 限流
	if err := s.rateCheck(ctx, user, req.ClientIP, now); err != nil {
		return nil, err
	}

	// 3. 令牌校验
	if req.Flow == FlowToken {
		if !s.codec.VerifyRaw(req.ResourceID, req.Token, req.Expires, now) {
			return nil, domain.ErrTokenExpiredOrInvalid
		}
	}

	// 4. 认证
	if user == nil {
		return nil, domain.ErrUnauthenticated
	}

	// 5. 授权
	product, err := s.productByResource(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}

	decision, err := s.policy.CanAccess(ctx, user, product)
	if err != nil {
		return nil, err
	}
	plan = &DeliveryPlan{User: user, Product: product, Decision: decision}
	if !decision.Granted {
		return plan, domain.ErrForbidden
	}

	// 6. 输出
	if err := s.deliver(ctx, plan); err != nil {
		return plan, err
	}

	if decision.Reason == domain.AccessPurchased && s.stats != nil {
		s.stats.Record(user.ID, product.ID, now)
	}
	return plan, nil
}

// rateCheck keys on the user when the credential resolved, on the client address otherwise.
// A failing limiter backend lets the request through.
func (s *deliveryService) rateCheck(ctx context.Context, user *domain.User, clientIP string, now time.Time) error {
	if s.window == nil {
		return nil
	}

	key := "ip:" + clientIP
	if user != nil {
		key = "uid:" + strconv.FormatInt(user.ID, 10)
	}

	decision, err := s.window.Allow(ctx, key, now)
	if err != nil {
		s.logger.Warn("rate limiter unavailable, request allowed",
			zap.String("key", key),
			zap.Error(err))
		return nil
	}
	if !decision.Allowed {
		return &RateLimitedError{Decision: decision}
	}
	return nil
}

func (s *deliveryService) productByResource(ctx context.Context, resourceID string) (*domain.Product, error) {
	if resourceID == "" {
		return nil, domain.ErrResourceNotFound
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.config.DBTimeout)
	defer cancel()

	product, err := s.productRepo.GetByResourceID(dbCtx, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, err
	}
	return product, nil
}

// deliver streams from self hosted backends and redirects to a fresh URL otherwise
func (s *deliveryService) deliver(ctx context.Context, plan *DeliveryPlan) error {
	resourceID := plan.Product.ResourceID

	if streamer, ok := s.locator.(storage.Streamer); ok {
		obj, err := streamer.Open(ctx, resourceID)
		if err != nil {
			return s.storageError(resourceID, err)
		}
		// 下载文件名使用上传时的原始文件名
		if plan.Product.FileName != "" {
			obj.Name = plan.Product.FileName
		}
		plan.Object = obj
		return nil
	}

	u, err := s.locator.RetrieveURL(ctx, resourceID, s.config.AccessTTL)
	if err != nil {
		return s.storageError(resourceID, err)
	}
	plan.RedirectURL = u
	return nil
}

func (s *deliveryService) storageError(resourceID string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("product references a missing object", zap.String(pkglogger.FieldResource, resourceID))
		return domain.ErrResourceNotFound
	}
	s.logger.Error("storage backend unavailable", zap.String(pkglogger.FieldResource, resourceID), zap.Error(err))
	return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

// IssueLink 签发下载链接
func (s *deliveryService) IssueLink(ctx context.Context, uid, productID int64, ttl time.Duration) (*dto.DownloadLinkResponse, error) {
	user, err := s.userService.GetActive(ctx, uid)
	if err != nil {
		return nil, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.config.DBTimeout)
	product, err := s.productRepo.GetByID(dbCtx, productID)
	cancel()
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	if !product.HasFile() {
		return nil, domain.ErrResourceNotFound
	}

	decision, err := s.policy.CanAccess(ctx, user, product)
	if err != nil {
		return nil, err
	}
	if !decision.Granted {
		return nil, domain.ErrForbidden
	}

	if ttl <= 0 {
		ttl = s.config.DefaultTTL
	}
	if ttl > s.config.MaxTTL {
		ttl = s.config.MaxTTL
	}

	u, tok, err := s.links.SignLink(product.ResourceID, ttl)
	if err != nil {
		return nil, err
	}

	s.logger.Info("download link issued",
		zap.Int64(pkglogger.FieldUID, user.ID),
		zap.Int64(pkglogger.FieldProductID, product.ID),
		zap.Duration("ttl", ttl))

	return &dto.DownloadLinkResponse{
		URL:       u,
		ExpiresAt: time.Unix(tok.ExpiresAt, 0),
		Reason:    string(decision.Reason),
	}, nil
}

func (s *deliveryService) logOutcome(req *DeliveryRequest, plan *DeliveryPlan, outcome string, err error) {
	fields := []zap.Field{
		zap.String(pkglogger.FieldOutcome, outcome),
		zap.String("flow", string(req.Flow)),
		zap.String(pkglogger.FieldResource, req.ResourceID),
		zap.String(pkglogger.FieldClientIP, req.ClientIP),
	}
	if plan != nil && plan.User != nil {
		fields = append(fields, zap.Int64(pkglogger.FieldUID, plan.User.ID))
	}

	switch outcome {
	case OutcomeServed, OutcomeRedirected:
		s.logger.Info("delivery granted", append(fields, zap.String("reason", string(plan.Decision.Reason)))...)
	case OutcomeError:
		s.logger.Error("delivery failed", append(fields, zap.Error(err))...)
	default:
		s.logger.Info("delivery refused", fields...)
	}
}

// outcomeOf maps an error of Prepare onto its metric label
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeServed
	case errors.Is(err, domain.ErrRateLimited):
		return OutcomeRateLimited
	case errors.Is(err, domain.ErrTokenExpiredOrInvalid):
		return OutcomeInvalidToken
	case errors.Is(err, domain.ErrUnauthenticated):
		return OutcomeUnauthenticated
	case errors.Is(err, domain.ErrResourceNotFound):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrForbidden):
		return OutcomeForbidden
	case errors.Is(err, domain.ErrStorageUnavailable):
		return OutcomeStorageUnavailable
	default:
		return OutcomeError
	}
}
