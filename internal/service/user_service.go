package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/domain"
	"github.com/haierkeys/fast-asset-delivery/pkg/app"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// UserService 定义用户业务服务接口
type UserService interface {
	// Authenticate resolves a bearer credential to an active user.
	// Missing, invalid or expired credentials and unknown or inactive users yield domain.ErrUnauthenticated.
	// Authenticate 将凭证解析为有效用户
	Authenticate(ctx context.Context, credential string) (*domain.User, error)

	// GetActive 获取有效用户
	GetActive(ctx context.Context, uid int64) (*domain.User, error)

	// IssueToken 为用户签发访问凭证
	IssueToken(ctx context.Context, uid int64, ip string) (string, error)
}

// userService 实现 UserService 接口
type userService struct {
	userRepo     domain.UserRepository
	tokenManager app.TokenManager
	logger       *zap.Logger
	dbTimeout    time.Duration
	sf           singleflight.Group
}

// NewUserService 创建 UserService 实例
func NewUserService(userRepo domain.UserRepository, tokenManager app.TokenManager, logger *zap.Logger, config *ServiceConfig) UserService {
	return &userService{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		logger:       logger,
		dbTimeout:    config.Delivery.withDefaults().DBTimeout,
	}
}

// Authenticate 验证凭证
func (s *userService) Authenticate(ctx context.Context, credential string) (*domain.User, error) {
	if credential == "" {
		return nil, domain.ErrUnauthenticated
	}

	claims, err := s.tokenManager.Parse(credential)
	if err != nil || claims.UID <= 0 {
		return nil, domain.ErrUnauthenticated
	}

	return s.GetActive(ctx, claims.UID)
}

// GetActive 获取有效用户，相同用户的并发查询合并为一次
func (s *userService) GetActive(ctx context.Context, uid int64) (*domain.User, error) {
	v, err, _ := s.sf.Do("uid:"+strconv.FormatInt(uid, 10), func() (interface{}, error) {
		dbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.dbTimeout)
		defer cancel()
		return s.userRepo.GetByID(dbCtx, uid)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}

	user := v.(*domain.User)
	if !user.IsActive {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}

// IssueToken 签发凭证
func (s *userService) IssueToken(ctx context.Context, uid int64, ip string) (string, error) {
	user, err := s.GetActive(ctx, uid)
	if err != nil {
		return "", err
	}
	return s.tokenManager.Generate(user.ID, user.Username, ip)
}
