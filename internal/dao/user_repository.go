package dao

import (
	"context"

	"github.com/haierkeys/fast-asset-delivery/internal/domain"
	"github.com/haierkeys/fast-asset-delivery/internal/model"

	"github.com/jinzhu/copier"
)

// userRepository 实现 domain.UserRepository 接口
type userRepository struct {
	dao *Dao
}

// NewUserRepository 创建 UserRepository 实例
func NewUserRepository(dao *Dao) domain.UserRepository {
	return &userRepository{dao: dao}
}

func (r *userRepository) toDomain(m *model.User) *domain.User {
	if m == nil {
		return nil
	}
	u := &domain.User{}
	_ = copier.Copy(u, m)
	return u
}

// GetByID 根据ID获取用户
func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m model.User
	if err := r.dao.Db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByUsername 根据用户名获取用户
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var m model.User
	if err := r.dao.Db.WithContext(ctx).Where("username = ?", username).First(&m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建用户
func (r *userRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	m := &model.User{}
	if err := copier.Copy(m, user); err != nil {
		return nil, err
	}
	if err := r.dao.Db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}
