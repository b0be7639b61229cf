package dao

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()
	db, err := NewDBEngineWithConfig(DatabaseConfig{
		Type:         "sqlite",
		Path:         filepath.Join(t.TempDir(), "db", "test.sqlite3"),
		AutoMigrate:  true,
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(db, nil)
}

func TestUserRepository(t *testing.T) {
	d := newTestDao(t)
	repo := NewUserRepository(d)
	ctx := context.Background()

	created, err := repo.Create(ctx, &domain.User{Username: "creator", Email: "c@example.com", IsCreator: true, IsActive: true})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "creator", got.Username)
	assert.True(t, got.IsCreator)
	assert.True(t, got.IsActive)

	inactive, err := repo.Create(ctx, &domain.User{Username: "banned", IsActive: false})
	require.NoError(t, err)
	got, err = repo.GetByUsername(ctx, "banned")
	require.NoError(t, err)
	assert.Equal(t, inactive.ID, got.ID)
	assert.False(t, got.IsActive)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestProductRepository(t *testing.T) {
	d := newTestDao(t)
	repo := NewProductRepository(d)
	ctx := context.Background()

	p, err := repo.Create(ctx, &domain.Product{CreatorID: 1, Title: "E-Book", Price: 999, IsActive: true})
	require.NoError(t, err)
	assert.False(t, p.HasFile())

	// 未上传文件的商品不能按空资源ID找到
	_, err = repo.GetByResourceID(ctx, "")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.UpdateFile(ctx, p.ID, "0b7e5c1a-1c2d-4e3f-9a8b-7c6d5e4f3a2b.pdf", "book.pdf", "application/pdf", 2048))

	got, err := repo.GetByResourceID(ctx, "0b7e5c1a-1c2d-4e3f-9a8b-7c6d5e4f3a2b.pdf")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "book.pdf", got.FileName)
	assert.Equal(t, int64(2048), got.FileSize)
	assert.True(t, got.IsOwnedBy(1))
}

func TestPurchaseRepository(t *testing.T) {
	d := newTestDao(t)
	repo := NewPurchaseRepository(d)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Purchase{UserID: 2, ProductID: 1, Amount: 999, PaymentStatus: domain.PaymentPending})
	require.NoError(t, err)

	_, err = repo.GetCompleted(ctx, 2, 1)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.Create(ctx, &domain.Purchase{UserID: 2, ProductID: 1, Amount: 999, PaymentStatus: domain.PaymentCompleted})
	require.NoError(t, err)

	got, err := repo.GetCompleted(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted())
	assert.True(t, got.LastDownloadAt.IsZero())

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateDownloadStats(ctx, 2, 1, 3, at))
	require.NoError(t, repo.UpdateDownloadStats(ctx, 2, 1, 2, at.Add(time.Minute)))

	got, err = repo.GetCompleted(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.DownloadCount)
	assert.True(t, got.LastDownloadAt.Equal(at.Add(time.Minute)), "got %v", got.LastDownloadAt)
}
