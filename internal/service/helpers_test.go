package service

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/dao"
	"github.com/haierkeys/fast-asset-delivery/internal/domain"
	"github.com/haierkeys/fast-asset-delivery/pkg/app"
	"github.com/haierkeys/fast-asset-delivery/pkg/limiter"
	"github.com/haierkeys/fast-asset-delivery/pkg/linktoken"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage"
	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)

type fixture struct {
	users     domain.UserRepository
	products  domain.ProductRepository
	purchases domain.PurchaseRepository
	tokens    app.TokenManager
	codec     *linktoken.Codec
	locator   storage.Locator
	window    *limiter.MemoryWindow
	stats     *DownloadStats
	config    *ServiceConfig

	creator *domain.User
	buyer   *domain.User
	other   *domain.User
	product *domain.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{
		Type:         "sqlite",
		Path:         filepath.Join(t.TempDir(), "svc.sqlite3"),
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
	d := dao.New(db, nil)

	codec, err := linktoken.NewCodec("service-link-secret")
	require.NoError(t, err)

	links := blob.NewTokenLinks(codec, "http://shop.test").WithClock(func() time.Time { return testNow })
	locator, err := storage.NewClient(&storage.Config{Type: storage.LOCAL, SavePath: t.TempDir()}, storage.WithLinkSigner(links))
	require.NoError(t, err)

	f := &fixture{
		users:     dao.NewUserRepository(d),
		products:  dao.NewProductRepository(d),
		purchases: dao.NewPurchaseRepository(d),
		tokens:    app.NewTokenManager(app.TokenConfig{SecretKey: "service-auth-secret", Expiry: 24 * time.Hour}),
		codec:     codec,
		locator:   locator,
		window:    limiter.NewMemoryWindow(limiter.WindowConfig{Max: 10, Window: time.Minute}),
		config:    &ServiceConfig{},
	}
	f.stats = NewDownloadStats(f.purchases, zap.NewNop())

	f.creator, err = f.users.Create(ctx, &domain.User{Username: "creator", IsCreator: true, IsActive: true})
	require.NoError(t, err)
	f.buyer, err = f.users.Create(ctx, &domain.User{Username: "buyer", IsActive: true})
	require.NoError(t, err)
	f.other, err = f.users.Create(ctx, &domain.User{Username: "other", IsActive: true})
	require.NoError(t, err)

	f.product, err = f.products.Create(ctx, &domain.Product{CreatorID: f.creator.ID, Title: "Field Recordings", Price: 1500, IsActive: true})
	require.NoError(t, err)

	resourceID, err := locator.Store(ctx, strings.NewReader("wav bytes"), "recordings.zip")
	require.NoError(t, err)
	require.NoError(t, f.products.UpdateFile(ctx, f.product.ID, resourceID, "recordings.zip", "application/zip", 9))
	f.product.ResourceID = resourceID
	f.product.FileName = "recordings.zip"

	_, err = f.purchases.Create(ctx, &domain.Purchase{
		UserID:        f.buyer.ID,
		ProductID:     f.product.ID,
		Amount:        1500,
		PaymentStatus: domain.PaymentCompleted,
	})
	require.NoError(t, err)

	return f
}

func (f *fixture) userService() UserService {
	return NewUserService(f.users, f.tokens, zap.NewNop(), f.config)
}

func (f *fixture) deliveryService(now func() time.Time) *deliveryService {
	users := f.userService()
	return newDeliveryService(DeliveryDeps{
		UserService: users,
		ProductRepo: f.products,
		Policy:      NewAccessPolicy(f.purchases, f.config),
		Locator:     f.locator,
		Window:      f.window,
		Codec:       f.codec,
		Links:       blob.NewTokenLinks(f.codec, "http://shop.test").WithClock(now),
		Stats:       f.stats,
	}, zap.NewNop(), f.config, now)
}

func (f *fixture) bearer(t *testing.T, u *domain.User) string {
	t.Helper()
	tok, err := f.tokens.Generate(u.ID, u.Username, "")
	require.NoError(t, err)
	return tok
}
