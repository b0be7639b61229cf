package upgrade

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/haierkeys/fast-asset-delivery/internal/dao"
	"github.com/haierkeys/fast-asset-delivery/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dao.NewDBEngineWithConfig(dao.DatabaseConfig{
		Type:         "sqlite",
		Path:         filepath.Join(t.TempDir(), "upgrade.sqlite3"),
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
	return db
}

func TestMigrationManager_AppliesOnce(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// 模拟早期版本的数据
	require.NoError(t, db.Exec("ALTER TABLE product ADD COLUMN download_url varchar(512)").Error)
	legacy := &model.Product{CreatorID: 1, Title: "Album", ResourceID: "0b7e5c1a-1c2d-4e3f-9a8b-7c6d5e4f3a2b.pdf", FileName: "album.pdf", IsActive: true}
	unknown := &model.Product{CreatorID: 1, Title: "Blob", ResourceID: "1b7e5c1a-1c2d-4e3f-9a8b-7c6d5e4f3a2b", FileName: "blob", IsActive: true}
	empty := &model.Product{CreatorID: 1, Title: "Draft", IsActive: true}
	require.NoError(t, db.Create(legacy).Error)
	require.NoError(t, db.Create(unknown).Error)
	require.NoError(t, db.Create(empty).Error)

	applied, err := NewMigrationManager(db, zap.NewNop()).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	fileType := func(id int64) string {
		var got model.Product
		require.NoError(t, db.First(&got, id).Error)
		return got.FileType
	}
	assert.Equal(t, "application/pdf", fileType(legacy.ID))
	assert.Equal(t, "application/octet-stream", fileType(unknown.ID))
	assert.Empty(t, fileType(empty.ID))

	assert.False(t, db.Migrator().HasColumn(&model.Product{}, "download_url"))

	var versions []SchemaVersion
	require.NoError(t, db.Order("version").Find(&versions).Error)
	require.Len(t, versions, 2)
	assert.Equal(t, "0.2.0", versions[0].Version)
	assert.Equal(t, "0.3.0", versions[1].Version)

	applied, err = Execute(ctx, db, nil)
	require.NoError(t, err)
	assert.Zero(t, applied)
}

func TestDropProductDownloadURL_Sqlite(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Exec("ALTER TABLE product ADD COLUMN download_url varchar(512)").Error)
	require.NoError(t, db.Create(&model.Product{CreatorID: 1, Title: "Album", IsActive: true}).Error)
	require.True(t, db.Migrator().HasColumn(&model.Product{}, "download_url"))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return DropProductDownloadURL{}.Up(ctx, tx)
	}))
	assert.False(t, db.Migrator().HasColumn(&model.Product{}, "download_url"))

	var count int64
	require.NoError(t, db.Model(&model.Product{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// 列已不存在时再次执行无副作用
	assert.NoError(t, DropProductDownloadURL{}.Up(ctx, db))
}

type badVersion struct{}

func (badVersion) Version() string                           { return "latest" }
func (badVersion) Description() string                       { return "" }
func (badVersion) Up(ctx context.Context, tx *gorm.DB) error { return nil }

type recordingMigration struct {
	version string
	order   *[]string
}

func (m recordingMigration) Version() string     { return m.version }
func (m recordingMigration) Description() string { return "record " + m.version }
func (m recordingMigration) Up(ctx context.Context, tx *gorm.DB) error {
	*m.order = append(*m.order, m.version)
	return nil
}

func TestMigrationManager_VersionOrder(t *testing.T) {
	db := newTestDB(t)
	var order []string

	m := &MigrationManager{db: db, logger: zap.NewNop(), migrations: []Migration{
		recordingMigration{version: "0.10.0", order: &order},
		recordingMigration{version: "0.9.1", order: &order},
		recordingMigration{version: "v0.9.0", order: &order},
	}}
	applied, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, applied)
	assert.Equal(t, []string{"v0.9.0", "0.9.1", "0.10.0"}, order)

	m.migrations = append(m.migrations, badVersion{})
	_, err = m.Run(context.Background())
	assert.Error(t, err)
}
