// Package upgrade applies versioned data migrations on top of the table auto migration
// Package upgrade 在自动建表之上执行带版本号的数据升级
package upgrade

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/model"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"gorm.io/gorm"
)

// SchemaVersion 数据库版本记录表
type SchemaVersion struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Version     string    `gorm:"not null;uniqueIndex;type:varchar(64)" json:"version"`
	Description string    `gorm:"type:text" json:"description"`
	AppliedAt   time.Time `gorm:"not null" json:"applied_at"`
}

// TableName 指定表名
func (SchemaVersion) TableName() string {
	return "schema_version"
}

// Migration 定义升级接口
type Migration interface {
	Version() string
	Description() string
	Up(ctx context.Context, tx *gorm.DB) error
}

// MigrationManager 升级管理器
type MigrationManager struct {
	db         *gorm.DB
	logger     *zap.Logger
	migrations []Migration
}

// NewMigrationManager 创建升级管理器
func NewMigrationManager(db *gorm.DB, logger *zap.Logger) *MigrationManager {
	return &MigrationManager{
		db:     db,
		logger: logger,
		migrations: []Migration{
			// 在这里注册所有的升级脚本
			&ProductFileTypeBackfill{},
			&DropProductDownloadURL{},
		},
	}
}

// Run creates the tables, then applies every migration missing from schema_version in version order.
// Each migration and its version record commit in one transaction.
// Run 执行升级
func (m *MigrationManager) Run(ctx context.Context) (int, error) {
	if err := model.AutoMigrate(m.db.WithContext(ctx)); err != nil {
		return 0, fmt.Errorf("auto migrate: %w", err)
	}

	// 确保 schema_version 表存在
	if err := m.db.WithContext(ctx).AutoMigrate(&SchemaVersion{}); err != nil {
		return 0, fmt.Errorf("failed to create schema_version table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get applied versions: %w", err)
	}

	pending, err := m.pending(applied)
	if err != nil {
		return 0, err
	}

	for _, migration := range pending {
		m.logger.Info("applying migration",
			zap.String("scriptVersion", migration.Version()),
			zap.String("desc", migration.Description()))

		if err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(ctx, tx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			return tx.Create(&SchemaVersion{
				Version:     migration.Version(),
				Description: migration.Description(),
				AppliedAt:   time.Now(),
			}).Error
		}); err != nil {
			return 0, fmt.Errorf("failed to apply migration %s: %w", migration.Version(), err)
		}

		m.logger.Info("migration applied successfully", zap.String("scriptVersion", migration.Version()))
	}

	if len(pending) == 0 {
		m.logger.Info("database is already up to date")
	} else {
		m.logger.Info("upgrade completed", zap.Int("migrations_applied", len(pending)))
	}
	return len(pending), nil
}

// pending returns the unapplied migrations sorted by semantic version
func (m *MigrationManager) pending(applied map[string]bool) ([]Migration, error) {
	out := make([]Migration, 0, len(m.migrations))
	for _, migration := range m.migrations {
		if !semver.IsValid(canonical(migration.Version())) {
			return nil, fmt.Errorf("migration %q: invalid version", migration.Version())
		}
		if applied[migration.Version()] {
			continue
		}
		out = append(out, migration)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return semver.Compare(canonical(out[i].Version()), canonical(out[j].Version())) < 0
	})
	return out, nil
}

// appliedVersions 获取已应用的数据库版本
func (m *MigrationManager) appliedVersions(ctx context.Context) (map[string]bool, error) {
	var versions []SchemaVersion
	if err := m.db.WithContext(ctx).Find(&versions).Error; err != nil {
		return nil, err
	}

	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v.Version] = true
	}
	return applied, nil
}

// canonical semver 库要求 "v" 前缀
func canonical(version string) string {
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// Execute 执行升级(便捷方法)
func Execute(ctx context.Context, db *gorm.DB, logger *zap.Logger) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return NewMigrationManager(db, logger).Run(ctx)
}
