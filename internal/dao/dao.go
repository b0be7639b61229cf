// Package dao 实现数据访问层
package dao

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/model"
	"github.com/haierkeys/fast-asset-delivery/pkg/fileurl"
	"github.com/haierkeys/fast-asset-delivery/pkg/util"

	"github.com/glebarez/sqlite"
	"github.com/haierkeys/gormTracing"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型 sqlite/mysql/postgres
	Type string `yaml:"type" default:"sqlite"`
	// Path sqlite 数据库文件路径
	Path     string `yaml:"path" default:"storage/database/db.sqlite3"`
	UserName string `yaml:"username"`
	Password string `yaml:"password"`
	// Host 主机地址 host:port
	Host        string `yaml:"host"`
	Name        string `yaml:"name"`
	TablePrefix string `yaml:"table-prefix"`
	AutoMigrate bool   `yaml:"auto-migrate" default:"true"`
	Charset     string `yaml:"charset" default:"utf8mb4"`
	ParseTime   bool   `yaml:"parse-time" default:"true"`
	// Replicas 只读副本，与主库类型相同：mysql/postgres 为 host:port，sqlite 为文件路径
	Replicas        []string `yaml:"replicas"`
	MaxIdleConns    int      `yaml:"max-idle-conns" default:"10"`
	MaxOpenConns    int      `yaml:"max-open-conns" default:"100"`
	ConnMaxLifetime string   `yaml:"conn-max-lifetime" default:"30m"`
	ConnMaxIdleTime string   `yaml:"conn-max-idle-time" default:"10m"`
	// Debug 打印 SQL
	Debug bool `yaml:"-"`
}

type Dao struct {
	Db     *gorm.DB
	logger *zap.Logger
}

// New 创建 Dao 实例
func New(db *gorm.DB, logger *zap.Logger) *Dao {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dao{Db: db, logger: logger}
}

// NewDBEngineWithConfig opens the configured database, registers read replicas and tracing,
// and migrates the schema when enabled
// NewDBEngineWithConfig 打开数据库连接，注册只读副本与链路追踪，按配置自动迁移
func NewDBEngineWithConfig(c DatabaseConfig) (*gorm.DB, error) {
	dialector, err := useDialector(c, "")
	if err != nil {
		return nil, err
	}

	logMode := logger.Silent
	if c.Debug {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix, // 表名前缀，`User` 的表名应该是 `t_users`
			SingularTable: true,          // 使用单数表名，此时 `User` 的表名应该是 `t_user`
		},
	})
	if err != nil {
		return nil, err
	}

	if len(c.Replicas) > 0 {
		replicas := make([]gorm.Dialector, 0, len(c.Replicas))
		for _, r := range c.Replicas {
			d, err := useDialector(c, r)
			if err != nil {
				return nil, err
			}
			replicas = append(replicas, d)
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicas,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, err
		}
	}

	// 获取通用数据库对象 sql.DB ，然后使用其提供的功能
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(util.MustParseDuration(c.ConnMaxLifetime, 30*time.Minute))
	sqlDB.SetConnMaxIdleTime(util.MustParseDuration(c.ConnMaxIdleTime, 10*time.Minute))

	_ = db.Use(&gormTracing.OpentracingPlugin{})

	if c.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	return db, nil
}

// useDialector builds the dialector; a non empty replica replaces host (or path for sqlite)
func useDialector(c DatabaseConfig, replica string) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		host := c.Host
		if replica != "" {
			host = replica
		}
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			host,
			c.Name,
			c.Charset,
			c.ParseTime,
		)), nil
	case "postgres":
		host := c.Host
		if replica != "" {
			host = replica
		}
		h, port, err := net.SplitHostPort(host)
		if err != nil {
			h, port = host, "5432"
		}
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Local",
			h, c.UserName, c.Password, c.Name, port,
		)), nil
	case "sqlite", "":
		path := c.Path
		if replica != "" {
			path = replica
		}
		if !fileurl.IsExist(path) && !strings.HasPrefix(path, "file:") {
			if err := fileurl.CreatePath(path, os.ModePerm); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(path), nil
	}
	return nil, fmt.Errorf("unsupported database type %q", c.Type)
}
