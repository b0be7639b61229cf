// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

import "time"

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	Delivery DeliveryServiceConfig // Delivery related config // 下载相关配置
	Upload   UploadServiceConfig   // Upload related config // 上传相关配置
}

// DeliveryServiceConfig delivery service configuration
// DeliveryServiceConfig 下载服务配置
type DeliveryServiceConfig struct {
	DefaultTTL time.Duration // Default link lifetime // 下载链接默认有效期
	MaxTTL     time.Duration // Max link lifetime // 下载链接最长有效期
	AccessTTL  time.Duration // Lifetime of URLs minted for a redirect // 重定向时签发地址的有效期
	DBTimeout  time.Duration // Bound on each repository call // 单次数据库调用超时
}

// UploadServiceConfig upload service configuration
// UploadServiceConfig 上传服务配置
type UploadServiceConfig struct {
	MaxSize    int64    // Max upload size in bytes // 上传大小上限（字节）
	DeniedExts []string // Denied extensions // 禁止上传的扩展名
}

func (c DeliveryServiceConfig) withDefaults() DeliveryServiceConfig {
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = 60 * time.Second
	}
	if c.MaxTTL <= 0 {
		c.MaxTTL = time.Hour
	}
	if c.AccessTTL <= 0 {
		c.AccessTTL = 10 * time.Second
	}
	if c.DBTimeout <= 0 {
		c.DBTimeout = 5 * time.Second
	}
	return c
}
