package dto

import "time"

// DownloadRequest 令牌下载请求
// 缺失或格式错误的令牌交给服务层按无效令牌处理，保证先经过限流
type DownloadRequest struct {
	Token   string `form:"token" binding:"max=128"`             // 链接令牌
	Expires string `form:"expires" binding:"omitempty,numeric"` // 过期时间 (unix 秒)
}

// AccessRequest 直接访问请求
type AccessRequest struct {
	Resource string `form:"resource" binding:"max=512"` // 资源 ID
}

// DownloadLinkRequest 下载链接签发请求
type DownloadLinkRequest struct {
	TTL string `form:"ttl" binding:"omitempty,max=16" example:"60s"` // 链接有效期，默认 60s
}

// DownloadLinkResponse 下载链接签发响应
type DownloadLinkResponse struct {
	URL       string    `json:"url"`       // 下载地址
	ExpiresAt time.Time `json:"expiresAt"` // 过期时间
	Reason    string    `json:"reason"`    // 授权原因: owner / purchased
}
