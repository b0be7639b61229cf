package domain

import "errors"

// 下载流程的终止状态
var (
	ErrUnauthenticated       = errors.New("unauthenticated")
	ErrForbidden             = errors.New("forbidden")
	ErrTokenExpiredOrInvalid = errors.New("token expired or invalid")
	ErrResourceNotFound      = errors.New("resource not found")
	ErrRateLimited           = errors.New("rate limited")
	ErrStorageUnavailable    = errors.New("storage unavailable")
)

// 商品管理
var (
	ErrProductNotFound = errors.New("product not found")
	ErrNotProductOwner = errors.New("not the product owner")
	ErrUnsafeFileName  = errors.New("unsafe file name")
	ErrFileTooLarge    = errors.New("file too large")
)
