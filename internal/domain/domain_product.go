package domain

import "time"

// Product 商品领域模型，ResourceID 指向存储中的文件
type Product struct {
	ID          int64
	CreatorID   int64
	Title       string
	Description string
	Price       int64 // 以分为单位
	ResourceID  string
	FileName    string
	FileSize    int64
	FileType    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasFile 判断商品是否已上传文件
func (p *Product) HasFile() bool {
	return p.ResourceID != ""
}

// IsOwnedBy 判断 uid 是否为商品创作者
func (p *Product) IsOwnedBy(uid int64) bool {
	return p.CreatorID == uid
}
