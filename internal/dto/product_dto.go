package dto

import "time"

// ProductDTO 商品信息
type ProductDTO struct {
	ID          int64     `json:"id"`
	CreatorID   int64     `json:"creatorId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	FileType    string    `json:"fileType"`
	HasFile     bool      `json:"hasFile"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
