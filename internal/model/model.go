package model

import (
	"time"

	"gorm.io/gorm"
)

// User mapped from table <user>
type User struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	Username  string    `gorm:"column:username;size:64;not null;uniqueIndex:idx_user_username" json:"username" form:"username"`
	Email     string    `gorm:"column:email;size:255;not null;default:''" json:"email" form:"email"`
	IsCreator bool      `gorm:"column:is_creator;not null;default:false" json:"isCreator" form:"isCreator"`
	IsActive  bool      `gorm:"column:is_active;not null" json:"isActive" form:"isActive"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt" form:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt" form:"updatedAt"`
}

// Product mapped from table <product>
type Product struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	CreatorID   int64     `gorm:"column:creator_id;not null;index:idx_product_creator" json:"creatorId" form:"creatorId"`
	Title       string    `gorm:"column:title;size:255;not null" json:"title" form:"title"`
	Description string    `gorm:"column:description;type:text" json:"description" form:"description"`
	Price       int64     `gorm:"column:price;not null;default:0" json:"price" form:"price"`
	ResourceID  string    `gorm:"column:resource_id;size:512;not null;default:'';index:idx_product_resource" json:"resourceId" form:"resourceId"`
	FileName    string    `gorm:"column:file_name;size:255;not null;default:''" json:"fileName" form:"fileName"`
	FileSize    int64     `gorm:"column:file_size;not null;default:0" json:"fileSize" form:"fileSize"`
	FileType    string    `gorm:"column:file_type;size:128;not null;default:''" json:"fileType" form:"fileType"`
	IsActive    bool      `gorm:"column:is_active;not null" json:"isActive" form:"isActive"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"createdAt" form:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updatedAt" form:"updatedAt"`
}

// Purchase mapped from table <purchase>
type Purchase struct {
	ID              int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id" form:"id"`
	UserID          int64      `gorm:"column:user_id;not null;index:idx_purchase_user_product,priority:1" json:"userId" form:"userId"`
	ProductID       int64      `gorm:"column:product_id;not null;index:idx_purchase_user_product,priority:2" json:"productId" form:"productId"`
	Amount          int64      `gorm:"column:amount;not null;default:0" json:"amount" form:"amount"`
	PaymentStatus   string     `gorm:"column:payment_status;size:32;not null;default:'pending'" json:"paymentStatus" form:"paymentStatus"`
	PaymentIntentID string     `gorm:"column:payment_intent_id;size:255;not null;default:''" json:"paymentIntentId" form:"paymentIntentId"`
	DownloadCount   int64      `gorm:"column:download_count;not null;default:0" json:"downloadCount" form:"downloadCount"`
	LastDownloadAt  *time.Time `gorm:"column:last_download_at" json:"lastDownloadAt" form:"lastDownloadAt"`
	CreatedAt       time.Time  `gorm:"column:created_at" json:"createdAt" form:"createdAt"`
	UpdatedAt       time.Time  `gorm:"column:updated_at" json:"updatedAt" form:"updatedAt"`
}

// AutoMigrate creates or updates the tables of all models
// AutoMigrate 创建或更新所有模型对应的表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Product{}, &Purchase{})
}
