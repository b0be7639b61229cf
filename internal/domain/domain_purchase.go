package domain

import "time"

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Purchase 购买记录领域模型
type Purchase struct {
	ID              int64
	UserID          int64
	ProductID       int64
	Amount          int64
	PaymentStatus   PaymentStatus
	PaymentIntentID string
	DownloadCount   int64
	LastDownloadAt  time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsCompleted only an exactly completed payment entitles a download
func (p *Purchase) IsCompleted() bool {
	return p.PaymentStatus == PaymentCompleted
}

// DownloadStat 下载统计增量
type DownloadStat struct {
	UserID         int64
	ProductID      int64
	Count          int64
	LastDownloadAt time.Time
}
