package domain

import "time"

// User 用户领域模型
type User struct {
	ID        int64
	Username  string
	Email     string
	IsCreator bool
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
