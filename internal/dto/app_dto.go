package dto

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status   string  `json:"status"`   // healthy / unhealthy
	Version  string  `json:"version"`  // 服务版本号
	Uptime   float64 `json:"uptime"`   // 运行时间（秒）
	Database string  `json:"database"` // connected / error
	Storage  string  `json:"storage"`  // 存储类型
	Limiter  string  `json:"limiter"`  // memory / redis
}
