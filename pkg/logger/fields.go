package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldTraceID 追踪 ID 字段
	FieldTraceID = "traceId"

	// FieldUID 用户 ID 字段
	FieldUID = "uid"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldPath 请求路径字段
	FieldPath = "path"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldSize 文件大小字段
	FieldSize = "size"

	// FieldResource 资源 ID 字段
	FieldResource = "resource"

	// FieldProductID 商品 ID 字段
	FieldProductID = "productId"

	// FieldOutcome 下载结果字段
	FieldOutcome = "outcome"

	// FieldClientIP 客户端 IP 字段
	FieldClientIP = "clientIp"
)
