package code

import "net/http"

var (
	Success = NewSuss(1, lang{en: "Success", zh_cn: "成功"})

	Failed                  = NewError(400, http.StatusBadRequest, lang{en: "Request failed", zh_cn: "请求失败"})
	ErrorInvalidParams      = NewError(401, http.StatusBadRequest, lang{en: "Invalid parameters", zh_cn: "参数错误"})
	ErrorNotFoundAPI        = NewError(402, http.StatusNotFound, lang{en: "API not found", zh_cn: "接口不存在"})
	ErrorTooManyRequests    = NewError(403, http.StatusTooManyRequests, lang{en: "Too many requests", zh_cn: "请求过于频繁"})
	ErrorServerInternal     = NewError(500, http.StatusInternalServerError, lang{en: "Internal server error", zh_cn: "服务器内部错误"})
	ErrorInvalidStorageType = NewError(501, http.StatusInternalServerError, lang{en: "Invalid storage type", zh_cn: "无效的存储类型"})
	ErrorDBQuery            = NewError(502, http.StatusInternalServerError, lang{en: "Database query failed", zh_cn: "数据库查询失败"})

	// 认证
	ErrorNotUserAuthToken     = NewError(505, http.StatusUnauthorized, lang{en: "Missing authorization token", zh_cn: "缺少授权令牌"})
	ErrorInvalidUserAuthToken = NewError(506, http.StatusUnauthorized, lang{en: "Invalid or expired authorization token", zh_cn: "授权令牌无效或已过期"})
	ErrorUserNotFound         = NewError(507, http.StatusNotFound, lang{en: "User not found", zh_cn: "用户不存在"})

	// 下载
	ErrorDownloadUnauthenticated = NewError(600, http.StatusUnauthorized, lang{en: "Authentication required", zh_cn: "需要登录"})
	ErrorDownloadInvalidToken    = NewError(601, http.StatusForbidden, lang{en: "Download link is invalid or has expired", zh_cn: "下载链接无效或已过期"})
	ErrorDownloadForbidden       = NewError(602, http.StatusForbidden, lang{en: "You do not have access to this resource", zh_cn: "无权访问该资源"})
	ErrorDownloadNotFound        = NewError(603, http.StatusNotFound, lang{en: "Resource not found", zh_cn: "资源不存在"})
	ErrorDownloadRateLimited     = NewError(604, http.StatusTooManyRequests, lang{en: "Download rate limit exceeded", zh_cn: "下载过于频繁，请稍后再试"})
	ErrorStorageUnavailable      = NewError(605, http.StatusServiceUnavailable, lang{en: "Storage is temporarily unavailable", zh_cn: "存储服务暂时不可用"})

	// 商品
	ErrorProductNotFound   = NewError(620, http.StatusNotFound, lang{en: "Product not found", zh_cn: "商品不存在"})
	ErrorProductNotOwner   = NewError(621, http.StatusForbidden, lang{en: "Only the creator can manage this product", zh_cn: "只有创作者可以管理该商品"})
	ErrorProductNoFile     = NewError(622, http.StatusNotFound, lang{en: "Product has no file attached", zh_cn: "商品尚未上传文件"})
	ErrorFileNameInvalid   = NewError(623, http.StatusBadRequest, lang{en: "File name is not allowed", zh_cn: "文件名不被允许"})
	ErrorFileTooLarge      = NewError(624, http.StatusRequestEntityTooLarge, lang{en: "File is too large", zh_cn: "文件过大"})
	ErrorFileUploadFailed  = NewError(625, http.StatusInternalServerError, lang{en: "File upload failed", zh_cn: "文件上传失败"})
	ErrorLinkTTLOutOfRange = NewError(626, http.StatusBadRequest, lang{en: "Requested link lifetime is out of range", zh_cn: "链接有效期超出范围"})
)
