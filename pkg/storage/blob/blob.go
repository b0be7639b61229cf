// Package blob holds the types shared by every storage backend
// Package blob 存放各存储后端共享的类型
package blob

import (
	"errors"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound the object does not exist in the backend
	// ErrNotFound 对象不存在
	ErrNotFound = errors.New("storage: object not found")
	// ErrUnavailable any I/O or network failure of the backend
	// ErrUnavailable 存储后端 I/O 或网络故障
	ErrUnavailable = errors.New("storage: unavailable")
)

// Object is an opened stored file
// Object 已打开的存储对象
type Object struct {
	Body        io.ReadCloser
	Name        string
	Size        int64
	ModTime     time.Time
	ContentType string
}

var (
	extPattern = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)
	idPattern  = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}(\.[a-z0-9]{1,10})?$`)
)

// NewResourceID generates a server side name: a random UUID plus the sanitized extension of suggestedName.
// Nothing else from suggestedName is kept.
// NewResourceID 生成服务端文件名：随机 UUID 加上清洗后的扩展名
func NewResourceID(suggestedName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(suggestedName)))
	if !extPattern.MatchString(ext) {
		ext = ""
	}
	return uuid.NewString() + ext
}

// ValidResourceID reports whether id has the shape produced by NewResourceID
// ValidResourceID 判断 id 是否为 NewResourceID 生成的格式
func ValidResourceID(id string) bool {
	return idPattern.MatchString(id)
}
