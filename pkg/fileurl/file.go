package fileurl

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode"
)

// IsExist determines if the given path exists
// IsExist 判断所给路径是否存在
func IsExist(dst string) bool {
	_, err := os.Stat(dst)
	if err != nil {
		return os.IsExist(err)
	}
	return true
}

// CreatePath creates the parent directory of dst
// CreatePath 创建 dst 的上级目录
func CreatePath(dst string, perm os.FileMode) error {
	return os.MkdirAll(filepath.Dir(dst), perm)
}

// GetExePath gets path of current execution file
// GetExePath 获取当前执行文件的路径
func GetExePath() string {
	file, _ := exec.LookPath(os.Args[0])
	path, _ := filepath.Abs(file)
	return filepath.Dir(path)
}

// GetFileExt gets the lower case file extension
// GetFileExt 获取小写文件后缀
func GetFileExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// IsSafeUploadName reports whether an uploaded file name can be kept as display name.
// Names with path parts, control characters or a denied extension are rejected.
// IsSafeUploadName 判断上传文件名是否安全：不含路径、控制字符，且扩展名不在黑名单中
func IsSafeUploadName(name string, deniedExts []string) bool {
	if name == "" || len(name) > 255 || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}

	ext := GetFileExt(name)
	for _, denied := range deniedExts {
		if ext == strings.ToLower(denied) {
			return false
		}
	}
	return true
}
