package code

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// lang holds the English and Chinese text of a response message
// lang 响应消息的中英文文本
type lang struct {
	en    string
	zh_cn string
}

const FALLBACK_LNG = "en"

// 未设置时为空，按英文处理
var lng atomic.Value

// GetMessage returns the text for the global language, falling back to English
// GetMessage 返回当前语言的文本，缺失时回退到英文
func (l lang) GetMessage() string {
	if GetGlobalDefaultLang() == "zh_cn" && l.zh_cn != "" {
		return l.zh_cn
	}
	return l.en
}

func GetSupportedLanguages() []string {
	return []string{"en", "zh_cn"}
}

// normalizeLang maps config spellings such as "zh", "zh-CN" or "en_US" to a supported language
func normalizeLang(language string) (string, bool) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(language)), "-", "_") {
	case "", "en", "en_us", "en_gb":
		return "en", true
	case "zh", "zh_cn", "zh_hans":
		return "zh_cn", true
	}
	return FALLBACK_LNG, false
}

// SetGlobalDefaultLang sets the language of response messages.
// Unknown languages fall back to English and return an error.
// SetGlobalDefaultLang 设置响应消息语言，不支持的语言回退到英文并返回错误
func SetGlobalDefaultLang(language string) error {
	l, ok := normalizeLang(language)
	lng.Store(l)
	if !ok {
		return fmt.Errorf("unsupported language %q, using %s", language, FALLBACK_LNG)
	}
	return nil
}

func GetGlobalDefaultLang() string {
	if l, ok := lng.Load().(string); ok {
		return l
	}
	return FALLBACK_LNG
}
