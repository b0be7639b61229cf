package blob

import (
	"net/url"
	"strings"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/linktoken"
)

// DownloadPath route prefix of the gated download endpoint
// DownloadPath 受控下载接口的路由前缀
const DownloadPath = "/download/"

// LinkSigner builds retrieval URLs for backends that are served by this process
// LinkSigner 为由本服务直接提供下载的后端生成链接
type LinkSigner interface {
	SignLink(resourceID string, ttl time.Duration) (string, linktoken.Token, error)
}

// TokenLinks signs links to the download endpoint with a link token
// TokenLinks 使用链接令牌签名下载地址
type TokenLinks struct {
	codec   *linktoken.Codec
	baseURL string
	now     func() time.Time
}

// NewTokenLinks creates a signer for links rooted at baseURL
// NewTokenLinks 创建以 baseURL 为根的链接签名器
func NewTokenLinks(codec *linktoken.Codec, baseURL string) *TokenLinks {
	return &TokenLinks{
		codec:   codec,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// WithClock replaces the time source
func (l *TokenLinks) WithClock(now func() time.Time) *TokenLinks {
	l.now = now
	return l
}

// SignLink returns {base}/download/{id}?token=..&expires=.. and the token embedded in it
// SignLink 返回下载地址及其中携带的令牌
func (l *TokenLinks) SignLink(resourceID string, ttl time.Duration) (string, linktoken.Token, error) {
	tok := l.codec.Mint(resourceID, ttl, l.now())
	q := url.Values{}
	q.Set("token", tok.Value)
	q.Set("expires", tok.Expires())
	return l.baseURL + DownloadPath + url.PathEscape(resourceID) + "?" + q.Encode(), tok, nil
}
