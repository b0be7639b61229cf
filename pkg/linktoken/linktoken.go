// Package linktoken mints and verifies the time-bound tokens embedded in download links
// Package linktoken 生成并校验下载链接中携带的限时令牌
package linktoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrEmptySecret is returned when a codec is built without a signing secret
// ErrEmptySecret 签名密钥为空
var ErrEmptySecret = errors.New("linktoken: signing secret is empty")

// Token is a minted link token together with the expiry it was computed against
// Token 生成的链接令牌及其对应的过期时间
type Token struct {
	Value     string `json:"token"`
	ExpiresAt int64  `json:"expires"` // unix seconds // Unix 秒
}

// Expires returns the expiry as the decimal string used in query parameters
// Expires 返回查询参数中使用的十进制过期时间
func (t Token) Expires() string {
	return strconv.FormatInt(t.ExpiresAt, 10)
}

// Codec derives tokens as HMAC-SHA256(secret, resourceID + ":" + expiresAt).
// It holds no mutable state and is safe for concurrent use.
// Codec 使用 HMAC-SHA256 派生令牌，无可变状态，可并发使用
type Codec struct {
	secret []byte
}

// NewCodec creates a codec keyed by secret
// NewCodec 使用密钥创建 Codec
func NewCodec(secret string) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Mint computes the token for resourceID expiring ttl after now
// Mint 为 resourceID 生成在 now+ttl 过期的令牌
func (c *Codec) Mint(resourceID string, ttl time.Duration, now time.Time) Token {
	expiresAt := now.Add(ttl).Unix()
	return Token{
		Value:     c.sign(resourceID, expiresAt),
		ExpiresAt: expiresAt,
	}
}

// Verify reports whether token was minted by this codec for resourceID and expiresAt,
// and now has not passed expiresAt. It fails closed.
// Verify 校验令牌，过期或不匹配均返回 false
func (c *Codec) Verify(resourceID, token string, expiresAt int64, now time.Time) bool {
	if token == "" {
		return false
	}
	if now.Unix() > expiresAt {
		return false
	}
	expected := c.sign(resourceID, expiresAt)
	return hmac.Equal([]byte(expected), []byte(token))
}

// VerifyRaw is Verify with the expiry taken from a query parameter.
// A malformed expiry is an invalid token.
// VerifyRaw 从字符串解析过期时间后校验，格式错误视为无效
func (c *Codec) VerifyRaw(resourceID, token, expiresRaw string, now time.Time) bool {
	expiresAt, err := strconv.ParseInt(strings.TrimSpace(expiresRaw), 10, 64)
	if err != nil {
		return false
	}
	return c.Verify(resourceID, token, expiresAt, now)
}

func (c *Codec) sign(resourceID string, expiresAt int64) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(resourceID))
	mac.Write([]byte{':'})
	mac.Write([]byte(strconv.FormatInt(expiresAt, 10)))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
