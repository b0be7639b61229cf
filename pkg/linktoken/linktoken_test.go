package linktoken

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func nonEmpty() gopter.Gen {
	return gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 })
}

func TestProperty_MintVerifyWindow(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("valid at mint time, invalid one second after expiry", prop.ForAll(
		func(resourceID, secret string, ttlSec int64, offset int64) bool {
			c, err := NewCodec(secret)
			if err != nil {
				return false
			}
			now := baseTime.Add(time.Duration(offset) * time.Millisecond)
			ttl := time.Duration(ttlSec) * time.Second
			tok := c.Mint(resourceID, ttl, now)

			if !c.Verify(resourceID, tok.Value, tok.ExpiresAt, now) {
				t.Logf("rejected at mint time: %q ttl=%d", resourceID, ttlSec)
				return false
			}
			return !c.Verify(resourceID, tok.Value, tok.ExpiresAt, now.Add(ttl+time.Second))
		},
		gen.AnyString(),
		nonEmpty(),
		gen.Int64Range(1, 7*24*3600),
		gen.Int64Range(0, 999),
	))

	properties.Property("a different secret never verifies", prop.ForAll(
		func(resourceID, secretA, secretB string, ttlSec int64) bool {
			if secretA == secretB {
				return true
			}
			a, _ := NewCodec(secretA)
			b, _ := NewCodec(secretB)
			tok := a.Mint(resourceID, time.Duration(ttlSec)*time.Second, baseTime)
			return !b.Verify(resourceID, tok.Value, tok.ExpiresAt, baseTime)
		},
		gen.AnyString(),
		nonEmpty(),
		nonEmpty(),
		gen.Int64Range(1, 3600),
	))

	properties.Property("a token for one resource fails for another", prop.ForAll(
		func(resourceA, resourceB, secret string) bool {
			if resourceA == resourceB {
				return true
			}
			c, _ := NewCodec(secret)
			tok := c.Mint(resourceA, time.Minute, baseTime)
			return !c.Verify(resourceB, tok.Value, tok.ExpiresAt, baseTime)
		},
		gen.AnyString(),
		gen.AnyString(),
		nonEmpty(),
	))

	properties.TestingRun(t)
}

func TestMint_Deterministic(t *testing.T) {
	c, err := NewCodec("server-secret")
	require.NoError(t, err)

	first := c.Mint("a1b2.zip", 60*time.Second, baseTime)
	second := c.Mint("a1b2.zip", 60*time.Second, baseTime)

	assert.Equal(t, first, second)
	assert.Equal(t, baseTime.Unix()+60, first.ExpiresAt)
	assert.Equal(t, first.Expires(), strings.TrimSpace(first.Expires()))
	assert.NotContains(t, first.Value, "=")
}

func TestVerify_EdgeCases(t *testing.T) {
	c, err := NewCodec("server-secret")
	require.NoError(t, err)
	tok := c.Mint("file.pdf", time.Minute, baseTime)

	// 1. 恰好到达过期时间仍然有效
	assert.True(t, c.Verify("file.pdf", tok.Value, tok.ExpiresAt, time.Unix(tok.ExpiresAt, 0)))

	// 2. 过期时间被篡改
	assert.False(t, c.Verify("file.pdf", tok.Value, tok.ExpiresAt+3600, baseTime))

	// 3. 令牌被截断（不允许前缀匹配）
	assert.False(t, c.Verify("file.pdf", tok.Value[:10], tok.ExpiresAt, baseTime))

	// 4. 空令牌
	assert.False(t, c.Verify("file.pdf", "", tok.ExpiresAt, baseTime))
}

func TestVerifyRaw_MalformedExpiry(t *testing.T) {
	c, err := NewCodec("server-secret")
	require.NoError(t, err)
	tok := c.Mint("file.pdf", time.Minute, baseTime)

	assert.True(t, c.VerifyRaw("file.pdf", tok.Value, tok.Expires(), baseTime))

	for _, raw := range []string{"", "abc", "12.5", "1e10", "99999999999999999999999"} {
		assert.False(t, c.VerifyRaw("file.pdf", tok.Value, raw, baseTime), "expiry %q", raw)
	}
}

func TestNewCodec_EmptySecret(t *testing.T) {
	_, err := NewCodec("  ")
	assert.ErrorIs(t, err, ErrEmptySecret)
}
