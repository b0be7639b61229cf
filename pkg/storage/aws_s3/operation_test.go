package aws_s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/haierkeys/fast-asset-delivery/pkg/storage/blob"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPresignOnlyClient(t *testing.T, prefix string) *S3 {
	t.Helper()
	client, err := NewClient(&Config{
		Endpoint:        "http://127.0.0.1:9",
		Region:          "us-east-1",
		BucketName:      "assets",
		AccessKeyID:     "AKIDEXAMPLE",
		AccessKeySecret: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		CustomPath:      prefix,
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	return client
}

func TestS3_RetrieveURLIsPresigned(t *testing.T) {
	client := newPresignOnlyClient(t, "")

	raw, err := client.RetrieveURL(context.Background(), "0b7e5c1a-1c2d-4e3f-9a8b-7c6d5e4f3a2b.zip", 10*time.Second)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9", u.Host)
	assert.Equal(t, "/assets/0b7e5c1a-1c2d-4e3f-9a8b-7c6d5e4f3a2b.zip", u.Path)
	assert.Equal(t, "10", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestS3_RetrieveURLRejectsTraversal(t *testing.T) {
	client := newPresignOnlyClient(t, "")

	for _, id := range []string{"", "../other-bucket/secret"} {
		_, err := client.RetrieveURL(context.Background(), id, time.Minute)
		assert.ErrorIs(t, err, blob.ErrNotFound, id)
	}
}

func TestS3_ObjectKeyPrefix(t *testing.T) {
	assert.Equal(t, "a.zip", newPresignOnlyClient(t, "").objectKey("a.zip"))
	assert.Equal(t, "products/a.zip", newPresignOnlyClient(t, "/products/").objectKey("a.zip"))
}

func TestS3_StoreFailureIsWrapped(t *testing.T) {
	client := newPresignOnlyClient(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := client.Store(ctx, strings.NewReader("payload"), "a.zip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3")
}
