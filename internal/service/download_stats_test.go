package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDownloadStats_FlushAggregates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.stats.Record(f.buyer.ID, f.product.ID, testNow)
	f.stats.Record(f.buyer.ID, f.product.ID, testNow.Add(time.Minute))
	f.stats.Record(f.buyer.ID, f.product.ID, testNow.Add(-time.Minute))
	assert.Equal(t, 1, f.stats.Pending())

	n, err := f.stats.Flush(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, f.stats.Pending())

	p, err := f.purchases.GetCompleted(ctx, f.buyer.ID, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.DownloadCount)
	assert.Equal(t, testNow.Add(time.Minute).Unix(), p.LastDownloadAt.Unix())

	n, err = f.stats.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDownloadStats_FailedFlushKeepsCounts(t *testing.T) {
	stats := NewDownloadStats(failingPurchases{}, zap.NewNop())
	stats.Record(1, 2, testNow)
	stats.Record(1, 2, testNow)

	_, err := stats.Flush(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, stats.Pending())
	assert.Equal(t, int64(2), stats.statsBuffer[statKey{userID: 1, productID: 2}].Count)
}
