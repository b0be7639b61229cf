package service

import (
	"context"
	"sync"
	"time"

	"github.com/haierkeys/fast-asset-delivery/internal/domain"

	"go.uber.org/zap"
)

type statKey struct {
	userID    int64
	productID int64
}

// DownloadStats aggregates purchase download counters in memory until flushed
// DownloadStats 在内存中聚合购买下载统计，定时写入数据库
type DownloadStats struct {
	repo   domain.PurchaseRepository
	logger *zap.Logger

	bufferMu    sync.Mutex
	statsBuffer map[statKey]*domain.DownloadStat
}

// NewDownloadStats 创建 DownloadStats 实例
func NewDownloadStats(repo domain.PurchaseRepository, logger *zap.Logger) *DownloadStats {
	return &DownloadStats{
		repo:        repo,
		logger:      logger,
		statsBuffer: make(map[statKey]*domain.DownloadStat),
	}
}

// Record 记录一次下载
func (s *DownloadStats) Record(userID, productID int64, at time.Time) {
	s.bufferMu.Lock()
	defer s.bufferMu.Unlock()

	k := statKey{userID: userID, productID: productID}
	stat, ok := s.statsBuffer[k]
	if !ok {
		stat = &domain.DownloadStat{UserID: userID, ProductID: productID}
		s.statsBuffer[k] = stat
	}
	stat.Count++
	if at.After(stat.LastDownloadAt) {
		stat.LastDownloadAt = at
	}
	downloadStatsPending.Set(float64(len(s.statsBuffer)))
}

// Pending 缓冲中的条目数
func (s *DownloadStats) Pending() int {
	s.bufferMu.Lock()
	defer s.bufferMu.Unlock()
	return len(s.statsBuffer)
}

// Flush writes buffered counters to the database. Entries that fail are merged back
// for the next flush and the first error is returned.
// Flush 将内存中的增量写入数据库，失败的条目放回缓冲区
func (s *DownloadStats) Flush(ctx context.Context) (int, error) {
	s.bufferMu.Lock()
	if len(s.statsBuffer) == 0 {
		s.bufferMu.Unlock()
		return 0, nil
	}
	tempBuffer := s.statsBuffer
	s.statsBuffer = make(map[statKey]*domain.DownloadStat)
	s.bufferMu.Unlock()

	var firstErr error
	flushed := 0
	for k, stat := range tempBuffer {
		if err := s.repo.UpdateDownloadStats(ctx, stat.UserID, stat.ProductID, stat.Count, stat.LastDownloadAt); err != nil {
			s.logger.Error("failed to flush download stats",
				zap.Int64("userId", stat.UserID),
				zap.Int64("productId", stat.ProductID),
				zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			s.restore(k, stat)
			continue
		}
		flushed++
	}

	downloadStatsPending.Set(float64(s.Pending()))
	return flushed, firstErr
}

func (s *DownloadStats) restore(k statKey, stat *domain.DownloadStat) {
	s.bufferMu.Lock()
	defer s.bufferMu.Unlock()

	cur, ok := s.statsBuffer[k]
	if !ok {
		s.statsBuffer[k] = stat
		return
	}
	cur.Count += stat.Count
	if stat.LastDownloadAt.After(cur.LastDownloadAt) {
		cur.LastDownloadAt = stat.LastDownloadAt
	}
}
