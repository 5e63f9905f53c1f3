package database

import (
	"context"
	"fmt"
	"time"

	"shop-backend/pkg/logger"
)

// PoolStats là snapshot các số liệu pool cần để cảnh báo
type PoolStats struct {
	AcquireCount         int64
	AcquireDuration      time.Duration
	AcquiredConns        int32
	CanceledAcquireCount int64
	IdleConns            int32
	MaxConns             int32
	TotalConns           int32
}

func (db *PostgresDB) Stats() (*PoolStats, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	raw := db.Pool.Stat()
	return &PoolStats{
		AcquireCount:         raw.AcquireCount(),
		AcquireDuration:      raw.AcquireDuration(),
		AcquiredConns:        raw.AcquiredConns(),
		CanceledAcquireCount: raw.CanceledAcquireCount(),
		IdleConns:            raw.IdleConns(),
		MaxConns:             raw.MaxConns(),
		TotalConns:           raw.TotalConns(),
	}, nil
}

// AvgAcquire: 0 khi chưa acquire lần nào
func (s PoolStats) AvgAcquire() time.Duration {
	if s.AcquireCount == 0 {
		return 0
	}
	return s.AcquireDuration / time.Duration(s.AcquireCount)
}

// Warnings trả về các ngưỡng bị vượt. Settlement giữ connection suốt tx
// nên pool cạn sẽ thấy ở đây trước khi request bắt đầu timeout.
func (s PoolStats) Warnings() []string {
	var warnings []string

	if s.MaxConns > 0 {
		utilization := float64(s.AcquiredConns) / float64(s.MaxConns) * 100
		if utilization > 80 {
			warnings = append(warnings, fmt.Sprintf("high pool utilization: %.1f%% (%d/%d)",
				utilization, s.AcquiredConns, s.MaxConns))
		}
	}

	if avg := s.AvgAcquire(); avg > 100*time.Millisecond {
		warnings = append(warnings, fmt.Sprintf("high acquire latency: %v", avg))
	}

	if s.AcquireCount > 0 && s.CanceledAcquireCount > 0 {
		cancelRate := float64(s.CanceledAcquireCount) / float64(s.AcquireCount) * 100
		if cancelRate > 5 {
			warnings = append(warnings, fmt.Sprintf("high cancel rate: %.1f%%", cancelRate))
		}
	}

	return warnings
}

// MonitorPoolHealth chạy trong goroutine riêng tới khi ctx bị huỷ
func (db *PostgresDB) MonitorPoolHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := db.Stats()
			if err != nil {
				logger.Error("[MONITOR] Failed to get pool stats", err)
				continue
			}
			for _, w := range stats.Warnings() {
				logger.Warn("[MONITOR] "+w, map[string]interface{}{
					"total": stats.TotalConns,
					"idle":  stats.IdleConns,
				})
			}

		case <-ctx.Done():
			return
		}
	}
}
