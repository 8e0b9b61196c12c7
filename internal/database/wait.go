package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// initialPingBackoff は接続待ちの初回遅延。
	initialPingBackoff = 500 * time.Millisecond
	// maxPingBackoff は接続待ちの最大遅延。
	maxPingBackoff = 8 * time.Second
)

// Pinger は接続確認ができるDBハンドル。*sql.DBが実装する。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingBackoff は連続失敗回数に基づいて次のPingまでの遅延を計算する。
// 初回500ms、2倍ずつ増加、最大8秒。
func PingBackoff(failures int) time.Duration {
	delay := initialPingBackoff
	for i := 1; i < failures; i++ {
		delay *= 2
		if delay > maxPingBackoff {
			return maxPingBackoff
		}
	}
	return delay
}

// WaitForConnection はPingが成功するまで最大maxAttempts回試行する。
// コンテナ起動直後などDBがまだ接続を受け付けない場合に使う。
func WaitForConnection(ctx context.Context, db Pinger, maxAttempts int) error {
	return waitForConnection(ctx, db, maxAttempts, PingBackoff)
}

func waitForConnection(ctx context.Context, db Pinger, maxAttempts int, backoff func(failures int) time.Duration) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}

		delay := backoff(attempt)
		slog.Warn("database not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("retry_in", delay),
			slog.String("error", err.Error()),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for database: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("database unreachable after %d attempts: %w", maxAttempts, err)
}
