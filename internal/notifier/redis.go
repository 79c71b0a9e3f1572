package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"SignalScanner/internal/model"
)

// ChannelPrefix is prepended to the scan type to form the pub/sub channel.
const ChannelPrefix = "signals:scan:"

// RedisPublisher publishes completed scan snapshots as JSON on a per-type channel.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher connects to Redis and verifies the connection.
func NewRedisPublisher(ctx context.Context, addr, password string, db int) (*RedisPublisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	logrus.Infof("redis publisher connected: %s", addr)
	return &RedisPublisher{rdb: rdb}, nil
}

// Channel returns the pub/sub channel used for a scan type.
func Channel(t model.ScanType) string {
	return ChannelPrefix + string(t)
}

func (p *RedisPublisher) NotifyScan(ctx context.Context, snap *model.LatestSnapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := p.rdb.Publish(ctx, Channel(snap.ScanType), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", Channel(snap.ScanType), err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.rdb.Close()
}
