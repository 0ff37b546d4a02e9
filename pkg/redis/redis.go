package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tamu-thinktank/website-sub002/config"
)

// Client Redis 客户端封装
// 用于 Token 黑名单、公开接口限流与可用性表缓存
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

const officerRevokedPrefix = "token:officer_revoked:"

// RevokeOfficer 吊销干事此刻之前签发的全部 Token，TTL 取 Access Token 有效期
func (c *Client) RevokeOfficer(ctx context.Context, officerID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return c.rdb.Set(ctx, officerRevokedPrefix+officerID, time.Now().Unix(), ttl).Err()
}

// IsOfficerRevoked 检查 Token 是否签发于该干事被吊销之前（含同一秒）
func (c *Client) IsOfficerRevoked(ctx context.Context, officerID string, issuedAt time.Time) (bool, error) {
	revokedAt, err := c.rdb.Get(ctx, officerRevokedPrefix+officerID).Int64()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !issuedAt.After(time.Unix(revokedAt, 0)), nil
}

// ── 限流 ──

// CheckRateLimit 滑动窗口限流：窗口内请求数未超过 limit 时返回 true
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	member := strconv.FormatInt(now.UnixNano(), 10) + ":" + uuid.NewString()
	minScore := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", minScore)
	pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixNano()), Member: member})
	count := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return count.Val() <= int64(limit), nil
}

// ── 可用性表缓存 ──

const availabilityPrefix = "availability:"

func availabilityKey(cycleID string) string {
	return availabilityPrefix + cycleID
}

// GetAvailability 读取周期的可用性表缓存，未命中时返回 (nil, false, nil)
func (c *Client) GetAvailability(ctx context.Context, cycleID string) ([]byte, bool, error) {
	val, err := c.rdb.Get(ctx, availabilityKey(cycleID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// SetAvailability 写入周期的可用性表缓存
func (c *Client) SetAvailability(ctx context.Context, cycleID string, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, availabilityKey(cycleID), payload, ttl).Err()
}

// InvalidateAvailability 删除周期的可用性表缓存
func (c *Client) InvalidateAvailability(ctx context.Context, cycleID string) error {
	return c.rdb.Del(ctx, availabilityKey(cycleID)).Err()
}

// Ping 健康检查
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
