package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"pdfqa/internal/model"
)

const historyKey = "qa:history"

// HistoryCache keeps the most recent question/answer exchanges in a Redis
// list so the history endpoint does not need to hit MySQL.
type HistoryCache struct {
	client     *redisv9.Client
	historyTTL time.Duration
	maxEntries int64
}

func NewHistoryCache(client *redisv9.Client, historyTTL time.Duration, maxEntries int) *HistoryCache {
	if historyTTL <= 0 {
		historyTTL = time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = 50
	}
	return &HistoryCache{
		client:     client,
		historyTTL: historyTTL,
		maxEntries: int64(maxEntries),
	}
}

// Append pushes an exchange to the head of the list and trims it to the
// configured length.
func (c *HistoryCache) Append(ctx context.Context, ex model.QAExchange) error {
	payload, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshal qa exchange failed: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, historyKey, payload)
	pipe.LTrim(ctx, historyKey, 0, c.maxEntries-1)
	pipe.Expire(ctx, historyKey, c.historyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append history failed: %w", err)
	}
	return nil
}

// Recent returns exchanges newest first, up to limit.
func (c *HistoryCache) Recent(ctx context.Context, limit int) ([]model.QAExchange, error) {
	if limit <= 0 || int64(limit) > c.maxEntries {
		limit = int(c.maxEntries)
	}
	raw, err := c.client.LRange(ctx, historyKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read history failed: %w", err)
	}

	exchanges := make([]model.QAExchange, 0, len(raw))
	for _, item := range raw {
		var ex model.QAExchange
		if err := json.Unmarshal([]byte(item), &ex); err != nil {
			return nil, fmt.Errorf("unmarshal cached exchange failed: %w", err)
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges, nil
}

func (c *HistoryCache) Clear(ctx context.Context) error {
	if err := c.client.Del(ctx, historyKey).Err(); err != nil {
		return fmt.Errorf("redis clear history failed: %w", err)
	}
	return nil
}
