package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/DarthQach/news-cast/internal/config"
	"github.com/DarthQach/news-cast/internal/utils"
)

// RedisTracker stores one hash per feed source under prefix + "feed:" + sha256(source).
type RedisTracker struct {
	client *redis.Client
	prefix string
}

func NewRedisTracker(cfg *config.Config) (*RedisTracker, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisTrackerWithClient(client, cfg.RedisPrefix), nil
}

// NewRedisTrackerWithClient wraps an already connected client.
func NewRedisTrackerWithClient(client *redis.Client, prefix string) *RedisTracker {
	return &RedisTracker{client: client, prefix: prefix}
}

func (r *RedisTracker) Close() error {
	return r.client.Close()
}

func (r *RedisTracker) key(source string) string {
	return r.prefix + "feed:" + utils.Hash(source)
}

func (r *RedisTracker) Record(ctx context.Context, result FetchResult) error {
	key := r.key(result.Source)

	fields := map[string]interface{}{
		"source":       result.Source,
		"last_fetched": result.At.UTC().Format(time.RFC3339Nano),
		"entries":      result.Entries,
	}
	if result.FeedTitle != "" {
		fields["feed_title"] = result.FeedTitle
	}

	counter := "successes"
	if result.Err != nil {
		counter = "failures"
		fields["last_status"] = StatusError
		fields["last_error"] = result.Err.Error()
	} else {
		fields["last_status"] = StatusOK
		fields["last_error"] = ""
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		pipe.HIncrBy(ctx, key, counter, 1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis record error: %w", err)
	}
	return nil
}

func (r *RedisTracker) keys(ctx context.Context) ([]string, error) {
	iter := r.client.Scan(ctx, 0, r.prefix+"feed:*", 0).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("error scanning keys: %w", err)
	}
	return keys, nil
}

func (r *RedisTracker) List(ctx context.Context) ([]FeedStatus, error) {
	keys, err := r.keys(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]FeedStatus, 0, len(keys))
	for _, key := range keys {
		values, err := r.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("redis hgetall error: %w", err)
		}
		if len(values) == 0 {
			continue
		}
		statuses = append(statuses, statusFromHash(values))
	}

	sortStatuses(statuses)
	return statuses, nil
}

func statusFromHash(values map[string]string) FeedStatus {
	status := FeedStatus{
		Source:     values["source"],
		FeedTitle:  values["feed_title"],
		LastStatus: values["last_status"],
		LastError:  values["last_error"],
	}
	status.LastFetched, _ = time.Parse(time.RFC3339Nano, values["last_fetched"])
	status.Entries, _ = strconv.Atoi(values["entries"])
	status.Successes, _ = strconv.ParseInt(values["successes"], 10, 64)
	status.Failures, _ = strconv.ParseInt(values["failures"], 10, 64)
	return status
}

func (r *RedisTracker) Reset(ctx context.Context) error {
	keys, err := r.keys(ctx)
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("error deleting keys: %w", err)
		}
	}

	return nil
}
