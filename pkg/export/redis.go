package export

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-coursesim/pkg/models"
	"github.com/ekaya-inc/ekaya-coursesim/pkg/retry"
)

// RedisWriter indexes a dataset in Redis for key lookups:
//
//	{prefix}:{set}:{id}    hash of one row (unique-key sets)
//	{prefix}:{set}:{id}    list of JSON rows (sets keyed by student)
//	{prefix}:{set}:ids     set of every key present
//	{prefix}:run           hash with run id, seed and row counts
type RedisWriter struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisWriter creates a writer that stores keys under prefix.
func NewRedisWriter(client *redis.Client, prefix string, logger *zap.Logger) *RedisWriter {
	return &RedisWriter{
		client: client,
		prefix: prefix,
		logger: logger.Named("redis-sink"),
	}
}

var _ Writer = (*RedisWriter)(nil)

func (w *RedisWriter) Name() string { return "redis" }

// Write is idempotent, so transient store failures retry the whole write.
func (w *RedisWriter) Write(ctx context.Context, ds *models.Dataset) error {
	return retry.DoIfRetryable(ctx, retry.DefaultConfig(), func() error {
		return w.write(ctx, ds)
	})
}

func (w *RedisWriter) write(ctx context.Context, ds *models.Dataset) error {
	runFields := map[string]any{
		"run_id": ds.RunID.String(),
		"seed":   strconv.FormatUint(ds.Seed, 10),
	}

	for _, rs := range ds.RecordSets() {
		if err := w.clear(ctx, rs.Name); err != nil {
			return fmt.Errorf("clear %s: %w", rs.Name, err)
		}
		if err := w.writeSet(ctx, &rs); err != nil {
			return fmt.Errorf("write %s: %w", rs.Name, err)
		}
		runFields[rs.Name] = rs.Len()
	}

	if err := w.client.HSet(ctx, w.key("run"), runFields).Err(); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}

func (w *RedisWriter) key(parts ...string) string {
	k := w.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

// clear removes every key a previous write left for the record set.
func (w *RedisWriter) clear(ctx context.Context, set string) error {
	idsKey := w.key(set, "ids")
	ids, err := w.client.SMembers(ctx, idsKey).Result()
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, w.key(set, id))
	}
	keys = append(keys, idsKey)
	return w.client.Del(ctx, keys...).Err()
}

func (w *RedisWriter) writeSet(ctx context.Context, rs *models.RecordSet) error {
	keyIdx := rs.KeyIndex()
	if keyIdx < 0 {
		return fmt.Errorf("key column %q not in record set", rs.Key)
	}

	_, err := w.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, cells := range rs.Rows {
			id := cells[keyIdx]
			fields := make(map[string]string, len(cells))
			for i, col := range rs.Columns {
				fields[col] = cells[i]
			}

			if rs.UniqueKey {
				pipe.HSet(ctx, w.key(rs.Name, id), fields)
			} else {
				encoded, err := json.Marshal(fields)
				if err != nil {
					return err
				}
				pipe.RPush(ctx, w.key(rs.Name, id), encoded)
			}
			pipe.SAdd(ctx, w.key(rs.Name, "ids"), id)
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.logger.Debug("Indexed record set",
		zap.String("set", rs.Name),
		zap.Int("rows", rs.Len()))
	return nil
}
