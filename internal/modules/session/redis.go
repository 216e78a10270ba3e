package session

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"github.com/ssorelay/core/internal/models"
	pkgredis "github.com/ssorelay/core/internal/pkg/redis"
)

const (
	redisKeyPrefix   = "relay:session:"
	redisKeyIndex    = "relay:sessions:index"
	redisSessionsTTL = 0 // sessions live until revoked
)

// RedisStore keeps the registry in Redis so it survives process restarts.
// Records are stored as JSON values; a sorted set scored by login time
// provides the insertion-ordered ListAll snapshot.
type RedisStore struct {
	rc *pkgredis.Client
}

// NewRedisStore creates a Redis-backed registry on an existing client.
func NewRedisStore(rc *pkgredis.Client) *RedisStore {
	return &RedisStore{rc: rc}
}

func (s *RedisStore) Put(ctx context.Context, rec *models.SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}

	_, err = s.rc.Raw().TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, redisKeyPrefix+rec.Identity, data, redisSessionsTTL)
		pipe.ZAdd(ctx, redisKeyIndex, goredis.Z{
			Score:  float64(rec.EstablishedAt.UnixNano()),
			Member: rec.Identity,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("store session record: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, identity string) (*models.SessionRecord, error) {
	data, err := s.rc.Get(ctx, redisKeyPrefix+identity)
	if err != nil {
		return nil, fmt.Errorf("load session record: %w", err)
	}
	if data == "" {
		return nil, nil
	}

	var rec models.SessionRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}
	return &rec, nil
}

func (s *RedisStore) Remove(ctx context.Context, identity string) (bool, error) {
	removed, err := s.rc.Raw().Del(ctx, redisKeyPrefix+identity).Result()
	if err != nil {
		return false, fmt.Errorf("delete session record: %w", err)
	}
	if err := s.rc.Raw().ZRem(ctx, redisKeyIndex, identity).Err(); err != nil {
		return removed > 0, fmt.Errorf("delete session index entry: %w", err)
	}
	return removed > 0, nil
}

func (s *RedisStore) ListAll(ctx context.Context) ([]*models.SessionRecord, error) {
	identities, err := s.rc.Raw().ZRange(ctx, redisKeyIndex, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load session index: %w", err)
	}
	if len(identities) == 0 {
		return []*models.SessionRecord{}, nil
	}

	keys := make([]string, len(identities))
	for i, identity := range identities {
		keys[i] = redisKeyPrefix + identity
	}
	values, err := s.rc.Raw().MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load session records: %w", err)
	}

	records := make([]*models.SessionRecord, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok || raw == "" {
			// Index and value can drift between the two reads.
			continue
		}
		var rec models.SessionRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode session record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rc.Ping(ctx)
}
