package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"rosterid/internal/identity/models"
	id "rosterid/pkg/domain"
	"rosterid/pkg/platform/sentinel"
)

const (
	defaultKeyPrefix = "rosterid:review:"
	// ttlGrace keeps a key alive past ExpiresAt so Expire, not Redis, decides
	// when a candidate disappears from the index.
	ttlGrace = time.Hour
	// neverExpires is the index score of candidates without ExpiresAt.
	neverExpires = float64(1 << 53)
)

// RedisStore keeps each candidate as a JSON string with a TTL and indexes
// candidate ids in a sorted set scored by expiry (unix milliseconds).
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

func NewRedis(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) candidateKey(candidateID string) string {
	return s.prefix + "candidate:" + candidateID
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "expiry"
}

func (s *RedisStore) Put(ctx context.Context, candidate *models.MatchCandidate) error {
	data, err := json.Marshal(candidate)
	if err != nil {
		return fmt.Errorf("marshal candidate: %w", err)
	}

	var ttl time.Duration
	score := neverExpires
	if !candidate.ExpiresAt.IsZero() {
		score = float64(candidate.ExpiresAt.UnixMilli())
		if remaining := time.Until(candidate.ExpiresAt); remaining > 0 {
			ttl = remaining + ttlGrace
		} else {
			ttl = ttlGrace
		}
	}

	candidateID := candidate.ID.String()
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.candidateKey(candidateID), data, ttl)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: score, Member: candidateID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("put candidate: %w", errors.Join(err, sentinel.ErrUnavailable))
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, candidateID id.CandidateID) (*models.MatchCandidate, error) {
	data, err := s.client.Get(ctx, s.candidateKey(candidateID.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", errors.Join(err, sentinel.ErrUnavailable))
	}
	return decodeCandidate(data)
}

func (s *RedisStore) List(ctx context.Context, filter Filter) ([]*models.MatchCandidate, error) {
	// Candidates expiring before now are skipped in the index query itself.
	minScore := strconv.FormatInt(filter.now().UnixMilli(), 10)
	ids, err := s.client.ZRangeByScore(ctx, s.indexKey(), &redis.ZRangeBy{Min: "(" + minScore, Max: "+inf"}).Result()
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", errors.Join(err, sentinel.ErrUnavailable))
	}
	if len(ids) == 0 {
		return []*models.MatchCandidate{}, nil
	}

	keys := make([]string, len(ids))
	for i, candidateID := range ids {
		keys[i] = s.candidateKey(candidateID)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", errors.Join(err, sentinel.ErrUnavailable))
	}

	out := make([]*models.MatchCandidate, 0, len(values))
	var stale []any
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		c, err := decodeCandidate([]byte(raw))
		if err != nil {
			return nil, err
		}
		if filter.matches(c) {
			out = append(out, c)
		}
	}
	if len(stale) > 0 {
		// Keys that outlived their TTL leave index members behind.
		_ = s.client.ZRem(ctx, s.indexKey(), stale...).Err()
	}
	return limit(sortCandidates(out), filter.Limit), nil
}

func (s *RedisStore) Expire(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.indexKey(), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("find expired candidates: %w", errors.Join(err, sentinel.ErrUnavailable))
	}
	if len(ids) == 0 {
		return 0, nil
	}

	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	for i, candidateID := range ids {
		keys[i] = s.candidateKey(candidateID)
		members[i] = candidateID
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, s.indexKey(), members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("expire candidates: %w", errors.Join(err, sentinel.ErrUnavailable))
	}
	return len(ids), nil
}

func decodeCandidate(data []byte) (*models.MatchCandidate, error) {
	var c models.MatchCandidate
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode candidate: %w", err)
	}
	return &c, nil
}
