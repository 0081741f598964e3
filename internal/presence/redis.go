package presence

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"drawroom/internal/config"
	"drawroom/internal/models"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return rdb, nil
}

// RedisStore keeps one ZSET per room; members are "userID|connID" scored by
// the unix time of the last join or touch. Entries older than ttl are stale.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func roomKey(roomID models.RoomID) string {
	return "presence:room:" + string(roomID)
}

func member(userID, connID string) string {
	return userID + "|" + connID
}

func (s *RedisStore) Join(ctx context.Context, roomID models.RoomID, userID, connID string) error {
	key := roomKey(roomID)
	pipe := s.rdb.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(s.now().Unix()), Member: member(userID, connID)})
	pipe.Expire(ctx, key, s.ttl*2)
	_, err := pipe.Exec(ctx)
	return err
}

// Touch refreshes the score of an existing entry. It never re-adds an entry
// removed by Leave.
func (s *RedisStore) Touch(ctx context.Context, roomID models.RoomID, userID, connID string) error {
	key := roomKey(roomID)
	pipe := s.rdb.TxPipeline()
	pipe.ZAddXX(ctx, key, redis.Z{Score: float64(s.now().Unix()), Member: member(userID, connID)})
	pipe.Expire(ctx, key, s.ttl*2)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Leave(ctx context.Context, roomID models.RoomID, userID, connID string) error {
	return s.rdb.ZRem(ctx, roomKey(roomID), member(userID, connID)).Err()
}

func (s *RedisStore) Online(ctx context.Context, roomID models.RoomID) ([]models.ActiveUser, error) {
	key := roomKey(roomID)
	threshold := s.now().Add(-s.ttl).Unix()

	if err := s.rdb.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(threshold, 10)).Err(); err != nil {
		return nil, err
	}
	entries, err := s.rdb.ZRangeWithScores(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	return collapse(entries), nil
}

// collapse folds per-connection entries into one ActiveUser per user.
func collapse(entries []redis.Z) []models.ActiveUser {
	latest := make(map[string]float64)
	for _, e := range entries {
		m, ok := e.Member.(string)
		if !ok {
			continue
		}
		userID, _, _ := strings.Cut(m, "|")
		if e.Score > latest[userID] {
			latest[userID] = e.Score
		}
	}

	users := make([]models.ActiveUser, 0, len(latest))
	for id, score := range latest {
		users = append(users, models.ActiveUser{UserID: id, LastSeen: time.Unix(int64(score), 0)})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users
}
