package faq

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vivasaude/portal-api/pkg/logging"
)

const cacheKeyPrefix = "faq:reply:"

// ReplyCache stores rendered answers in Redis so repeated questions skip
// the matcher. A nil *ReplyCache is a valid no-op cache.
type ReplyCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewReplyCache creates the cache. ttl <= 0 falls back to 10 minutes.
func NewReplyCache(rdb *redis.Client, ttl time.Duration, logger *logging.Logger) *ReplyCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ReplyCache{rdb: rdb, ttl: ttl, logger: logger.Component("faq_cache")}
}

// Get returns the cached answer for a question, if any. Redis failures
// count as a miss.
func (c *ReplyCache) Get(ctx context.Context, question string) (Answer, bool) {
	if c == nil {
		return Answer{}, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(question)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("cache read failed", "error", err)
		}
		return Answer{}, false
	}
	var ans Answer
	if err := json.Unmarshal(raw, &ans); err != nil {
		return Answer{}, false
	}
	return ans, true
}

// Set stores an answer. Failures are logged and otherwise ignored.
func (c *ReplyCache) Set(ctx context.Context, question string, ans Answer) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(ans)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(question), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "error", err)
	}
}

func cacheKey(question string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(question))))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
