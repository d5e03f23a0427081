package middleware

import (
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	bucketIdleExpiry = time.Hour
	bucketCleanup    = 10 * time.Minute
	warningInterval  = 30 * time.Second
)

var rateLimitWarnings = []string{
	"⚠️ Too many messages. Please slow down a little.",
	"⚠️ Rate limit exceeded. Please wait about 30 seconds before trying again.",
	"🛑 You are sending messages too often. Please wait a minute.",
}

// bucket is one user's token bucket.
type bucket struct {
	mu         sync.Mutex
	tokens     float64
	refilledAt time.Time
	warnings   int
	warnedAt   time.Time
}

// RateLimiterMiddleware drops updates of users that exceed their token
// bucket. Buckets of users idle for an hour are evicted.
type RateLimiterMiddleware struct {
	buckets  *cache.Cache
	create   sync.Mutex
	capacity float64
	perSec   float64
	logger   *zap.Logger
	api      Sender
	now      func() time.Time
}

// NewRateLimiterMiddleware allows each user bursts of burstSize updates,
// refilled at requestsPerMinute.
func NewRateLimiterMiddleware(requestsPerMinute, burstSize int, logger *zap.Logger, api Sender) *RateLimiterMiddleware {
	if burstSize < 1 {
		burstSize = 1
	}
	return &RateLimiterMiddleware{
		buckets:  cache.New(bucketIdleExpiry, bucketCleanup),
		capacity: float64(burstSize),
		perSec:   float64(requestsPerMinute) / 60,
		logger:   logger,
		api:      api,
		now:      time.Now,
	}
}

func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	userID, chatID, ok := origin(update)
	if !ok {
		next(update)
		return
	}

	allowed, warning := rl.take(userID)
	if allowed {
		next(update)
		return
	}

	rl.logger.Warn("rate limit exceeded",
		zap.Int64("user_id", userID),
		zap.Int64("chat_id", chatID),
	)
	if warning != "" {
		if _, err := rl.api.Send(tgbotapi.NewMessage(chatID, warning)); err != nil {
			rl.logger.Error("failed to send rate limit warning", zap.Error(err), zap.Int64("chat_id", chatID))
		}
	}
}

// take spends one token of userID's bucket. When the bucket is empty it
// returns the warning to show, or "" if the user was warned recently.
func (rl *RateLimiterMiddleware) take(userID int64) (bool, string) {
	b := rl.bucketFor(userID)
	b.mu.Lock()
	defer b.mu.Unlock()

	now := rl.now()
	b.tokens += now.Sub(b.refilledAt).Seconds() * rl.perSec
	if b.tokens > rl.capacity {
		b.tokens = rl.capacity
	}
	b.refilledAt = now

	if b.tokens >= 1 {
		b.tokens--
		b.warnings = 0
		return true, ""
	}

	if now.Sub(b.warnedAt) <= warningInterval {
		return false, ""
	}
	b.warnedAt = now
	b.warnings++
	return false, rateLimitWarnings[min(b.warnings, len(rateLimitWarnings))-1]
}

func (rl *RateLimiterMiddleware) bucketFor(userID int64) *bucket {
	key := strconv.FormatInt(userID, 10)

	rl.create.Lock()
	defer rl.create.Unlock()

	if v, ok := rl.buckets.Get(key); ok {
		b := v.(*bucket)
		rl.buckets.SetDefault(key, b)
		return b
	}
	b := &bucket{tokens: rl.capacity, refilledAt: rl.now()}
	rl.buckets.SetDefault(key, b)
	return b
}
