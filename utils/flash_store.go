package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/blogly/metrics"
)

// Flash categories understood by the layout template.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

const (
	// FlashCookieName holds the per-browser id flash notices are stored under.
	FlashCookieName = "blogly_flash"

	flashKeyPrefix  = "blogly:flash:"
	defaultFlashTTL = 10 * time.Minute
)

// Notice is one message shown on the next rendered page.
type Notice struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type flashEntry struct {
	notices   []Notice
	expiresAt time.Time
}

// FlashStore queues notices per browser until the next page render.
// Redis backs it when available; otherwise an in-process map is used (single-instance only).
type FlashStore struct {
	rc  *redis.Client
	ttl time.Duration

	mu  sync.Mutex
	mem map[string]flashEntry
}

// NewFlashStore builds a store over rc, which may be nil.
func NewFlashStore(rc *redis.Client, ttl time.Duration) *FlashStore {
	if ttl <= 0 {
		ttl = defaultFlashTTL
	}
	return &FlashStore{rc: rc, ttl: ttl, mem: map[string]flashEntry{}}
}

// Backend names the storage in use.
func (s *FlashStore) Backend() string {
	if s.rc != nil {
		return "redis"
	}
	return "memory"
}

// Add appends a notice for id.
func (s *FlashStore) Add(ctx context.Context, id string, n Notice) error {
	metrics.ObserveFlash("add", s.Backend())
	if s.rc != nil {
		payload, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("encode flash: %w", err)
		}
		key := flashKeyPrefix + id
		_, err = s.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.RPush(ctx, key, payload)
			pipe.Expire(ctx, key, s.ttl)
			return nil
		})
		if err != nil {
			return fmt.Errorf("store flash: %w", err)
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(time.Now())
	entry := s.mem[id]
	entry.notices = append(entry.notices, n)
	entry.expiresAt = time.Now().Add(s.ttl)
	s.mem[id] = entry
	return nil
}

// Pop returns and clears all notices queued for id, oldest first.
func (s *FlashStore) Pop(ctx context.Context, id string) ([]Notice, error) {
	metrics.ObserveFlash("pop", s.Backend())
	if s.rc != nil {
		key := flashKeyPrefix + id
		var lrange *redis.StringSliceCmd
		_, err := s.rc.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			lrange = pipe.LRange(ctx, key, 0, -1)
			pipe.Del(ctx, key)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("pop flash: %w", err)
		}
		notices := make([]Notice, 0, len(lrange.Val()))
		for _, raw := range lrange.Val() {
			var n Notice
			if err := json.Unmarshal([]byte(raw), &n); err != nil {
				Sugar.Warnw("dropping malformed flash", "error", err)
				continue
			}
			notices = append(notices, n)
		}
		return notices, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.mem[id]
	delete(s.mem, id)
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	return entry.notices, nil
}

// sweepLocked drops expired entries so abandoned browsers do not pile up.
func (s *FlashStore) sweepLocked(now time.Time) {
	for id, entry := range s.mem {
		if now.After(entry.expiresAt) {
			delete(s.mem, id)
		}
	}
}
