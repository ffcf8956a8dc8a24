package discount

import (
	"context"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	// ExpiredRetention is how long an expired code is kept so validation can still say "expired"
	ExpiredRetention = 30 * 24 * time.Hour

	// CleanupInterval is how often the background purge runs
	CleanupInterval = time.Hour
)

// MemoryStore implements Store in process memory
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]domain.DiscountCode

	now         func() time.Time
	stopCleanup chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewMemoryStore creates a store and starts its background purge
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		codes:       make(map[string]domain.DiscountCode),
		now:         time.Now,
		stopCleanup: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop()

	return s
}

func (s *MemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.PurgeExpired(s.now().Add(-ExpiredRetention))
		case <-s.stopCleanup:
			return
		}
	}
}

// PurgeExpired drops codes that expired before cutoff and returns how many were removed
func (s *MemoryStore) PurgeExpired(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, code := range s.codes {
		if code.ExpiresAt.Before(cutoff) {
			delete(s.codes, key)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Insert(_ context.Context, code domain.DiscountCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.codes[code.Code]; exists {
		return domain.ErrCodeCollision
	}
	s.codes[code.Code] = code
	return nil
}

func (s *MemoryStore) Find(_ context.Context, code string) (*domain.DiscountCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dc, ok := s.codes[code]
	if !ok {
		return nil, domain.ErrCodeNotFound
	}
	return &dc, nil
}

func (s *MemoryStore) IncrementIfRedeemable(_ context.Context, code string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dc, ok := s.codes[code]
	if !ok || !dc.IsRedeemable(now) {
		return false, nil
	}
	dc.UsedCount++
	s.codes[code] = dc
	return true, nil
}

// Close stops the background purge
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stopCleanup) })
	s.wg.Wait()
}
