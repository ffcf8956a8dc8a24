package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/repository"
	"github.com/shopspring/decimal"
)

// callLog records the order in which collaborators were called
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// MockCartCache implements cache.CartCache for testing
type MockCartCache struct {
	mu     sync.RWMutex
	carts  map[string]*domain.SessionCart
	GetErr error
	SetErr error
	gets   int
	log    *callLog
}

func newMockCartCache() *MockCartCache {
	return &MockCartCache{carts: make(map[string]*domain.SessionCart)}
}

func (m *MockCartCache) Get(_ context.Context, sessionID string) (*domain.SessionCart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	sc, ok := m.carts[sessionID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return sc.Clone(), nil
}

func (m *MockCartCache) Set(_ context.Context, sessionID string, sc *domain.SessionCart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.carts[sessionID] = sc.Clone()
	return nil
}

func (m *MockCartCache) Delete(_ context.Context, sessionID string) error {
	m.log.add("clear_cart")
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}

func (m *MockCartCache) items(sessionID string) []domain.LineItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sc, ok := m.carts[sessionID]; ok {
		return domain.CloneItems(sc.Items)
	}
	return nil
}

// MockCatalog implements catalog.Lookup for testing
type MockCatalog struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	Err      error
	calls    int
}

func newMockCatalog() *MockCatalog {
	return &MockCatalog{products: map[string]*domain.Product{
		"kurta-linen": {
			ID:            "kurta-linen",
			Name:          "Linen Kurta",
			Price:         decimal.NewFromInt(850),
			OriginalPrice: decimal.NewFromInt(1200),
			Sizes:         []string{"S", "M", "L"},
			Colors:        []string{"white", "indigo"},
		},
		"dupatta-cotton": {
			ID:    "dupatta-cotton",
			Name:  "Cotton Dupatta",
			Price: decimal.NewFromInt(1000),
		},
	}}
}

func (m *MockCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockCatalog) setPrice(id string, price int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[id].Price = decimal.NewFromInt(price)
}

// MockOrderStore implements OrderStore for testing
type MockOrderStore struct {
	mu      sync.RWMutex
	orders  map[string]domain.OrderRecord
	SaveErr error
	nextID  int
	log     *callLog
	// onSave runs after a successful save
	onSave func()
}

func newMockOrderStore(log *callLog) *MockOrderStore {
	return &MockOrderStore{orders: make(map[string]domain.OrderRecord), log: log}
}

func (m *MockOrderStore) SaveOrder(_ context.Context, order domain.OrderRecord) (string, error) {
	m.log.add("save_order")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return "", m.SaveErr
	}
	m.nextID++
	id := fmt.Sprintf("order-%d", m.nextID)
	m.orders[id] = order.WithID(id)
	if m.onSave != nil {
		m.onSave()
	}
	return id, nil
}

func (m *MockOrderStore) GetOrder(_ context.Context, id string) (*domain.OrderRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (m *MockOrderStore) ListOrdersByUser(_ context.Context, userID string) ([]*domain.OrderRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OrderRecord
	for _, o := range m.orders {
		if o.Customer.UserID == userID {
			cp := o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockOrderStore) count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

// MockProfileStore implements ProfileStore for testing
type MockProfileStore struct {
	mu       sync.RWMutex
	balances map[string]int64
	AddErr   error
	log      *callLog
}

func newMockProfileStore(log *callLog) *MockProfileStore {
	return &MockProfileStore{balances: make(map[string]int64), log: log}
}

func (m *MockProfileStore) AddLoyaltyPoints(_ context.Context, userID, _ string, points int64) error {
	m.log.add("credit_points")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AddErr != nil {
		return m.AddErr
	}
	m.balances[userID] += points
	return nil
}

func (m *MockProfileStore) GetLoyaltyBalance(_ context.Context, userID string) (*repository.LoyaltyBalance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b := m.balances[userID]
	return &repository.LoyaltyBalance{UserID: userID, Balance: b, LifetimePoints: b}, nil
}

// MockRegistry implements DiscountRegistry for testing
type MockRegistry struct {
	mu          sync.RWMutex
	codes       map[string]domain.DiscountCode
	ValidateErr error
	RedeemErr   error
	// LoseRace makes Redeem report the code as used up
	LoseRace  bool
	redeemed  []string
	generated []domain.DiscountCode
	now       time.Time
	log       *callLog
}

func newMockRegistry(log *callLog) *MockRegistry {
	return &MockRegistry{
		codes: make(map[string]domain.DiscountCode),
		now:   time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		log:   log,
	}
}

func (m *MockRegistry) put(code string, pct, maxUses, used int, expiresIn time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code] = domain.DiscountCode{
		Code:       code,
		Percentage: pct,
		MaxUses:    maxUses,
		UsedCount:  used,
		CreatedAt:  m.now,
		ExpiresAt:  m.now.Add(expiresIn),
	}
}

func (m *MockRegistry) Generate(_ context.Context, percentage int, codeType domain.CodeType, maxUses int) (domain.DiscountCode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix, _ := codeType.Prefix()
	dc := domain.DiscountCode{Code: prefix + "TEST0001", Percentage: percentage, Type: codeType, MaxUses: maxUses}
	m.generated = append(m.generated, dc)
	return dc, nil
}

func (m *MockRegistry) Validate(_ context.Context, code string) (domain.ValidationResult, error) {
	m.log.add("validate")
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ValidateErr != nil {
		return domain.ValidationResult{}, m.ValidateErr
	}
	dc, ok := m.codes[domain.NormalizeCode(code)]
	if !ok {
		return domain.ValidationResult{Message: domain.MessageCodeInvalid}, nil
	}
	return dc.Check(m.now), nil
}

func (m *MockRegistry) Redeem(_ context.Context, code string) (bool, error) {
	m.log.add("redeem")
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RedeemErr != nil {
		return false, m.RedeemErr
	}
	if m.LoseRace {
		return false, nil
	}
	dc, ok := m.codes[code]
	if !ok || !dc.IsRedeemable(m.now) {
		return false, nil
	}
	dc.UsedCount++
	m.codes[code] = dc
	m.redeemed = append(m.redeemed, code)
	return true, nil
}

func (m *MockRegistry) usedCount(code string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.codes[code].UsedCount
}
