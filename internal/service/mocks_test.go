package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fjod/freshbuy/internal/audit"
	"github.com/fjod/freshbuy/internal/cache"
	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/paystack"
	"github.com/fjod/freshbuy/internal/publisher"
	"github.com/fjod/freshbuy/internal/repository"
)

// memStore is an in-memory CheckoutStore. InTx holds a single lock for the whole
// transaction and undoes its writes when fn fails.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	carts    map[string]*domain.Cart
	products map[int64]*domain.Product
	orders   map[int64]*domain.Order
	lines    map[int64][]domain.OrderLine

	nextOrderID int64
	upsertErr   error
	setRefErr   error
	// failDecrement makes DecrementStock fail, for rollback tests.
	failDecrement error
}

func newMemStore() *memStore {
	return &memStore{
		carts:    make(map[string]*domain.Cart),
		products: make(map[int64]*domain.Product),
		orders:   make(map[int64]*domain.Order),
		lines:    make(map[int64][]domain.OrderLine),
	}
}

func (m *memStore) addProduct(id int64, name, price string, stock int) *domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &domain.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), Quantity: stock}
	m.products[id] = p
	return p
}

func (m *memStore) putCart(code string, lines map[int64]int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart := &domain.Cart{ID: int64(len(m.carts) + 1), Code: code}
	var lineID int64
	for productID, qty := range lines {
		lineID++
		cart.Lines = append(cart.Lines, domain.CartLine{ID: lineID, Product: *m.products[productID], Quantity: qty})
	}
	m.carts[code] = cart
}

func (m *memStore) stock(productID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[productID].Quantity
}

func (m *memStore) order(id int64) domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.orders[id]
}

func (m *memStore) hasCart(code string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.carts[code]
	return ok
}

func (m *memStore) GetCartByCode(_ context.Context, code string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cart, ok := m.carts[code]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	c := *cart
	c.Lines = append([]domain.CartLine(nil), cart.Lines...)
	for i := range c.Lines {
		c.Lines[i].Product = *m.products[c.Lines[i].Product.ID]
	}
	return &c, nil
}

func (m *memStore) UpsertOrderSnapshot(_ context.Context, snap *domain.OrderSnapshot) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}

	var order *domain.Order
	for _, o := range m.orders {
		if o.UserID == snap.UserID && o.CartCode == snap.CartCode {
			order = o
		}
	}
	now := time.Now()
	if order == nil {
		m.nextOrderID++
		order = &domain.Order{
			ID:        m.nextOrderID,
			SKU:       fmt.Sprintf("ORD-%06d", m.nextOrderID),
			UserID:    snap.UserID,
			CartCode:  snap.CartCode,
			Status:    domain.OrderStatusPending,
			CreatedAt: now,
		}
		m.orders[order.ID] = order
	} else if order.Status != domain.OrderStatusPending {
		return nil, repository.ErrOrderNotPending
	}
	order.TotalAmount = snap.Total
	order.UpdatedAt = now

	lines := make([]domain.OrderLine, 0, len(snap.Lines))
	for i, l := range snap.Lines {
		lines = append(lines, domain.OrderLine{
			ID:       int64(i + 1),
			OrderID:  order.ID,
			Product:  *m.products[l.ProductID],
			Quantity: l.Quantity,
		})
	}
	m.lines[order.ID] = lines

	o := *order
	o.Lines = lines
	return &o, nil
}

func (m *memStore) SetOrderReference(_ context.Context, orderID int64, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setRefErr != nil {
		return m.setRefErr
	}
	o, ok := m.orders[orderID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Reference = &reference
	return nil
}

func (m *memStore) InTx(ctx context.Context, fn func(repository.OrderTx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	tx := &memTx{store: m}
	if err := fn(tx); err != nil {
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		return err
	}
	return nil
}

type memTx struct {
	store *memStore
	undo  []func()
}

func (t *memTx) LockOrderByReference(_ context.Context, reference string, userID int64) (*domain.Order, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	for _, o := range t.store.orders {
		if o.Reference != nil && *o.Reference == reference && o.UserID == userID {
			c := *o
			return &c, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (t *memTx) UpdateOrderStatus(_ context.Context, orderID int64, status domain.OrderStatus) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	o := t.store.orders[orderID]
	prev := o.Status
	o.Status = status
	t.undo = append(t.undo, func() { o.Status = prev })
	return nil
}

func (t *memTx) DeleteCartByCode(_ context.Context, code string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	cart, ok := t.store.carts[code]
	if !ok {
		return nil
	}
	delete(t.store.carts, code)
	t.undo = append(t.undo, func() { t.store.carts[code] = cart })
	return nil
}

func (t *memTx) ListOrderLines(_ context.Context, orderID int64) ([]domain.OrderLine, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	lines := append([]domain.OrderLine(nil), t.store.lines[orderID]...)
	for i := range lines {
		lines[i].Product = *t.store.products[lines[i].Product.ID]
	}
	return lines, nil
}

func (t *memTx) DecrementStock(_ context.Context, productID int64, quantity int) (bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.failDecrement != nil {
		return false, t.store.failDecrement
	}
	p := t.store.products[productID]
	if p.Quantity < quantity {
		return false, nil
	}
	p.Quantity -= quantity
	t.undo = append(t.undo, func() { p.Quantity += quantity })
	return true, nil
}

type fakeProvider struct {
	mu          sync.Mutex
	initReqs    []paystack.InitializeRequest
	initAuth    *paystack.Authorization
	initErr     error
	verifyTx    *paystack.Transaction
	verifyErr   error
	verifyCalls int
}

func (f *fakeProvider) Initialize(_ context.Context, req paystack.InitializeRequest) (*paystack.Authorization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initReqs = append(f.initReqs, req)
	if f.initErr != nil {
		return nil, f.initErr
	}
	a := *f.initAuth
	return &a, nil
}

func (f *fakeProvider) Verify(_ context.Context, reference string) (*paystack.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	tx := *f.verifyTx
	tx.Reference = reference
	return &tx, nil
}

type fakeCache struct {
	mu          sync.Mutex
	carts       map[string]*domain.Cart
	generations map[string]int64
	deleted     []string
	staleFills  int
	getErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{carts: make(map[string]*domain.Cart), generations: make(map[string]int64)}
}

func (f *fakeCache) Get(_ context.Context, code string) (*domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	cart, ok := f.carts[code]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (f *fakeCache) Generation(_ context.Context, code string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return 0, f.getErr
	}
	return f.generations[code], nil
}

func (f *fakeCache) Fill(_ context.Context, code string, cart *domain.Cart, generation int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generations[code] != generation {
		f.staleFills++
		return cache.ErrStaleFill
	}
	f.carts[code] = cart
	return nil
}

func (f *fakeCache) Delete(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, code)
	f.generations[code]++
	f.deleted = append(f.deleted, code)
	return nil
}

func (f *fakeCache) staleFillCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.staleFills
}

func (f *fakeCache) cached(code string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.carts[code]
	return ok
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
	err     error
}

func (f *fakeAudit) Record(_ context.Context, e audit.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return f.err
}

func (f *fakeAudit) outcomes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Operation+":"+e.Outcome)
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publisher.OrderPaidEvent
	err    error
}

func (f *fakePublisher) PublishOrderPaid(_ context.Context, e publisher.OrderPaidEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

var errStore = errors.New("store unavailable")
