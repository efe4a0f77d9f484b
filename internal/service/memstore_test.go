package service

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"clothingstore/internal/model"
	"clothingstore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for Postgres. Transactions are fully
// serialized and roll back to a snapshot on error.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	categories map[uuid.UUID]model.Category
	products   map[uuid.UUID]model.Product
	variants   map[uuid.UUID]model.ProductVariant
	ledger     []model.InventoryTransaction
	orders     map[uuid.UUID]model.Order
	users      map[uuid.UUID]model.User
	audit      []model.AuditLog

	clock        time.Time
	failLedgerOn int // fail the nth ledger insert (1-based), 0 = never
	ledgerWrites int
}

var errInjected = errors.New("injected failure")

func newMemStore() *memStore {
	return &memStore{
		categories: map[uuid.UUID]model.Category{},
		products:   map[uuid.UUID]model.Product{},
		variants:   map[uuid.UUID]model.ProductVariant{},
		orders:     map[uuid.UUID]model.Order{},
		users:      map[uuid.UUID]model.User{},
		clock:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local),
	}
}

// tick returns a strictly increasing timestamp.
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type memSnapshot struct {
	categories map[uuid.UUID]model.Category
	products   map[uuid.UUID]model.Product
	variants   map[uuid.UUID]model.ProductVariant
	ledger     []model.InventoryTransaction
	orders     map[uuid.UUID]model.Order
	users      map[uuid.UUID]model.User
	audit      []model.AuditLog
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		categories: maps.Clone(s.categories),
		products:   maps.Clone(s.products),
		variants:   maps.Clone(s.variants),
		ledger:     slices.Clone(s.ledger),
		orders:     maps.Clone(s.orders),
		users:      maps.Clone(s.users),
		audit:      slices.Clone(s.audit),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = snap.categories
	s.products = snap.products
	s.variants = snap.variants
	s.ledger = snap.ledger
	s.orders = snap.orders
	s.users = snap.users
	s.audit = snap.audit
}

// RunInTx implements repository.TransactionManager.
func (s *memStore) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return repository.TranslateError(err, "")
	}
	return nil
}

// --- seed helpers ---

func (s *memStore) seedCategory(name string) model.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := model.Category{ID: uuid.New(), Name: name, CreatedAt: s.tick()}
	s.categories[c.ID] = c
	return c
}

func (s *memStore) seedProduct(categoryID *uuid.UUID, sku, name string, purchase, sale int64) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Product{
		ID:            uuid.New(),
		CategoryID:    categoryID,
		SKU:           sku,
		Name:          name,
		PurchasePrice: decimal.NewFromInt(purchase),
		SalePrice:     decimal.NewFromInt(sale),
		IsActive:      true,
		CreatedAt:     s.tick(),
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) seedVariant(productID uuid.UUID, size, color string, stock, minStock int) model.ProductVariant {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := model.ProductVariant{ID: uuid.New(), ProductID: productID, Size: size, Color: color, Stock: stock, MinStock: minStock, CreatedAt: s.tick()}
	s.variants[v.ID] = v
	return v
}

func (s *memStore) seedUser(name, email, passwordHash, role string, active bool) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{ID: uuid.New(), Name: name, Email: email, Password: passwordHash, Role: role, IsActive: active, CreatedAt: s.tick()}
	s.users[u.ID] = u
	return u
}

func (s *memStore) stockOf(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.variants[id].Stock
}

func (s *memStore) entries() []model.InventoryTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ledger)
}

func (s *memStore) orderList() []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Collect(maps.Values(s.orders))
}

func (s *memStore) auditEntries() []model.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.audit)
}

// hydrateVariant attaches product and category like the gorm preloads do.
func (s *memStore) hydrateVariant(v model.ProductVariant) model.ProductVariant {
	if p, ok := s.products[v.ProductID]; ok {
		if p.CategoryID != nil {
			if c, ok := s.categories[*p.CategoryID]; ok {
				p.Category = &c
			}
		}
		v.Product = &p
	}
	return v
}

// --- variants ---

type memVariants struct{ s *memStore }

func (r memVariants) Create(_ context.Context, v *model.ProductVariant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.variants {
		if existing.ProductID == v.ProductID && existing.Size == v.Size && existing.Color == v.Color {
			return gorm.ErrDuplicatedKey
		}
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.CreatedAt = r.s.tick()
	stored := *v
	stored.Product = nil
	r.s.variants[v.ID] = stored
	return nil
}

func (r memVariants) FindByID(_ context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	v = r.s.hydrateVariant(v)
	return &v, nil
}

func (r memVariants) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (r memVariants) FindByKeyForUpdate(_ context.Context, productID uuid.UUID, size, color string) (*model.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.variants {
		if v.ProductID == productID && v.Size == size && v.Color == color {
			return &v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memVariants) UpdateStock(_ context.Context, id uuid.UUID, stock int) error {
	return r.UpdateStockAndMinStock(context.Background(), id, stock, nil)
}

func (r memVariants) UpdateStockAndMinStock(_ context.Context, id uuid.UUID, stock int, minStock *int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.variants[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stock < 0 {
		return gorm.ErrCheckConstraintViolated
	}
	v.Stock = stock
	if minStock != nil {
		v.MinStock = *minStock
	}
	r.s.variants[id] = v
	return nil
}

func (r memVariants) UpdateAttributes(_ context.Context, variant *model.ProductVariant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.variants[variant.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	v.Size, v.Color, v.MinStock = variant.Size, variant.Color, variant.MinStock
	r.s.variants[v.ID] = v
	return nil
}

func (r memVariants) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.variants[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.variants, id)
	r.s.ledger = slices.DeleteFunc(r.s.ledger, func(e model.InventoryTransaction) bool { return e.VariantID == id })
	return nil
}

func (r memVariants) HasOrderItems(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		for _, it := range o.Items {
			if it.VariantID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r memVariants) ListByProduct(_ context.Context, productID uuid.UUID) ([]model.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.ProductVariant{}
	for _, v := range r.s.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b model.ProductVariant) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (r memVariants) ListAll(_ context.Context, f repository.VariantFilter) ([]model.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.ProductVariant{}
	for _, v := range r.s.variants {
		v = r.s.hydrateVariant(v)
		p := v.Product
		if p == nil || !p.IsActive {
			continue
		}
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		if f.ProductID != nil && v.ProductID != *f.ProductID {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.SKU), strings.ToLower(f.Search)) {
			continue
		}
		if f.LowStock && !v.IsLowStock() {
			continue
		}
		if f.OutOfStock && !v.IsOutOfStock() {
			continue
		}
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b model.ProductVariant) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (r memVariants) List(ctx context.Context, f repository.VariantFilter, offset, limit int) ([]model.ProductVariant, int64, error) {
	all, _ := r.ListAll(ctx, f)
	return page(all, offset, limit), int64(len(all)), nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	return items[offset:min(offset+limit, len(items))]
}

// --- products ---

type memProducts struct{ s *memStore }

func (r memProducts) Create(_ context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.products {
		if existing.SKU == p.SKU {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = r.s.tick()
	r.s.products[p.ID] = *p
	return nil
}

func (r memProducts) Update(_ context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	stored := *p
	stored.Category, stored.Variants = nil, nil
	r.s.products[p.ID] = stored
	return nil
}

func (r memProducts) Deactivate(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.IsActive = false
	r.s.products[id] = p
	return nil
}

func (r memProducts) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r memProducts) FindByIDWithVariants(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Variants, _ = memVariants{r.s}.ListByProduct(ctx, id)
	return p, nil
}

func (r memProducts) List(_ context.Context, f repository.ProductFilter, offset, limit int) ([]model.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.Product{}
	for _, p := range r.s.products {
		if !p.IsActive && !f.IncludeInactive {
			continue
		}
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.SKU), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b model.Product) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return page(out, offset, limit), int64(len(out)), nil
}

// --- categories ---

type memCategories struct{ s *memStore }

func (r memCategories) Create(_ context.Context, c *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.Name == c.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = r.s.tick()
	r.s.categories[c.ID] = *c
	return nil
}

func (r memCategories) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r memCategories) List(_ context.Context) ([]model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := slices.Collect(maps.Values(r.s.categories))
	slices.SortFunc(out, func(a, b model.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// --- ledger ---

type memLedger struct{ s *memStore }

func (r memLedger) Create(_ context.Context, e *model.InventoryTransaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ledgerWrites++
	if r.s.failLedgerOn > 0 && r.s.ledgerWrites == r.s.failLedgerOn {
		return errInjected
	}
	if e.Quantity <= 0 {
		return gorm.ErrCheckConstraintViolated
	}
	if _, ok := r.s.variants[e.VariantID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.CreatedAt = r.s.tick()
	r.s.ledger = append(r.s.ledger, *e)
	return nil
}

func (r memLedger) matches(e model.InventoryTransaction, f repository.TransactionFilter) bool {
	v := r.s.hydrateVariant(r.s.variants[e.VariantID])
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.VariantID != nil && e.VariantID != *f.VariantID {
		return false
	}
	if f.ProductID != nil && v.ProductID != *f.ProductID {
		return false
	}
	if f.UserID != nil && (e.UserID == nil || *e.UserID != *f.UserID) {
		return false
	}
	if f.CreatedFrom != nil && e.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedBefore != nil && !e.CreatedAt.Before(*f.CreatedBefore) {
		return false
	}
	if f.Search != "" {
		hay := strings.ToLower(e.Reason)
		if v.Product != nil {
			hay += " " + strings.ToLower(v.Product.Name+" "+v.Product.SKU)
		}
		if !strings.Contains(hay, strings.ToLower(f.Search)) {
			return false
		}
	}
	return true
}

func (r memLedger) hydrate(e model.InventoryTransaction) model.InventoryTransaction {
	if v, ok := r.s.variants[e.VariantID]; ok {
		v = r.s.hydrateVariant(v)
		e.Variant = &v
	}
	if e.UserID != nil {
		if u, ok := r.s.users[*e.UserID]; ok {
			e.User = &u
		}
	}
	return e
}

func (r memLedger) ListAll(_ context.Context, f repository.TransactionFilter) ([]model.InventoryTransaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.InventoryTransaction{}
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		if e := r.s.ledger[i]; r.matches(e, f) {
			out = append(out, r.hydrate(e))
		}
	}
	return out, nil
}

func (r memLedger) List(ctx context.Context, f repository.TransactionFilter, offset, limit int) ([]model.InventoryTransaction, int64, error) {
	all, _ := r.ListAll(ctx, f)
	return page(all, offset, limit), int64(len(all)), nil
}

func (r memLedger) Recent(ctx context.Context, limit int) ([]model.InventoryTransaction, error) {
	all, _ := r.ListAll(ctx, repository.TransactionFilter{})
	return page(all, 0, limit), nil
}

// --- orders ---

type memOrders struct{ s *memStore }

func (r memOrders) Create(_ context.Context, o *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.orders {
		if existing.OrderNumber == o.OrderNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	o.CreatedAt = r.s.tick()
	for i := range o.Items {
		o.Items[i].ID = uuid.New()
		o.Items[i].OrderID = o.ID
	}
	r.s.orders[o.ID] = *o
	return nil
}

func (r memOrders) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.orders[id]
	return ok, nil
}

// --- users ---

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = r.s.tick()
	r.s.users[u.ID] = *u
	return nil
}

func (r memUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memUsers) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := slices.Collect(maps.Values(r.s.users))
	slices.SortFunc(out, func(a, b model.User) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return page(out, offset, limit), int64(len(out)), nil
}

func (r memUsers) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastLoginAt = &at
	r.s.users[id] = u
	return nil
}

func (r memUsers) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.users, id)
	for i := range r.s.ledger {
		if e := &r.s.ledger[i]; e.UserID != nil && *e.UserID == id {
			e.UserID = nil
		}
	}
	return nil
}

// --- audit ---

type memAudit struct{ s *memStore }

func (r memAudit) Log(_ context.Context, entry *model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = r.s.tick()
	r.s.audit = append(r.s.audit, *entry)
	return nil
}

func (r memAudit) List(_ context.Context, filter repository.AuditFilter, offset, limit int) ([]model.AuditLog, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := slices.DeleteFunc(slices.Clone(r.s.audit), func(l model.AuditLog) bool {
		switch {
		case filter.Action != "" && l.Action != filter.Action:
			return true
		case filter.EntityID != "" && l.EntityID != filter.EntityID:
			return true
		case filter.UserID != nil && (l.UserID == nil || *l.UserID != *filter.UserID):
			return true
		}
		return false
	})
	slices.Reverse(out)
	for i := range out {
		if out[i].UserID != nil {
			if u, ok := r.s.users[*out[i].UserID]; ok {
				out[i].User = &u
			}
		}
	}
	return page(out, offset, limit), int64(len(out)), nil
}

// --- event capture ---

type capturedEvent struct {
	Type    string
	Payload StockEvent
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []capturedEvent
}

func (p *recordingPublisher) Publish(eventType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, _ := payload.(StockEvent)
	p.events = append(p.events, capturedEvent{Type: eventType, Payload: e})
}

func (p *recordingPublisher) ofType(eventType string) []StockEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []StockEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e.Payload)
		}
	}
	return out
}
