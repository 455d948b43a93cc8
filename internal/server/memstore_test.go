package server_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
	repo "github.com/sidharth73/mern-e-commerce/internal/repository"
)

// テスト用のメモリ実装（全repositoryを1つで持つ）
type memStore struct {
	mu       sync.Mutex
	products map[model.ProductID]model.Product
	carts    map[int64]model.Cart
	items    []model.CartItem
	coupons  []model.CouponRecord
	nextID   int64
}

func newMemStore(products ...model.Product) *memStore {
	s := &memStore{
		products: make(map[model.ProductID]model.Product),
		carts:    make(map[int64]model.Cart),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(s)
}

func (s *memStore) Carts() repo.CartRepository         { return s }
func (s *memStore) CartItems() repo.CartItemRepository { return s }
func (s *memStore) Products() repo.ProductRepository   { return s }

func (s *memStore) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.carts {
		if c.UserID == userID && c.Status == model.CartStatusActive {
			return c, nil
		}
	}
	c := model.Cart{ID: s.id(), UserID: userID, Status: model.CartStatusActive}
	s.carts[c.ID] = c
	return c, nil
}

func (s *memStore) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.carts {
		if c.UserID == userID && c.Status == model.CartStatusActive {
			return c, nil
		}
	}
	return model.Cart{}, repo.ErrNotFound
}

func (s *memStore) Clear(ctx context.Context, cartID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.items[:0]
	for _, it := range s.items {
		if it.CartID != cartID {
			out = append(out, it)
		}
	}
	s.items = out
	return nil
}

func (s *memStore) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.CartItem{}
	for _, it := range s.items {
		if it.CartID == cartID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *memStore) Increment(ctx context.Context, cartID int64, productID model.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].CartID == cartID && s.items[i].ProductID == productID {
			s.items[i].Quantity++
			return nil
		}
	}
	s.items = append(s.items, model.CartItem{ID: s.id(), CartID: cartID, ProductID: productID, Quantity: 1})
	return nil
}

func (s *memStore) SetQuantity(ctx context.Context, cartID int64, productID model.ProductID, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].CartID == cartID && s.items[i].ProductID == productID {
			s.items[i].Quantity = qty
			return nil
		}
	}
	return repo.ErrNotFound
}

func (s *memStore) DeleteByCartAndProduct(ctx context.Context, cartID int64, productID model.ProductID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.items[:0]
	for _, it := range s.items {
		if it.CartID != cartID || it.ProductID != productID {
			out = append(out, it)
		}
	}
	s.items = out
	return nil
}

func (s *memStore) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Product
	for _, p := range s.products {
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		if q.Featured && !p.IsFeatured {
			continue
		}
		if q.Q != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Q)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	start := min((q.Page-1)*q.Limit, len(out))
	end := min(start+q.Limit, len(out))
	return out[start:end], total, nil
}

func (s *memStore) FindByID(ctx context.Context, id model.ProductID) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

// テストでは順番を固定する
func (s *memStore) Sample(ctx context.Context, n int) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out[:min(n, len(out))], nil
}

func (s *memStore) FindByIDs(ctx context.Context, ids []model.ProductID) (map[model.ProductID]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[model.ProductID]model.Product)
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *memStore) Save(ctx context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	return nil
}

// クーポン側は別の型（Saveの引数が違うため）
type memCoupons struct {
	mu      sync.Mutex
	records []model.CouponRecord
}

func (m *memCoupons) FindActiveByUserID(ctx context.Context, userID int64) (model.CouponRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		if r := m.records[i]; r.UserID == userID && r.IsActive {
			return r, nil
		}
	}
	return model.CouponRecord{}, repo.ErrNotFound
}

func (m *memCoupons) FindActiveByCode(ctx context.Context, userID int64, code string) (model.CouponRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.UserID == userID && r.Code == code && r.IsActive {
			return r, nil
		}
	}
	return model.CouponRecord{}, repo.ErrNotFound
}

func (m *memCoupons) Deactivate(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].IsActive = false
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memCoupons) Save(ctx context.Context, c model.CouponRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = int64(len(m.records) + 1)
	m.records = append(m.records, c)
	return nil
}
