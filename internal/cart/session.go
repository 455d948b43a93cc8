package cart

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
	"github.com/sidharth73/mern-e-commerce/internal/pricing"

	"go.uber.org/zap"
)

// 発行時点の世代と通し番号。応答が最新かどうかの判定に使う。
type ticket struct {
	epoch uint64
	seq   uint64
}

// Session はログイン中の1ユーザー分のカート（Cart Store）。
//
// ロックはローカル状態の読み書きの間だけ持ち、Authority呼び出し中は持たない。
// 応答を反映するのは、その明細に対して最後に出した操作の応答だけ。
// Clear と Refresh の反映は世代(epoch)を進め、それ以前に出した操作の応答を捨てる。
// 同じSessionへの操作の直列化は呼び出し側の責任。
type Session struct {
	id       string
	gateway  CartGateway
	coupons  *CouponResolver
	notifier Notifier
	logger   *zap.Logger

	mu        sync.Mutex
	state     model.CartState
	closed    bool
	epoch     uint64
	seq       uint64
	itemSeq   map[model.ProductID]uint64
	couponSeq uint64
}

type Option func(*Session)

func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSession はセッション開始時に空のカートで作る。終了時は Close を呼ぶ。
func NewSession(id string, gateway CartGateway, coupons *CouponResolver, opts ...Option) *Session {
	s := &Session{
		id:       id,
		gateway:  gateway,
		coupons:  coupons,
		notifier: nopNotifier{},
		logger:   zap.NewNop(),
		state:    model.EmptyCartState(),
		itemSeq:  make(map[model.ProductID]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("cart_session", id))
	return s
}

func (s *Session) ID() string {
	return s.id
}

// 現在の状態のコピー
func (s *Session) Snapshot() model.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close はセッションを破棄する。以降の操作は失敗し、実行中の応答は捨てられる。
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.epoch++
	s.couponSeq++
	clear(s.itemSeq)
	s.state = model.EmptyCartState()
	s.logger.Debug("cart session closed")
}

// Refresh はAuthorityのカートで明細を丸ごと置き換える。
// 失敗したら明細を空にして通知する。リトライはしない。
func (s *Session) Refresh(ctx context.Context) Result {
	tk, ok := s.begin(func() ticket { return s.issueCartLocked() })
	if !ok {
		return s.finish(ctx, rolledBack(OpRefresh, ErrSessionClosed))
	}

	items, err := s.gateway.ListItems(ctx)

	r := s.settle(func() Result {
		if ctx.Err() != nil {
			return discarded(OpRefresh, ctx.Err())
		}
		current := s.cartCurrentLocked(tk)
		if err != nil {
			if current {
				s.state.Items = []model.LineItem{}
				s.recomputeLocked()
			}
			return rolledBack(OpRefresh, err)
		}
		if !current {
			return discarded(OpRefresh, s.staleReasonLocked())
		}
		s.state.Items = mergeLines(items)
		// 取得した内容が正なので、それより前に出した明細操作の応答は捨てる
		s.epoch++
		s.recomputeLocked()
		return applied(OpRefresh)
	})
	return s.finish(ctx, r)
}

// AddItem は商品を1つ追加する。
// Authorityが受け付けた後で、既存行なら数量+1、無ければ数量1で末尾に追加する。
func (s *Session) AddItem(ctx context.Context, p model.Product) Result {
	id, ok := normalizeID(p.ID)
	if !ok {
		return s.finish(ctx, rolledBack(OpAddItem, ErrInvalidProduct))
	}
	p.ID = id

	tk, ok := s.begin(func() ticket { return s.issueItemLocked(p.ID) })
	if !ok {
		return s.finish(ctx, rolledBack(OpAddItem, ErrSessionClosed))
	}

	err := s.gateway.AddItem(ctx, p.ID)

	r := s.settle(func() Result {
		if err != nil {
			return rolledBack(OpAddItem, err)
		}
		if ctx.Err() != nil {
			return discarded(OpAddItem, ctx.Err())
		}
		// 加算同士は順序に依存しないので世代だけ見る
		if !s.epochCurrentLocked(tk) {
			return discarded(OpAddItem, s.staleReasonLocked())
		}
		if i, found := s.state.IndexOf(p.ID); found {
			s.state.Items[i].Quantity++
		} else {
			s.state.Items = append(s.state.Items, model.NewLineItem(p))
		}
		s.recomputeLocked()
		return applied(OpAddItem)
	})
	return s.finish(ctx, r)
}

// RemoveItem は先にローカルから消し、Authorityが失敗したら元の位置に戻す。
func (s *Session) RemoveItem(ctx context.Context, productID model.ProductID) Result {
	return s.removeItem(ctx, OpRemoveItem, productID)
}

// UpdateQuantity は数量を qty にする（差分ではない）。0なら削除と同じ。
// Authorityが失敗した場合はローカル状態を変えない。
func (s *Session) UpdateQuantity(ctx context.Context, productID model.ProductID, qty int64) Result {
	productID, ok := normalizeID(productID)
	if !ok {
		return s.finish(ctx, rolledBack(OpUpdateQuantity, ErrInvalidProduct))
	}
	if qty == 0 {
		return s.removeItem(ctx, OpUpdateQuantity, productID)
	}
	if qty < 0 {
		return s.finish(ctx, rolledBack(OpUpdateQuantity, ErrInvalidQuantity))
	}

	tk, ok := s.begin(func() ticket { return s.issueItemLocked(productID) })
	if !ok {
		return s.finish(ctx, rolledBack(OpUpdateQuantity, ErrSessionClosed))
	}

	err := s.gateway.UpdateQuantity(ctx, productID, qty)

	r := s.settle(func() Result {
		if err != nil {
			return rolledBack(OpUpdateQuantity, err)
		}
		if ctx.Err() != nil {
			return discarded(OpUpdateQuantity, ctx.Err())
		}
		if !s.itemCurrentLocked(productID, tk) {
			return discarded(OpUpdateQuantity, s.staleReasonLocked())
		}
		if i, found := s.state.IndexOf(productID); found {
			s.state.Items[i].Quantity = qty
		}
		s.recomputeLocked()
		return applied(OpUpdateQuantity)
	})
	return s.finish(ctx, r)
}

// FetchActiveCoupon はユーザーのクーポンを受動的に紐付ける（CouponApplied は false）。
// ユーザーが適用済みのクーポンは置き換えない。
func (s *Session) FetchActiveCoupon(ctx context.Context) Result {
	tk, ok := s.begin(func() ticket { return s.issueCouponLocked() })
	if !ok {
		return s.finish(ctx, rolledBack(OpFetchCoupon, ErrSessionClosed))
	}

	c, err := s.coupons.FetchEligibleCoupon(ctx)

	r := s.settle(func() Result {
		if err != nil {
			return rolledBack(OpFetchCoupon, err)
		}
		if ctx.Err() != nil {
			return discarded(OpFetchCoupon, ctx.Err())
		}
		if !s.couponCurrentLocked(tk) {
			return discarded(OpFetchCoupon, s.staleReasonLocked())
		}
		if s.state.CouponApplied {
			return discarded(OpFetchCoupon, ErrCouponAlreadyApplied)
		}
		s.state.ActiveCoupon = c
		s.state.CouponApplied = false
		s.recomputeLocked()
		return applied(OpFetchCoupon)
	})
	return s.finish(ctx, r)
}

// ApplyCoupon はコードを検証し、成功したらクーポンを丸ごと差し替える。
func (s *Session) ApplyCoupon(ctx context.Context, code string) Result {
	tk, ok := s.begin(func() ticket { return s.issueCouponLocked() })
	if !ok {
		return s.finish(ctx, rolledBack(OpApplyCoupon, ErrSessionClosed))
	}

	c, err := s.coupons.ValidateCode(ctx, code)

	r := s.settle(func() Result {
		if err != nil {
			return rolledBack(OpApplyCoupon, err)
		}
		if ctx.Err() != nil {
			return discarded(OpApplyCoupon, ctx.Err())
		}
		if !s.couponCurrentLocked(tk) {
			return discarded(OpApplyCoupon, s.staleReasonLocked())
		}
		s.state.ActiveCoupon = &c
		s.state.CouponApplied = true
		s.recomputeLocked()
		return applied(OpApplyCoupon)
	})
	return s.finish(ctx, r)
}

// RemoveCoupon はローカルだけ。Authorityには伝えない。
func (s *Session) RemoveCoupon() Result {
	r := s.settle(func() Result {
		if s.closed {
			return rolledBack(OpRemoveCoupon, ErrSessionClosed)
		}
		s.couponSeq++
		s.state.ActiveCoupon = nil
		s.state.CouponApplied = false
		s.recomputeLocked()
		return applied(OpRemoveCoupon)
	})
	return s.finish(context.Background(), r)
}

// Clear はローカルだけ全部空に戻す。Authorityには伝えない。
func (s *Session) Clear() Result {
	r := s.settle(func() Result {
		if s.closed {
			return rolledBack(OpClear, ErrSessionClosed)
		}
		s.epoch++
		s.couponSeq++
		clear(s.itemSeq)
		s.state = model.EmptyCartState()
		return applied(OpClear)
	})
	return s.finish(context.Background(), r)
}

func (s *Session) removeItem(ctx context.Context, op Operation, productID model.ProductID) Result {
	var (
		tk      ticket
		idx     int
		found   bool
		removed model.LineItem
	)

	// 空のIDはAuthority側で「全削除」と解釈されるので送らない
	productID, ok := normalizeID(productID)
	if !ok {
		return s.finish(ctx, rolledBack(op, ErrInvalidProduct))
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return s.finish(ctx, rolledBack(op, ErrSessionClosed))
	}
	tk = s.issueItemLocked(productID)
	idx, found = s.state.IndexOf(productID)
	if found {
		removed = s.state.Items[idx]
		s.state.Items = slices.Delete(slices.Clone(s.state.Items), idx, idx+1)
		s.recomputeLocked()
	}
	s.mu.Unlock()

	err := s.gateway.RemoveItem(ctx, productID)
	if err == nil {
		return s.finish(ctx, applied(op))
	}

	r := s.settle(func() Result {
		// 後続の操作が無いときだけ元に戻す
		if found && s.itemCurrentLocked(productID, tk) {
			if _, again := s.state.IndexOf(productID); !again {
				pos := min(idx, len(s.state.Items))
				s.state.Items = slices.Insert(slices.Clone(s.state.Items), pos, removed)
				s.recomputeLocked()
			}
		}
		return rolledBack(op, err)
	})
	return s.finish(ctx, r)
}

func (s *Session) begin(issue func() ticket) (ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ticket{}, false
	}
	return issue(), true
}

func (s *Session) settle(fn func() Result) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// 通知とログはロックの外で出す
func (s *Session) finish(ctx context.Context, r Result) Result {
	switch r.Status {
	case Applied:
		s.logger.Debug("cart operation applied", zap.String("op", string(r.Op)))
		if n, ok := successNotification(r.Op); ok {
			s.notifier.Notify(n)
		}
	case RolledBack:
		s.logger.Warn("cart operation failed", zap.String("op", string(r.Op)), zap.Error(r.Reason))
		// 呼び出し側が放棄した操作は通知しない
		if ctx.Err() == nil {
			s.notifier.Notify(failureNotification(r.Op, r.Reason))
		}
	case Discarded:
		s.logger.Info("cart response discarded", zap.String("op", string(r.Op)), zap.Error(r.Reason))
	}
	return r
}

func (s *Session) issueItemLocked(id model.ProductID) ticket {
	s.seq++
	s.itemSeq[id] = s.seq
	return ticket{epoch: s.epoch, seq: s.seq}
}

func (s *Session) issueCartLocked() ticket {
	s.seq++
	return ticket{epoch: s.epoch, seq: s.seq}
}

func (s *Session) issueCouponLocked() ticket {
	s.couponSeq++
	return ticket{seq: s.couponSeq}
}

func (s *Session) epochCurrentLocked(tk ticket) bool {
	return !s.closed && s.epoch == tk.epoch
}

func (s *Session) itemCurrentLocked(id model.ProductID, tk ticket) bool {
	return s.epochCurrentLocked(tk) && s.itemSeq[id] == tk.seq
}

// Refreshの後に何も出していなければ最新
func (s *Session) cartCurrentLocked(tk ticket) bool {
	return s.epochCurrentLocked(tk) && s.seq == tk.seq
}

func (s *Session) couponCurrentLocked(tk ticket) bool {
	return !s.closed && s.couponSeq == tk.seq
}

func (s *Session) staleReasonLocked() error {
	if s.closed {
		return ErrSessionClosed
	}
	return ErrStaleResponse
}

func (s *Session) recomputeLocked() {
	pricing.Apply(&s.state)
}

// 同じ商品が複数行で来たらまとめる。数量0以下とIDなしは捨てる。
// 前後の空白はAuthorityでも落とされるので、ローカルでも同じIDに揃える
func normalizeID(id model.ProductID) (model.ProductID, bool) {
	id = model.ProductID(strings.TrimSpace(string(id)))
	return id, id != ""
}

func mergeLines(items []model.LineItem) []model.LineItem {
	out := make([]model.LineItem, 0, len(items))
	pos := make(map[model.ProductID]int, len(items))
	for _, it := range items {
		if it.ID == "" || it.Quantity <= 0 {
			continue
		}
		if i, ok := pos[it.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		pos[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}
