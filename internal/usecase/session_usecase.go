package usecase

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sidharth73/mern-e-commerce/internal/cart"
	"github.com/sidharth73/mern-e-commerce/internal/domain/model"
	"github.com/sidharth73/mern-e-commerce/internal/logging"
)

// セッションごとのAuthority接続（cookie jarをセッション単位で分ける）
type Gateways struct {
	Cart    cart.CartGateway
	Coupons cart.CouponGateway
}

// tokenはセッション作成時に渡されたBearer（空なら既定）
type GatewayFactory func(token string) Gateways

// 画面に返す形
type SessionView struct {
	SessionID     string              `json:"sessionId"`
	Cart          model.CartState     `json:"cart"`
	Result        *cart.Result        `json:"result,omitempty"`
	Notifications []cart.Notification `json:"notifications"`
}

// 最後の操作からこれだけ経ったセッションは次の Create で破棄する
const DefaultSessionIdleTimeout = 30 * time.Minute

type sessionEntry struct {
	// 同じセッションへの操作はここで直列化する
	mu      sync.Mutex
	session *cart.Session
	buf     *cart.Buffer
	// 最終利用時刻（UnixNano）。掃除は登録簿のロックだけで読む
	lastUsed atomic.Int64
}

func (e *sessionEntry) touch(now time.Time) {
	e.lastUsed.Store(now.UnixNano())
}

func (e *sessionEntry) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, e.lastUsed.Load()))
}

// SessionUsecase は cart.Session の登録簿（cartd用）
type SessionUsecase struct {
	newGateways GatewayFactory
	resolverOpt []cart.ResolverOption
	logger      *zap.Logger
	newID       func() string
	now         func() time.Time
	idleTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type SessionOption func(*SessionUsecase)

func WithSessionResolverOptions(opts ...cart.ResolverOption) SessionOption {
	return func(u *SessionUsecase) { u.resolverOpt = append(u.resolverOpt, opts...) }
}

func WithSessionIDGenerator(fn func() string) SessionOption {
	return func(u *SessionUsecase) {
		if fn != nil {
			u.newID = fn
		}
	}
}

// 0以下なら期限切れの掃除をしない（Closeだけで破棄）
func WithSessionIdleTimeout(d time.Duration) SessionOption {
	return func(u *SessionUsecase) { u.idleTimeout = d }
}

func WithSessionClock(now func() time.Time) SessionOption {
	return func(u *SessionUsecase) {
		if now != nil {
			u.now = now
		}
	}
}

func NewSessionUsecase(factory GatewayFactory, logger *zap.Logger, opts ...SessionOption) *SessionUsecase {
	logger = logging.OrNop(logger)
	u := &SessionUsecase{
		newGateways: factory,
		logger:      logger,
		newID:       uuid.NewString,
		now:         time.Now,
		idleTimeout: DefaultSessionIdleTimeout,
		sessions:    make(map[string]*sessionEntry),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Create は空のカートでセッションを開始する
func (u *SessionUsecase) Create(token string) SessionView {
	now := u.now()
	u.sweepIdle(now)

	gw := u.newGateways(strings.TrimSpace(token))
	buf := cart.NewBuffer()
	id := u.newID()
	logger := u.logger.With(zap.String("cart_session", id))

	resolverOpts := append([]cart.ResolverOption{cart.WithResolverLogger(u.logger)}, u.resolverOpt...)
	s := cart.NewSession(id, gw.Cart, cart.NewCouponResolver(gw.Coupons, resolverOpts...),
		cart.WithNotifier(cart.NotifierFunc(func(n cart.Notification) {
			logger.Debug("cart notification",
				zap.String("level", string(n.Level)),
				zap.String("op", string(n.Op)),
				zap.String("message", n.Message),
			)
			buf.Notify(n)
		})),
		cart.WithLogger(u.logger),
	)
	entry := &sessionEntry{session: s, buf: buf}
	entry.touch(now)

	u.mu.Lock()
	u.sessions[id] = entry
	u.mu.Unlock()

	u.logger.Info("cart session created", zap.String("cart_session", id))
	return SessionView{SessionID: id, Cart: s.Snapshot(), Notifications: []cart.Notification{}}
}

// Close はセッションを破棄する。実行中の操作の応答は捨てられる
func (u *SessionUsecase) Close(id string) error {
	u.mu.Lock()
	entry, ok := u.sessions[id]
	delete(u.sessions, id)
	u.mu.Unlock()
	if !ok {
		return errSessionNotFound()
	}

	// 実行中の操作は待たない
	entry.session.Close()
	u.logger.Info("cart session closed", zap.String("cart_session", id))
	return nil
}

func (u *SessionUsecase) Len() int {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.sessions)
}

func (u *SessionUsecase) View(id string) (SessionView, error) {
	entry, err := u.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.touch(u.now())
	return SessionView{
		SessionID:     id,
		Cart:          entry.session.Snapshot(),
		Notifications: entry.buf.Drain(),
	}, nil
}

func (u *SessionUsecase) Refresh(ctx context.Context, id string) (SessionView, error) {
	return u.run(id, func(s *cart.Session) cart.Result { return s.Refresh(ctx) })
}

func (u *SessionUsecase) AddItem(ctx context.Context, id string, p model.Product) (SessionView, error) {
	return u.run(id, func(s *cart.Session) cart.Result { return s.AddItem(ctx, p) })
}

func (u *SessionUsecase) RemoveItem(ctx context.Context, id string, productID model.ProductID) (SessionView, error) {
	return u.run(id, func(s *cart.Session) cart.Result { return s.RemoveItem(ctx, productID) })
}

func (u *SessionUsecase) UpdateQuantity(ctx context.Context, id string, productID model.ProductID, qty int64) (SessionView, error) {
	return u.run(id, func(s *cart.Session) cart.Result { return s.UpdateQuantity(ctx, productID, qty) })
}

func (u *SessionUsecase) Clear(id string) (SessionView, error) {
	return u.run(id, func(s *cart.Session) cart.Result { return s.Clear() })
}

func (u *SessionUsecase) FetchCoupon(ctx context.Context, id string) (SessionView, error) {
	return u.run(id, func(s *cart.Session) cart.Result { return s.FetchActiveCoupon(ctx) })
}

func (u *SessionUsecase) ApplyCoupon(ctx context.Context, id string, code string) (SessionView, error) {
	return u.run(id, func(s *cart.Session) cart.Result { return s.ApplyCoupon(ctx, code) })
}

func (u *SessionUsecase) RemoveCoupon(id string) (SessionView, error) {
	return u.run(id, func(s *cart.Session) cart.Result { return s.RemoveCoupon() })
}

func (u *SessionUsecase) run(id string, op func(s *cart.Session) cart.Result) (SessionView, error) {
	entry, err := u.lookup(id)
	if err != nil {
		return SessionView{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.touch(u.now())

	res := op(entry.session)
	entry.touch(u.now())
	return SessionView{
		SessionID:     id,
		Cart:          entry.session.Snapshot(),
		Result:        &res,
		Notifications: entry.buf.Drain(),
	}, nil
}

// 放置されたセッションを破棄する。実行中の操作があっても待たない
func (u *SessionUsecase) sweepIdle(now time.Time) {
	if u.idleTimeout <= 0 {
		return
	}

	var expired []*sessionEntry
	u.mu.Lock()
	for id, entry := range u.sessions {
		if entry.idleSince(now) >= u.idleTimeout {
			delete(u.sessions, id)
			expired = append(expired, entry)
		}
	}
	u.mu.Unlock()

	for _, entry := range expired {
		entry.session.Close()
		u.logger.Info("cart session expired", zap.String("cart_session", entry.session.ID()))
	}
}

func (u *SessionUsecase) lookup(id string) (*sessionEntry, error) {
	u.mu.RLock()
	entry, ok := u.sessions[id]
	u.mu.RUnlock()
	if !ok {
		return nil, errSessionNotFound()
	}
	return entry, nil
}

func errSessionNotFound() error {
	return NewHTTPError(http.StatusNotFound, "Session not found")
}
