package cart

import "sync"

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

const fallbackMessage = "An error occurred"

// 失敗時の既定文言
var failureMessages = map[Operation]string{
	OpRefresh:        fallbackMessage,
	OpAddItem:        fallbackMessage,
	OpRemoveItem:     fallbackMessage,
	OpUpdateQuantity: fallbackMessage,
	OpFetchCoupon:    "Failed to fetch coupon",
	OpApplyCoupon:    "Failed to apply coupon",
}

// 成功を通知する操作（読み取り系は通知しない）
var successMessages = map[Operation]string{
	OpAddItem:      "Product added to cart",
	OpApplyCoupon:  "Coupon applied successfully",
	OpRemoveCoupon: "Coupon removed",
}

type Notification struct {
	Level   Level     `json:"level"`
	Op      Operation `json:"op"`
	Message string    `json:"message"`
}

// 画面側への通知口
type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}

// 通知をためておき、Drainでまとめて取り出す
type Buffer struct {
	mu    sync.Mutex
	items []Notification
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Notify(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
}

func (b *Buffer) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	if out == nil {
		return []Notification{}
	}
	return out
}

func failureNotification(op Operation, err error) Notification {
	fallback, ok := failureMessages[op]
	if !ok {
		fallback = fallbackMessage
	}
	return Notification{Level: LevelError, Op: op, Message: MessageFor(err, fallback)}
}

func successNotification(op Operation) (Notification, bool) {
	msg, ok := successMessages[op]
	if !ok {
		return Notification{}, false
	}
	return Notification{Level: LevelSuccess, Op: op, Message: msg}, true
}
