package model

import "github.com/shopspring/decimal"

// クライアントが保持するカートの状態。
// Subtotal/Total は Items と ActiveCoupon から再計算した値しか入らない。
type CartState struct {
	Items         []LineItem      `json:"items"`
	ActiveCoupon  *Coupon         `json:"activeCoupon"`
	CouponApplied bool            `json:"couponApplied"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Total         decimal.Decimal `json:"total"`
}

func EmptyCartState() CartState {
	return CartState{
		Items:    []LineItem{},
		Subtotal: decimal.Zero,
		Total:    decimal.Zero,
	}
}

// 呼び出し側に渡す用のコピー
func (s CartState) Clone() CartState {
	out := s
	out.Items = make([]LineItem, len(s.Items))
	copy(out.Items, s.Items)
	if s.ActiveCoupon != nil {
		c := *s.ActiveCoupon
		out.ActiveCoupon = &c
	}
	return out
}

// ProductIDの明細位置を返す
func (s CartState) IndexOf(id ProductID) (int, bool) {
	for i, it := range s.Items {
		if it.ID == id {
			return i, true
		}
	}
	return -1, false
}
