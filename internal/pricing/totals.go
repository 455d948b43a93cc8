// Package pricing はカート金額の計算だけを持つ。状態は持たない。
package pricing

import (
	"github.com/sidharth73/mern-e-commerce/internal/domain/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// 再計算結果
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// ComputeTotals は明細とクーポンから小計と合計を出す。
// 数量0以下の明細は数えない。割引率は0〜100に丸める。
func ComputeTotals(items []model.LineItem, coupon *model.Coupon) Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		subtotal = subtotal.Add(it.LineTotal())
	}

	if coupon == nil {
		return Totals{Subtotal: subtotal, Discount: decimal.Zero, Total: subtotal}
	}

	// 100で割るのは小数点シフトで行う（丸めなし）
	discount := subtotal.Mul(ClampPercentage(coupon.DiscountPercentage)).Shift(-2)
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}

// 割引率を [0,100] に収める
func ClampPercentage(p decimal.Decimal) decimal.Decimal {
	if p.IsNegative() {
		return decimal.Zero
	}
	if p.GreaterThan(hundred) {
		return hundred
	}
	return p
}

// 割引率が [0,100] に入っているか
func ValidPercentage(p decimal.Decimal) bool {
	return !p.IsNegative() && !p.GreaterThan(hundred)
}

// state の小計・合計を入れ直す
func Apply(state *model.CartState) {
	t := ComputeTotals(state.Items, state.ActiveCoupon)
	state.Subtotal = t.Subtotal
	state.Total = t.Total
}
