package model

import "github.com/shopspring/decimal"

// カートの1行。1つのProductIDにつき1行だけ。
type LineItem struct {
	ID       ProductID       `json:"_id"`
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	Price    decimal.Decimal `json:"price"`
	Quantity int64           `json:"quantity"`
}

// price * quantity
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(li.Quantity))
}

// 商品から数量1の明細を作る
func NewLineItem(p Product) LineItem {
	return LineItem{
		ID:       p.ID,
		Name:     p.Name,
		Image:    p.Image,
		Price:    p.Price,
		Quantity: 1,
	}
}
