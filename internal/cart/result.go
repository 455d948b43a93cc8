package cart

import "encoding/json"

type Operation string

const (
	OpRefresh        Operation = "refresh"
	OpAddItem        Operation = "add_item"
	OpRemoveItem     Operation = "remove_item"
	OpUpdateQuantity Operation = "update_quantity"
	OpFetchCoupon    Operation = "fetch_coupon"
	OpApplyCoupon    Operation = "apply_coupon"
	OpRemoveCoupon   Operation = "remove_coupon"
	OpClear          Operation = "clear"
)

type Status int

const (
	// ローカル状態に反映済み
	Applied Status = iota + 1
	// 失敗。ローカル状態は呼び出し前に戻っている（Refreshだけは空に落とす）
	RolledBack
	// 応答が古い/呼び出し側が放棄したので捨てた
	Discarded
)

func (s Status) String() string {
	switch s {
	case Applied:
		return "applied"
	case RolledBack:
		return "rolled_back"
	case Discarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// 1操作の結果
type Result struct {
	Op     Operation
	Status Status
	Reason error
}

func applied(op Operation) Result {
	return Result{Op: op, Status: Applied}
}

func rolledBack(op Operation, reason error) Result {
	return Result{Op: op, Status: RolledBack, Reason: reason}
}

func discarded(op Operation, reason error) Result {
	return Result{Op: op, Status: Discarded, Reason: reason}
}

func (r Result) OK() bool {
	return r.Status == Applied
}

// Applied 以外は理由を返す
func (r Result) Err() error {
	if r.Status == Applied {
		return nil
	}
	return r.Reason
}

type resultJSON struct {
	Op     Operation `json:"op"`
	Status string    `json:"status"`
	Reason string    `json:"reason,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Op: r.Op, Status: r.Status.String()}
	if r.Reason != nil {
		out.Reason = r.Reason.Error()
	}
	return json.Marshal(out)
}
