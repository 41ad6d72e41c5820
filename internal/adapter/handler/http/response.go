package http

import (
	"time"

	"github.com/MikeRez0/ypstorefront/internal/core/domain"
	"github.com/google/uuid"
)

type moneyResp struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func newMoneyResp(m domain.Money) moneyResp {
	return moneyResp{Amount: m.Amount().String(), Currency: string(m.Currency())}
}

type OrderItemResp struct {
	ID          uuid.UUID  `json:"id"`
	ProductID   uuid.UUID  `json:"product_id"`
	VariantID   *uuid.UUID `json:"variant_id,omitempty"`
	ProductName string     `json:"product_name"`
	VariantName string     `json:"variant_name,omitempty"`
	SKU         string     `json:"sku"`
	Quantity    int        `json:"quantity"`
	UnitPrice   moneyResp  `json:"unit_price"`
	LineTotal   moneyResp  `json:"line_total"`
}

type AuditEntryResp struct {
	At     time.Time `json:"at"`
	Actor  string    `json:"actor"`
	Event  string    `json:"event"`
	From   string    `json:"from,omitempty"`
	To     string    `json:"to,omitempty"`
	Reason string    `json:"reason,omitempty"`
}

type OrderResp struct {
	ID              uuid.UUID        `json:"id"`
	Number          string           `json:"number"`
	Status          string           `json:"status"`
	Items           []OrderItemResp  `json:"items"`
	Subtotal        moneyResp        `json:"subtotal"`
	Tax             moneyResp        `json:"tax"`
	Shipping        moneyResp        `json:"shipping"`
	Discount        moneyResp        `json:"discount"`
	Total           moneyResp        `json:"total"`
	ShippingAddress domain.Address   `json:"shipping_address"`
	BillingAddress  domain.Address   `json:"billing_address"`
	CustomerEmail   string           `json:"customer_email"`
	CustomerPhone   string           `json:"customer_phone,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	TrackingNumber  string           `json:"tracking_number,omitempty"`
	ShippingCarrier string           `json:"shipping_carrier,omitempty"`
	ShippedAt       *time.Time       `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time       `json:"delivered_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	History         []AuditEntryResp `json:"history,omitempty"`
}

func newOrderResp(o *domain.Order) OrderResp {
	r := OrderResp{
		ID:              o.ID(),
		Number:          string(o.Number()),
		Status:          string(o.Status()),
		Subtotal:        newMoneyResp(o.Subtotal()),
		Tax:             newMoneyResp(o.TaxAmount()),
		Shipping:        newMoneyResp(o.ShippingAmount()),
		Discount:        newMoneyResp(o.DiscountAmount()),
		Total:           newMoneyResp(o.TotalAmount()),
		ShippingAddress: o.ShippingAddress(),
		BillingAddress:  o.BillingAddress(),
		CustomerEmail:   o.CustomerEmail(),
		CustomerPhone:   o.CustomerPhone(),
		Notes:           o.Notes(),
		TrackingNumber:  o.TrackingNumber(),
		ShippingCarrier: o.ShippingCarrier(),
		ShippedAt:       o.ShippedAt(),
		DeliveredAt:     o.DeliveredAt(),
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
	}

	items := o.Items()
	r.Items = make([]OrderItemResp, 0, len(items))
	for _, item := range items {
		ir := OrderItemResp{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			VariantName: item.VariantName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   newMoneyResp(item.UnitPrice),
		}
		if item.VariantID.Valid {
			v := item.VariantID.UUID
			ir.VariantID = &v
		}
		if total, err := item.LineTotal(); err == nil {
			ir.LineTotal = newMoneyResp(total)
		}
		r.Items = append(r.Items, ir)
	}

	for _, h := range o.History() {
		r.History = append(r.History, AuditEntryResp{
			At:     h.At,
			Actor:  string(h.Actor),
			Event:  h.Event,
			From:   string(h.From),
			To:     string(h.To),
			Reason: h.Reason,
		})
	}
	return r
}

type RefundResp struct {
	Reference string    `json:"reference"`
	Amount    moneyResp `json:"amount"`
	At        time.Time `json:"at"`
}

type PaymentResp struct {
	ID                   uuid.UUID    `json:"id"`
	OrderID              uuid.UUID    `json:"order_id"`
	Reference            string       `json:"reference"`
	Amount               moneyResp    `json:"amount"`
	Method               string       `json:"method"`
	Status               string       `json:"status"`
	GatewayTransactionID string       `json:"gateway_transaction_id,omitempty"`
	ProcessedAt          *time.Time   `json:"processed_at,omitempty"`
	FailedAt             *time.Time   `json:"failed_at,omitempty"`
	FailureReason        string       `json:"failure_reason,omitempty"`
	RefundedAmount       moneyResp    `json:"refunded_amount"`
	Refunds              []RefundResp `json:"refunds,omitempty"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`
}

func newPaymentResp(p *domain.Payment) PaymentResp {
	r := PaymentResp{
		ID:                   p.ID(),
		OrderID:              p.OrderID(),
		Reference:            p.Reference(),
		Amount:               newMoneyResp(p.Amount()),
		Method:               string(p.Method()),
		Status:               string(p.Status()),
		GatewayTransactionID: p.GatewayTransactionID(),
		ProcessedAt:          p.ProcessedAt(),
		FailedAt:             p.FailedAt(),
		FailureReason:        p.FailureReason(),
		RefundedAmount:       newMoneyResp(p.RefundedAmount()),
		CreatedAt:            p.CreatedAt(),
		UpdatedAt:            p.UpdatedAt(),
	}
	for _, refund := range p.Refunds() {
		r.Refunds = append(r.Refunds, RefundResp{
			Reference: refund.Reference,
			Amount:    newMoneyResp(refund.Amount),
			At:        refund.At,
		})
	}
	return r
}
