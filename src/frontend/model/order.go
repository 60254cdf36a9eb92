package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPendingApproval OrderStatus = "PENDENTE_APROVACAO"
	OrderStatusInProgress      OrderStatus = "EM_ANDAMENTO"
	OrderStatusFinished        OrderStatus = "FINALIZADO"
	OrderStatusCanceled        OrderStatus = "CANCELADO"
)

// OrderStatuses lists every status in lifecycle order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPendingApproval,
		OrderStatusInProgress,
		OrderStatusFinished,
		OrderStatusCanceled,
	}
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPendingApproval, OrderStatusInProgress, OrderStatusFinished, OrderStatusCanceled:
		return true
	}
	return false
}

// Terminal statuses accept no further transition.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusFinished || s == OrderStatusCanceled
}

// Label is the human form, e.g. "PENDENTE APROVACAO".
func (s OrderStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// OrderItem is a line of a placed order. Name and price are snapshots taken
// by the backend at creation time.
type OrderItem struct {
	ProductID   int64           `json:"id"`
	ProductName string          `json:"nomeProduto"`
	Quantity    int             `json:"quantidade"`
	UnitPrice   decimal.Decimal `json:"precoUnitario"`
}

// Subtotal is UnitPrice × Quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the full detail of an order. It is owned by the backend.
type Order struct {
	ID            int64           `json:"id"`
	CustomerName  string          `json:"nomeCliente"`
	CustomerEmail string          `json:"emailCliente"`
	Status        OrderStatus     `json:"status"`
	Total         decimal.Decimal `json:"valorTotal"`
	CreatedAt     Timestamp       `json:"dataCriacao"`
	Items         []OrderItem     `json:"itens"`
}

// OrderSummary is the listing shape of an order.
type OrderSummary struct {
	ID           int64           `json:"id"`
	CreatedAt    Timestamp       `json:"dataCriacao"`
	Total        decimal.Decimal `json:"valorTotal"`
	Status       OrderStatus     `json:"statusPedido"`
	CustomerName string          `json:"nomeCliente"`
}

// OrderLine is one entry of an order-creation request.
type OrderLine struct {
	ProductID int64 `json:"produtoId"`
	Quantity  int   `json:"quantidade"`
}

// CreatedOrder is the backend's answer to an order-creation request.
type CreatedOrder struct {
	ID     int64           `json:"id"`
	Status OrderStatus     `json:"status,omitempty"`
	Total  decimal.Decimal `json:"valorTotal"`
}
