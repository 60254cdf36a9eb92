// Package model holds the wire types shared by the API client, the cart and
// the views. JSON names follow the backend's DTOs.
package model

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// timestampLayouts are tried in order. The backend sends local date-times
// without a zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Timestamp is a backend date-time, with or without a zone.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return errors.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// Product represents a product in the catalog.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"nome"`
	Description string          `json:"descricao,omitempty"`
	Price       decimal.Decimal `json:"preco"`
	Stock       int             `json:"quantidadeEstoque"`
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// Last reports whether no further page follows this one.
func (p *Page[T]) Last() bool { return p.Number+1 >= p.TotalPages }

// User is an account as seen by an administrator.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"nome"`
	Email     string    `json:"email"`
	Role      Role      `json:"perfil"`
	CreatedAt Timestamp `json:"dataCriacao"`
}

// TopProduct is one row of the best-sellers report.
type TopProduct struct {
	ProductName string `json:"nomeProduto"`
	TotalSold   int64  `json:"totalVendido"`
}

// ActiveCustomer is one row of the most-active-customers report.
type ActiveCustomer struct {
	CustomerName string `json:"nomeCliente"`
	TotalOrders  int64  `json:"totalPedidos"`
}

// DashboardStats are the aggregate reporting figures.
type DashboardStats struct {
	Revenue       decimal.Decimal  `json:"faturamentoTotal"`
	TotalOrders   int64            `json:"totalPedidos"`
	PendingOrders int64            `json:"pedidosPendentes"`
	TopProducts   []TopProduct     `json:"topProdutos"`
	TopCustomers  []ActiveCustomer `json:"topClientes"`
}
