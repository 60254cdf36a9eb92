// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
)

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token. It does not install the
// token; that is the session's job.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	if err := c.do(ctx, "auth: login", http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", &NetworkError{Op: "auth: login", StatusCode: http.StatusOK, Err: errors.New("empty token in response")}
	}
	return resp.Token, nil
}

// --- Products ---

// PageRequest selects a page of a listing. Zero values are left to the backend.
type PageRequest struct {
	Page int
	Size int
	Sort string // e.g. "nome,asc"
}

func (p PageRequest) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		v.Set("size", strconv.Itoa(p.Size))
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
	}
	return v
}

func (c *Client) ListProducts(ctx context.Context, page PageRequest) (*model.Page[model.Product], error) {
	var out model.Page[model.Product]
	if err := c.do(ctx, "products: list", http.MethodGet, "/produtos", page.values(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ErrProductNotFound is returned by FindProduct when no page holds the id.
var ErrProductNotFound = errors.New("product not found")

const findPageSize = 50

// FindProduct walks the listing until it finds id. The backend has no
// single-product endpoint.
func (c *Client) FindProduct(ctx context.Context, id int64) (*model.Product, error) {
	for page := 0; ; page++ {
		p, err := c.ListProducts(ctx, PageRequest{Page: page, Size: findPageSize})
		if err != nil {
			return nil, err
		}
		for i := range p.Content {
			if p.Content[i].ID == id {
				return &p.Content[i], nil
			}
		}
		if len(p.Content) == 0 || p.Last() {
			return nil, errors.Wrapf(ErrProductNotFound, "product #%d", id)
		}
	}
}

// ProductInput is the body of a product-creation request.
type ProductInput struct {
	Name        string          `json:"nome"`
	Description string          `json:"descricao"`
	Price       decimal.Decimal `json:"preco"`
	Stock       int             `json:"quantidadeEstoque"`
}

func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	var out model.Product
	if err := c.do(ctx, "products: create", http.MethodPost, "/produtos", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateStock(ctx context.Context, id int64, quantity int) (*model.Product, error) {
	var out model.Product
	body := struct {
		Quantity int `json:"novaQuantidade"`
	}{quantity}
	if err := c.do(ctx, "products: update stock", http.MethodPatch, fmt.Sprintf("/produtos/%d/estoque", id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, "products: delete", http.MethodDelete, fmt.Sprintf("/produtos/%d", id), nil, nil, nil)
}

// --- Orders ---

func (c *Client) CreateOrder(ctx context.Context, lines []model.OrderLine) (*model.CreatedOrder, error) {
	var out model.CreatedOrder
	body := struct {
		Items []model.OrderLine `json:"itens"`
	}{lines}
	if err := c.do(ctx, "orders: create", http.MethodPost, "/pedidos", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]model.OrderSummary, error) {
	var out []model.OrderSummary
	if err := c.do(ctx, "orders: list", http.MethodGet, "/pedidos", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetOrder(ctx context.Context, id int64) (*model.Order, error) {
	var out model.Order
	if err := c.do(ctx, "orders: get", http.MethodGet, fmt.Sprintf("/pedidos/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.OrderSummary, error) {
	var out model.OrderSummary
	body := struct {
		Status model.OrderStatus `json:"novoStatus"`
	}{status}
	if err := c.do(ctx, "orders: update status", http.MethodPatch, fmt.Sprintf("/pedidos/%d/status", id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Users ---

// UserInput is the body of a user-creation request.
type UserInput struct {
	Name     string     `json:"nome"`
	Email    string     `json:"email"`
	Password string     `json:"senha"`
	Role     model.Role `json:"perfil"`
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var out []model.User
	if err := c.do(ctx, "users: list", http.MethodGet, "/usuarios", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, in UserInput) (*model.User, error) {
	var out model.User
	if err := c.do(ctx, "users: create", http.MethodPost, "/usuarios", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateUserRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	var out model.User
	body := struct {
		Role model.Role `json:"perfil"`
	}{role}
	if err := c.do(ctx, "users: update role", http.MethodPatch, fmt.Sprintf("/usuarios/%d/perfil", id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, "users: delete", http.MethodDelete, fmt.Sprintf("/usuarios/%d", id), nil, nil, nil)
}

// --- Reports ---

func (c *Client) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	var out model.DashboardStats
	if err := c.do(ctx, "dashboard: stats", http.MethodGet, "/dashboard/stats", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
