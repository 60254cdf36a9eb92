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

package main

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/api"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/cart"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/inflight"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/money"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/orders"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/session"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/validator"
)

const (
	cookieFlash      = "sales_flash"
	cookieFlashError = "sales_flash_error"
	keyCheckout      = "checkout"
)

var templates = template.Must(template.New("").
	Funcs(template.FuncMap{
		"renderMoney": money.Format,
		"renderDate":  renderDate,
		"statusLabel": func(s model.OrderStatus) string { return s.Label() },
		"roleLabel":   func(r model.Role) string { return r.Label() },
		"add":         func(a, b int) int { return a + b },
	}).ParseGlob("templates/*.html"))

func (fe *frontendServer) rootHandler(w http.ResponseWriter, r *http.Request) {
	if fe.session.IsLoading() {
		fe.loadingHandler(w, r)
		return
	}
	target := "/login"
	if fe.session.IsAuthenticated() {
		target = "/dashboard"
	}
	http.Redirect(w, r, baseUrl+target, http.StatusFound)
}

func (fe *frontendServer) homeHandler(w http.ResponseWriter, r *http.Request) {
	fe.render(w, r, "home", nil)
}

func (fe *frontendServer) productsHandler(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 0 {
		page = 0
	}
	manage := fe.guard.Allowed(model.RoleAdministrator, model.RoleSeller)
	req := api.PageRequest{Page: page, Size: storefrontSize, Sort: storefrontSort}
	if manage {
		req.Size = managementSize
	}
	log.WithFields(logrus.Fields{"page": page, "manage": manage}).Debug("listing products")

	products, err := fe.api.ListProducts(r.Context(), req)
	if err != nil {
		renderHTTPError(log, r, w, errors.Wrap(err, "could not retrieve products"), errorStatus(err))
		return
	}
	fe.render(w, r, "products", map[string]interface{}{
		"manage":    manage,
		"products":  products.Content,
		"page":      products.Number,
		"has_prev":  products.Number > 0,
		"has_next":  !products.Last(),
		"total":     products.TotalElements,
		"cart_size": fe.cart.Count(),
	})
}

func (fe *frontendServer) createProductHandler(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)
	stock, _ := strconv.Atoi(r.FormValue("quantidadeEstoque"))
	payload := validator.ProductPayload{
		Name:        strings.TrimSpace(r.FormValue("nome")),
		Description: strings.TrimSpace(r.FormValue("descricao")),
		Price:       strings.TrimSpace(r.FormValue("preco")),
		Stock:       stock,
	}
	if err := payload.Validate(); err != nil {
		fe.flashError(w, r, validator.ValidationErrorResponse(err), "/produtos")
		return
	}
	p, err := fe.api.CreateProduct(r.Context(), api.ProductInput{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.PriceDecimal(),
		Stock:       payload.Stock,
	})
	if err != nil {
		fe.flashError(w, r, err, "/produtos")
		return
	}
	log.WithField("product_id", p.ID).Info("product created")
	fe.flashNotice(w, r, "Produto criado com sucesso!", "/produtos")
}

func (fe *frontendServer) updateStockHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	qty, err := strconv.Atoi(r.FormValue("novaQuantidade"))
	if err != nil {
		fe.flashError(w, r, errors.New("Quantidade inválida."), "/produtos")
		return
	}
	payload := validator.StockPayload{Quantity: qty}
	if err := payload.Validate(); err != nil {
		fe.flashError(w, r, validator.ValidationErrorResponse(err), "/produtos")
		return
	}
	if _, err := fe.api.UpdateStock(r.Context(), id, payload.Quantity); err != nil {
		fe.flashError(w, r, err, "/produtos")
		return
	}
	requestLogger(r).WithFields(logrus.Fields{"product_id": id, "stock": qty}).Info("stock updated")
	fe.flashNotice(w, r, "Estoque atualizado com sucesso!", "/produtos")
}

func (fe *frontendServer) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := fe.api.DeleteProduct(r.Context(), id); err != nil {
		fe.flashError(w, r, err, "/produtos")
		return
	}
	requestLogger(r).WithField("product_id", id).Info("product deleted")
	fe.flashNotice(w, r, "Produto excluído com sucesso!", "/produtos")
}

func (fe *frontendServer) addToCartHandler(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)
	id, _ := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	quantity := 1
	if v := r.FormValue("quantity"); v != "" {
		quantity, _ = strconv.Atoi(v)
	}
	payload := validator.AddToCartPayload{ProductID: id, Quantity: quantity}
	if err := payload.Validate(); err != nil {
		fe.flashError(w, r, validator.ValidationErrorResponse(err), "/produtos")
		return
	}
	p, err := fe.api.FindProduct(r.Context(), payload.ProductID)
	if err != nil {
		fe.flashError(w, r, err, "/produtos")
		return
	}
	if err := fe.cart.AddItem(r.Context(), *p, payload.Quantity); err != nil {
		fe.flashError(w, r, err, "/produtos")
		return
	}
	log.WithFields(logrus.Fields{"product_id": p.ID, "quantity": payload.Quantity}).Debug("added to cart")
	fe.flashNotice(w, r, fmt.Sprintf("%s adicionado ao carrinho!", p.Name), "/produtos")
}

func (fe *frontendServer) viewCartHandler(w http.ResponseWriter, r *http.Request) {
	fe.render(w, r, "cart", map[string]interface{}{
		"items":        fe.cart.Items(),
		"cart_size":    fe.cart.Count(),
		"total":        fe.cart.Total(),
		"recovered":    fe.cart.Recovered(),
		"checking_out": fe.inflight.Busy(keyCheckout),
	})
}

func (fe *frontendServer) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	qty, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		fe.flashError(w, r, errors.New("Quantidade inválida."), "/carrinho")
		return
	}
	payload := validator.UpdateCartPayload{ProductID: id, Quantity: qty}
	if err := payload.Validate(); err != nil {
		fe.flashError(w, r, validator.ValidationErrorResponse(err), "/carrinho")
		return
	}
	if err := fe.cart.UpdateQuantity(r.Context(), payload.ProductID, payload.Quantity); err != nil {
		fe.flashError(w, r, err, "/carrinho")
		return
	}
	http.Redirect(w, r, baseUrl+"/carrinho", http.StatusFound)
}

func (fe *frontendServer) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	if err := fe.cart.RemoveItem(r.Context(), id); err != nil {
		fe.flashError(w, r, err, "/carrinho")
		return
	}
	http.Redirect(w, r, baseUrl+"/carrinho", http.StatusFound)
}

func (fe *frontendServer) emptyCartHandler(w http.ResponseWriter, r *http.Request) {
	if err := fe.cart.Clear(r.Context()); err != nil {
		fe.flashError(w, r, err, "/carrinho")
		return
	}
	fe.flashNotice(w, r, "Carrinho esvaziado.", "/carrinho")
}

func (fe *frontendServer) placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)
	id, shared, err := inflight.Run(fe.inflight, keyCheckout, func() (int64, error) {
		return fe.cart.Checkout(r.Context(), fe.api)
	})
	if err != nil {
		log.WithField("error", err).Warn("checkout failed")
		fe.flashError(w, r, err, "/carrinho")
		return
	}
	log.WithFields(logrus.Fields{"order_id": id, "shared": shared}).Info("order placed")
	http.Redirect(w, r, fmt.Sprintf("%s/pedido-confirmado/%d", baseUrl, id), http.StatusFound)
}

func (fe *frontendServer) orderConfirmedHandler(w http.ResponseWriter, r *http.Request) {
	fe.render(w, r, "order_confirmed", map[string]interface{}{
		"order_id":   pathID(r),
		"orders_url": fe.ordersURL(),
	})
}

func (fe *frontendServer) ordersHandler(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)
	list, err := fe.orders.List(r.Context())
	if err != nil {
		renderHTTPError(log, r, w, errors.Wrap(err, "could not retrieve orders"), errorStatus(err))
		return
	}
	fe.render(w, r, "orders", map[string]interface{}{
		"orders":     list,
		"detail_url": strings.TrimSuffix(r.URL.Path, "/"),
		"mine":       strings.HasSuffix(r.URL.Path, "/meus-pedidos"),
	})
}

func (fe *frontendServer) orderHandler(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)
	id := pathID(r)
	o, err := fe.orders.Get(r.Context(), id)
	if err != nil {
		renderHTTPError(log, r, w, errors.Wrapf(err, "could not retrieve order #%d", id), errorStatus(err))
		return
	}
	fe.render(w, r, "order", map[string]interface{}{
		"order":       o,
		"transitions": fe.orders.AvailableTransitions(*o),
		"back_url":    fe.ordersURL(),
		"busy":        fe.inflight.Busy(orderKey(id)),
	})
}

func (fe *frontendServer) orderStatusHandler(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)
	id := pathID(r)
	back := fmt.Sprintf("/pedidos/%d", id)
	payload := validator.StatusPayload{Status: r.FormValue("novoStatus")}
	if err := payload.Validate(); err != nil {
		fe.flashError(w, r, validator.ValidationErrorResponse(err), back)
		return
	}
	next := model.OrderStatus(payload.Status)
	_, _, err := inflight.Run(fe.inflight, orderKey(id), func() (*model.Order, error) {
		return fe.orders.Transition(r.Context(), id, next)
	})
	if errors.Is(err, orders.ErrRefreshFailed) {
		log.WithFields(logrus.Fields{"order_id": id, "error": err}).Warn("status changed, reload failed")
		fe.flashNotice(w, r, userMessage(err), back)
		return
	}
	if err != nil {
		log.WithFields(logrus.Fields{"order_id": id, "error": err}).Warn("status change failed")
		fe.flashError(w, r, err, back)
		return
	}
	fe.flashNotice(w, r, "Status alterado com sucesso!", back)
}

func (fe *frontendServer) loadingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusServiceUnavailable)
	if err := templates.ExecuteTemplate(w, "loading", injectCommonTemplateData(r, nil)); err != nil {
		requestLogger(r).Error(err)
	}
}

func (fe *frontendServer) deniedHandler(w http.ResponseWriter, r *http.Request) {
	requestLogger(r).WithField("roles", fe.session.Roles().Slice()).Info("access denied")
	fe.renderStatus(w, r, http.StatusForbidden, "denied", nil)
}

func (fe *frontendServer) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	renderHTTPError(requestLogger(r), r, w, errors.Errorf("no route for %s", r.URL.Path), http.StatusNotFound)
}

// ordersURL is the order listing for the current role.
func (fe *frontendServer) ordersURL() string {
	if fe.session.Roles().IsManager() {
		return baseUrl + "/pedidos"
	}
	return baseUrl + "/meus-pedidos"
}

// render executes a page template with the common data and any pending
// flash messages.
func (fe *frontendServer) render(w http.ResponseWriter, r *http.Request, name string, payload map[string]interface{}) {
	fe.renderStatus(w, r, http.StatusOK, name, payload)
}

func (fe *frontendServer) renderStatus(w http.ResponseWriter, r *http.Request, code int, name string, payload map[string]interface{}) {
	data := fe.commonData(r, payload)
	if msg := popFlash(w, r, cookieFlash); msg != "" {
		data["flash"] = msg
	}
	if msg := popFlash(w, r, cookieFlashError); msg != "" {
		data["flash_error"] = msg
	}
	if code != http.StatusOK {
		w.WriteHeader(code)
	}
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		requestLogger(r).Error(err)
	}
}

func (fe *frontendServer) commonData(r *http.Request, payload map[string]interface{}) map[string]interface{} {
	data := injectCommonTemplateData(r, payload)
	if s, ok := fe.session.Current(); ok {
		data["logged_in"] = true
		data["username"] = s.Name
		data["roles"] = s.Roles.Slice()
		data["is_manager"] = s.Roles.IsManager()
		data["is_admin"] = s.Roles.Has(model.RoleAdministrator)
		data["is_customer"] = s.Roles.Has(model.RoleCustomer)
	}
	if _, ok := data["cart_size"]; !ok {
		data["cart_size"] = fe.cart.Count()
	}
	return data
}

func (fe *frontendServer) flashNotice(w http.ResponseWriter, r *http.Request, msg, path string) {
	setFlash(w, cookieFlash, msg)
	http.Redirect(w, r, baseUrl+path, http.StatusFound)
}

func (fe *frontendServer) flashError(w http.ResponseWriter, r *http.Request, err error, path string) {
	setFlash(w, cookieFlashError, userMessage(err))
	http.Redirect(w, r, baseUrl+path, http.StatusFound)
}

// userMessage is the text shown for err.
func userMessage(err error) string {
	var de *session.DecodeError
	switch {
	case errors.Is(err, orders.ErrNotPermitted):
		return "Você não tem permissão para alterar o status deste pedido."
	case errors.Is(err, orders.ErrTerminalStatus):
		return "Este pedido já foi finalizado ou cancelado."
	case errors.Is(err, orders.ErrInvalidTransition):
		return "Transição de status não permitida."
	case errors.Is(err, orders.ErrRefreshFailed):
		return "Status alterado com sucesso, mas não foi possível recarregar o pedido."
	case errors.Is(err, cart.ErrEmptyCart):
		return "Seu carrinho está vazio."
	case errors.Is(err, cart.ErrInvalidQuantity):
		return "A quantidade deve ser pelo menos 1."
	case errors.Is(err, api.ErrProductNotFound):
		return "Produto não encontrado."
	case errors.As(err, &de):
		return "Não foi possível validar a sessão. Faça login novamente."
	case api.IsValidation(err), api.IsNetwork(err):
		return api.UserMessage(err)
	}
	return err.Error()
}

// errorStatus maps a backend error to the status of the error page.
func errorStatus(err error) int {
	var ve *api.ValidationError
	if errors.As(err, &ve) {
		return ve.StatusCode
	}
	return http.StatusBadGateway
}

func renderHTTPError(log logrus.FieldLogger, r *http.Request, w http.ResponseWriter, err error, code int) {
	log.WithField("error", err).Error("request error")

	w.WriteHeader(code)

	if templateErr := templates.ExecuteTemplate(w, "error", injectCommonTemplateData(r, map[string]interface{}{
		"error":       userMessage(errors.Cause(err)),
		"status_code": code,
		"status":      http.StatusText(code),
	})); templateErr != nil {
		log.Println(templateErr)
	}
}

func injectCommonTemplateData(r *http.Request, payload map[string]interface{}) map[string]interface{} {
	data := map[string]interface{}{
		"request_id":  r.Context().Value(ctxKeyRequestID{}),
		"currentYear": time.Now().Year(),
		"baseUrl":     baseUrl,
	}

	for k, v := range payload {
		data[k] = v
	}

	return data
}

func setFlash(w http.ResponseWriter, name, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		HttpOnly: true,
	})
}

func popFlash(w http.ResponseWriter, r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: name, Value: "", Path: "/", MaxAge: -1})
	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return ""
	}
	return string(b)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func orderKey(id int64) string { return "order:" + strconv.FormatInt(id, 10) }

func renderDate(t model.Timestamp) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("02/01/2006 15:04")
}
