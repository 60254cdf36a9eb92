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
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/profiler"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/access"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/api"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/cart"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/inflight"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/orders"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/session"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/storage"
)

const (
	port             = "8080"
	defaultStorePath = "./.salesclient.json"
	storefrontSize   = 9
	storefrontSort   = "nome,asc"
	managementSize   = 20
)

var (
	baseUrl = ""

	managers = model.NewRoleSet(model.RoleAdministrator, model.RoleSeller)
	admins   = model.NewRoleSet(model.RoleAdministrator)
)

// frontendServer is the web console of a single operator. Session and cart
// belong to the process, like they would to a browser tab.
type frontendServer struct {
	api      *api.Client
	store    storage.Store
	session  *session.Store
	cart     *cart.Cart
	orders   *orders.Client
	guard    *access.Guard
	inflight *inflight.Guard
}

func newFrontendServer(ctx context.Context, client *api.Client, store storage.Store, log logrus.FieldLogger) *frontendServer {
	sess := session.NewStore(store, client, log.WithField("component", "session"))
	return &frontendServer{
		api:      client,
		store:    store,
		session:  sess,
		cart:     cart.New(ctx, store, log.WithField("component", "cart")),
		orders:   orders.NewClient(client, sess, log.WithField("component", "orders")),
		guard:    access.NewGuard(sess),
		inflight: inflight.New(),
	}
}

func main() {
	ctx := context.Background()
	log := logrus.New()
	log.Level = logrus.DebugLevel
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	log.Out = os.Stdout

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{}, propagation.Baggage{}))

	baseUrl = os.Getenv("BASE_URL")

	if os.Getenv("ENABLE_TRACING") == "1" {
		log.Info("Tracing enabled.")
		tp := initTracing(log)
		defer tp.Shutdown(ctx)
	} else {
		log.Info("Tracing disabled.")
	}

	if os.Getenv("ENABLE_PROFILER") == "1" {
		log.Info("Profiling enabled.")
		go initProfiling(log, "sales-console", "1.0.0")
	} else {
		log.Info("Profiling disabled.")
	}

	srvPort := port
	if os.Getenv("PORT") != "" {
		srvPort = os.Getenv("PORT")
	}
	addr := os.Getenv("LISTEN_ADDR")

	var apiBaseURL string
	mustMapEnv(&apiBaseURL, "API_BASE_URL")
	timeout := 10 * time.Second
	if v := os.Getenv("API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid API_TIMEOUT %q: %v", v, err)
		}
		timeout = d
	}
	client, err := api.New(apiBaseURL, api.WithTimeout(timeout))
	if err != nil {
		log.Fatal(err)
	}

	storeCfg := storage.Config{
		Backend:     os.Getenv("STORE_BACKEND"),
		Path:        os.Getenv("STORE_PATH"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPrefix: os.Getenv("REDIS_PREFIX"),
	}
	if storeCfg.Path == "" {
		storeCfg.Path = defaultStorePath
	}
	store, err := storage.Open(storeCfg)
	if err != nil {
		log.Fatal(err)
	}
	log.WithField("backend", storeCfg.Backend).Info("client storage opened")

	svc := newFrontendServer(ctx, client, store, log)
	if svc.cart.Recovered() {
		log.Warn("persisted cart could not be read and was reset")
	}
	// Pages answer with the loading view until this finishes.
	go svc.session.Restore(ctx)

	var handler http.Handler = svc.routes()
	handler = &logHandler{log: log, session: svc.session, next: handler} // add logging
	handler = otelhttp.NewHandler(handler, "sales-console")               // add OTel tracing

	log.Infof("starting server on %s:%s", addr, srvPort)
	log.Fatal(http.ListenAndServe(addr+":"+srvPort, handler))
}

func (fe *frontendServer) routes() *mux.Router {
	mw := access.NewMiddleware(fe.guard, baseUrl+"/login", access.Views{
		Loading: http.HandlerFunc(fe.loadingHandler),
		Denied:  http.HandlerFunc(fe.deniedHandler),
	})
	authed := func(h http.HandlerFunc) http.Handler { return mw.RequireSession(h) }
	only := func(roles model.RoleSet, h http.HandlerFunc) http.Handler { return mw.RequireRoles(roles)(h) }

	r := mux.NewRouter()
	r.HandleFunc(baseUrl+"/", fe.rootHandler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(baseUrl+"/login", fe.loginPageHandler).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc(baseUrl+"/login", fe.loginSubmitHandler).Methods(http.MethodPost)
	r.HandleFunc(baseUrl+"/logout", fe.logoutHandler).Methods(http.MethodGet, http.MethodPost)

	r.Handle(baseUrl+"/dashboard", authed(fe.homeHandler)).Methods(http.MethodGet, http.MethodHead)
	r.Handle(baseUrl+"/produtos", authed(fe.productsHandler)).Methods(http.MethodGet, http.MethodHead)
	r.Handle(baseUrl+"/produtos", only(managers, fe.createProductHandler)).Methods(http.MethodPost)
	r.Handle(baseUrl+"/produtos/{id:[0-9]+}/estoque", only(managers, fe.updateStockHandler)).Methods(http.MethodPost)
	r.Handle(baseUrl+"/produtos/{id:[0-9]+}/excluir", only(managers, fe.deleteProductHandler)).Methods(http.MethodPost)

	r.Handle(baseUrl+"/carrinho", authed(fe.viewCartHandler)).Methods(http.MethodGet, http.MethodHead)
	r.Handle(baseUrl+"/carrinho", authed(fe.addToCartHandler)).Methods(http.MethodPost)
	r.Handle(baseUrl+"/carrinho/atualizar", authed(fe.updateCartItemHandler)).Methods(http.MethodPost)
	r.Handle(baseUrl+"/carrinho/remover", authed(fe.removeCartItemHandler)).Methods(http.MethodPost)
	r.Handle(baseUrl+"/carrinho/limpar", authed(fe.emptyCartHandler)).Methods(http.MethodPost)
	r.Handle(baseUrl+"/carrinho/finalizar", authed(fe.placeOrderHandler)).Methods(http.MethodPost)
	r.Handle(baseUrl+"/pedido-confirmado/{id:[0-9]+}", authed(fe.orderConfirmedHandler)).Methods(http.MethodGet, http.MethodHead)

	r.Handle(baseUrl+"/pedidos", only(managers, fe.ordersHandler)).Methods(http.MethodGet, http.MethodHead)
	r.Handle(baseUrl+"/pedidos/{id:[0-9]+}", only(managers, fe.orderHandler)).Methods(http.MethodGet, http.MethodHead)
	r.Handle(baseUrl+"/pedidos/{id:[0-9]+}/status", only(managers, fe.orderStatusHandler)).Methods(http.MethodPost)
	r.Handle(baseUrl+"/meus-pedidos", authed(fe.ordersHandler)).Methods(http.MethodGet, http.MethodHead)
	r.Handle(baseUrl+"/meus-pedidos/{id:[0-9]+}", authed(fe.orderHandler)).Methods(http.MethodGet, http.MethodHead)

	r.Handle(baseUrl+"/usuarios", only(admins, fe.usersHandler)).Methods(http.MethodGet, http.MethodHead)
	r.Handle(baseUrl+"/usuarios", only(admins, fe.createUserHandler)).Methods(http.MethodPost)
	r.Handle(baseUrl+"/usuarios/{id:[0-9]+}/perfil", only(admins, fe.updateUserRoleHandler)).Methods(http.MethodPost)
	r.Handle(baseUrl+"/usuarios/{id:[0-9]+}/excluir", only(admins, fe.deleteUserHandler)).Methods(http.MethodPost)
	r.Handle(baseUrl+"/relatorios", only(admins, fe.reportsHandler)).Methods(http.MethodGet, http.MethodHead)

	r.HandleFunc(baseUrl+"/robots.txt", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "User-agent: *\nDisallow: /") })
	r.HandleFunc(baseUrl+"/_healthz", func(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, "ok") })
	r.NotFoundHandler = http.HandlerFunc(fe.notFoundHandler)
	return r
}

func initTracing(log logrus.FieldLogger) *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	otel.SetTracerProvider(tp)
	log.Info("tracer provider installed without exporter")
	return tp
}

const profilerAttempts = 3

func initProfiling(log logrus.FieldLogger, service, version string) {
	for attempt := 1; attempt <= profilerAttempts; attempt++ {
		err := profiler.Start(profiler.Config{Service: service, ServiceVersion: version})
		if err == nil {
			log.WithField("service", service).Info("cloud profiler started")
			return
		}
		wait := time.Duration(attempt) * 10 * time.Second
		log.WithFields(logrus.Fields{"attempt": attempt, "retry_in": wait, "error": err}).Warn("cloud profiler did not start")
		if attempt < profilerAttempts {
			time.Sleep(wait)
		}
	}
	log.Warn("giving up on cloud profiler")
}

func mustMapEnv(target *string, envKey string) {
	v := os.Getenv(envKey)
	if v == "" {
		panic(fmt.Sprintf("environment variable %q not set", envKey))
	}
	*target = v
}
