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
	"net/http"
	"strings"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/inflight"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/validator"
)

const keyLogin = "login"

// loginKey scopes duplicate-submission suppression to one account.
func loginKey(email string) string {
	return keyLogin + ":" + strings.ToLower(email)
}

// loginPageHandler renders the login page (GET /login).
func (fe *frontendServer) loginPageHandler(w http.ResponseWriter, r *http.Request) {
	if fe.session.IsLoading() {
		fe.loadingHandler(w, r)
		return
	}
	if fe.session.IsAuthenticated() {
		http.Redirect(w, r, baseUrl+"/dashboard", http.StatusFound)
		return
	}
	fe.render(w, r, "login", nil)
}

// loginSubmitHandler handles the login form submission (POST /login).
func (fe *frontendServer) loginSubmitHandler(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)
	payload := validator.LoginPayload{
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("senha"),
	}
	if err := payload.Validate(); err != nil {
		fe.renderLoginError(w, r, payload.Email, validator.ValidationErrorResponse(err).Error())
		return
	}

	_, _, err := inflight.Run(fe.inflight, loginKey(payload.Email), func() (struct{}, error) {
		return struct{}{}, fe.session.SignIn(r.Context(), fe.api, payload.Email, payload.Password)
	})
	if err != nil {
		log.WithField("error", err).Warn("login failed")
		fe.renderLoginError(w, r, payload.Email, userMessage(err))
		return
	}

	s, _ := fe.session.Current()
	log.WithField("subject", s.Subject).Info("user logged in successfully")
	fe.flashNotice(w, r, "Login realizado com sucesso!", "/dashboard")
}

func (fe *frontendServer) renderLoginError(w http.ResponseWriter, r *http.Request, email, msg string) {
	fe.renderStatus(w, r, http.StatusUnauthorized, "login", map[string]interface{}{
		"login_error": msg,
		"email":       email,
	})
}

// logoutHandler ends the session and returns to the login page.
func (fe *frontendServer) logoutHandler(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)
	if err := fe.session.Logout(r.Context()); err != nil {
		log.WithField("error", err).Warn("persisted token could not be removed")
	}
	http.Redirect(w, r, baseUrl+"/login", http.StatusFound)
}
