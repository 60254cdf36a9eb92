package main

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/api"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/validator"
)

func (fe *frontendServer) usersHandler(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)
	users, err := fe.api.ListUsers(r.Context())
	if err != nil {
		renderHTTPError(log, r, w, errors.Wrap(err, "could not retrieve users"), errorStatus(err))
		return
	}
	fe.render(w, r, "users", map[string]interface{}{
		"users":     users,
		"all_roles": model.Roles(),
	})
}

func (fe *frontendServer) createUserHandler(w http.ResponseWriter, r *http.Request) {
	payload := validator.UserPayload{
		Name:     strings.TrimSpace(r.FormValue("nome")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		Password: r.FormValue("senha"),
		Role:     r.FormValue("perfil"),
	}
	if err := payload.Validate(); err != nil {
		fe.flashError(w, r, validator.ValidationErrorResponse(err), "/usuarios")
		return
	}
	role, _ := model.ParseRole(payload.Role)
	u, err := fe.api.CreateUser(r.Context(), api.UserInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		Role:     role,
	})
	if err != nil {
		fe.flashError(w, r, err, "/usuarios")
		return
	}
	requestLogger(r).WithField("user_id", u.ID).Info("user created")
	fe.flashNotice(w, r, "Usuário criado com sucesso!", "/usuarios")
}

func (fe *frontendServer) updateUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	payload := validator.UserRolePayload{Role: r.FormValue("perfil")}
	if err := payload.Validate(); err != nil {
		fe.flashError(w, r, validator.ValidationErrorResponse(err), "/usuarios")
		return
	}
	role, _ := model.ParseRole(payload.Role)
	if _, err := fe.api.UpdateUserRole(r.Context(), id, role); err != nil {
		fe.flashError(w, r, err, "/usuarios")
		return
	}
	requestLogger(r).WithFields(logrus.Fields{"user_id": id, "role": role}).Info("user role changed")
	fe.flashNotice(w, r, "Perfil atualizado com sucesso!", "/usuarios")
}

func (fe *frontendServer) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if err := fe.api.DeleteUser(r.Context(), id); err != nil {
		fe.flashError(w, r, err, "/usuarios")
		return
	}
	requestLogger(r).WithField("user_id", id).Info("user deleted")
	fe.flashNotice(w, r, "Usuário excluído com sucesso!", "/usuarios")
}

func (fe *frontendServer) reportsHandler(w http.ResponseWriter, r *http.Request) {
	log := requestLogger(r)
	stats, err := fe.api.DashboardStats(r.Context())
	if err != nil {
		renderHTTPError(log, r, w, errors.Wrap(err, "could not retrieve report"), errorStatus(err))
		return
	}
	fe.render(w, r, "reports", map[string]interface{}{
		"stats": stats,
	})
}
