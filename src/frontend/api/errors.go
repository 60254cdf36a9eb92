package api

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// NetworkError is a transport failure or a 5xx answer. It is transient: the
// caller may re-run the same action.
type NetworkError struct {
	Op         string
	StatusCode int // zero when no response arrived
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: server error (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: backend unavailable: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is a request the backend rejected (4xx). Message is the
// backend's own text and is meant to be shown as is.
type ValidationError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *ValidationError) Error() string { return e.Message }

// errorResponse is the backend's error body.
type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// IsNetwork reports whether err is, or wraps, a *NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsValidation reports whether err is, or wraps, a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UserMessage is the text to show for err. Validation messages pass through
// verbatim; anything else gets a generic transient notice.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if IsNetwork(err) {
		return "Ocorreu um erro de comunicação com a API. Tente novamente."
	}
	return "Ocorreu um erro inesperado."
}

func fallbackMessage(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "Credenciais inválidas."
	case http.StatusForbidden:
		return "Você não tem permissão para realizar esta operação."
	case http.StatusNotFound:
		return "Recurso não encontrado."
	}
	return fmt.Sprintf("Requisição rejeitada (status %d).", code)
}
