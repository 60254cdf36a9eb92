package validator

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloads(t *testing.T) {
	tests := []struct {
		name  string
		p     Payload
		valid bool
	}{
		{"login ok", &LoginPayload{Email: "ana@loja.com", Password: "x"}, true},
		{"login bad email", &LoginPayload{Email: "ana", Password: "x"}, false},
		{"login no password", &LoginPayload{Email: "ana@loja.com"}, false},
		{"add ok", &AddToCartPayload{ProductID: 1, Quantity: 2}, true},
		{"add zero", &AddToCartPayload{ProductID: 1, Quantity: 0}, false},
		{"update zero", &UpdateCartPayload{ProductID: 1, Quantity: 0}, true},
		{"update negative", &UpdateCartPayload{ProductID: 1, Quantity: -1}, false},
		{"product ok", &ProductPayload{Name: "Caneta", Price: "2,50", Stock: 10}, true},
		{"product free", &ProductPayload{Name: "Caneta", Price: "0"}, false},
		{"product bad price", &ProductPayload{Name: "Caneta", Price: "abc"}, false},
		{"stock negative", &StockPayload{Quantity: -3}, false},
		{"user ok", &UserPayload{Name: "Bia", Email: "bia@loja.com", Password: "123456", Role: "VENDEDOR"}, true},
		{"user prefixed role", &UserPayload{Name: "Bia", Email: "bia@loja.com", Password: "123456", Role: "ROLE_CLIENTE"}, true},
		{"user unknown role", &UserPayload{Name: "Bia", Email: "bia@loja.com", Password: "123456", Role: "GERENTE"}, false},
		{"user short password", &UserPayload{Name: "Bia", Email: "bia@loja.com", Password: "123", Role: "CLIENTE"}, false},
		{"role ok", &UserRolePayload{Role: "ADMINISTRADOR"}, true},
		{"status ok", &StatusPayload{Status: "CANCELADO"}, true},
		{"status unknown", &StatusPayload{Status: "ENVIADO"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPriceDecimal(t *testing.T) {
	p := &ProductPayload{Name: "Caneta", Price: "2,50"}
	require.NoError(t, p.Validate())
	assert.Equal(t, "2.5", p.PriceDecimal().String())
}

func TestValidationErrorResponse(t *testing.T) {
	err := (&LoginPayload{Email: "nope"}).Validate()
	msg := ValidationErrorResponse(err).Error()
	assert.Contains(t, msg, "Campo 'email' inválido: e-mail inválido")
	assert.Contains(t, msg, "Campo 'senha' inválido: obrigatório")

	assert.Error(t, ValidationErrorResponse(errors.New("other")))
}
