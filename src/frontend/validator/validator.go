// Package validator checks form input before it is sent to the backend.
package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, err := model.ParseRole(fl.Field().String())
		return err == nil
	})
	validate.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		return model.OrderStatus(fl.Field().String()).Valid()
	})
	validate.RegisterValidation("price", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(strings.Replace(fl.Field().String(), ",", ".", 1))
		return err == nil && d.IsPositive()
	})
}

type Payload interface {
	Validate() error
}

type LoginPayload struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"senha" validate:"required"`
}

func (p *LoginPayload) Validate() error { return validate.Struct(p) }

type AddToCartPayload struct {
	ProductID int64 `form:"product_id" validate:"required,gte=1"`
	Quantity  int   `form:"quantity" validate:"required,gte=1,lte=999"`
}

func (p *AddToCartPayload) Validate() error { return validate.Struct(p) }

// UpdateCartPayload allows zero, which removes the line.
type UpdateCartPayload struct {
	ProductID int64 `form:"product_id" validate:"required,gte=1"`
	Quantity  int   `form:"quantity" validate:"gte=0,lte=999"`
}

func (p *UpdateCartPayload) Validate() error { return validate.Struct(p) }

type ProductPayload struct {
	Name        string `form:"nome" validate:"required,max=255"`
	Description string `form:"descricao" validate:"max=1000"`
	Price       string `form:"preco" validate:"required,price"`
	Stock       int    `form:"quantidadeEstoque" validate:"gte=0"`
}

func (p *ProductPayload) Validate() error { return validate.Struct(p) }

// PriceDecimal parses Price, accepting a decimal comma. Call after Validate.
func (p *ProductPayload) PriceDecimal() decimal.Decimal {
	d, _ := decimal.NewFromString(strings.Replace(p.Price, ",", ".", 1))
	return d
}

type StockPayload struct {
	Quantity int `form:"novaQuantidade" validate:"gte=0"`
}

func (p *StockPayload) Validate() error { return validate.Struct(p) }

type UserPayload struct {
	Name     string `form:"nome" validate:"required,max=255"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"senha" validate:"required,min=6"`
	Role     string `form:"perfil" validate:"required,role"`
}

func (p *UserPayload) Validate() error { return validate.Struct(p) }

type UserRolePayload struct {
	Role string `form:"perfil" validate:"required,role"`
}

func (p *UserRolePayload) Validate() error { return validate.Struct(p) }

type StatusPayload struct {
	Status string `form:"novoStatus" validate:"required,order_status"`
}

func (p *StatusPayload) Validate() error { return validate.Struct(p) }

// ValidationErrorResponse turns validator errors into a single message fit
// for display.
func ValidationErrorResponse(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return errors.New("formato de erro de validação inválido")
	}
	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msgs = append(msgs, fmt.Sprintf("Campo '%s' inválido: %s", fe.Field(), describe(fe)))
	}
	return errors.New(strings.Join(msgs, "\n"))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "obrigatório"
	case "email":
		return "e-mail inválido"
	case "gte":
		return "deve ser no mínimo " + fe.Param()
	case "lte":
		return "deve ser no máximo " + fe.Param()
	case "min", "max":
		return fmt.Sprintf("tamanho fora do limite (%s=%s)", fe.Tag(), fe.Param())
	case "role":
		return "perfil desconhecido"
	case "order_status":
		return "status desconhecido"
	case "price":
		return "preço deve ser um valor positivo"
	}
	return fe.Tag()
}
