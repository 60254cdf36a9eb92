package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
)

func TestResolveColors(t *testing.T) {
	t.Run("no color env", func(t *testing.T) {
		t.Setenv("NO_COLOR", "")
		assert.False(t, ResolveColors(true))
	})
	t.Run("dumb terminal", func(t *testing.T) {
		t.Setenv("TERM", "dumb")
		assert.False(t, ResolveColors(true))
	})
	t.Run("config wins otherwise", func(t *testing.T) {
		t.Setenv("TERM", "xterm-256color")
		assert.False(t, ResolveColors(false))
	})
}

func TestPrinterPlain(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut, false)

	p.Success("pedido #%d criado", 42)
	p.Info("carrinho vazio")
	p.Warning("carrinho restaurado")
	p.Header("Pedidos")

	assert.Contains(t, out.String(), "[OK] pedido #42 criado\n")
	assert.Contains(t, out.String(), "carrinho vazio\n")
	assert.Contains(t, out.String(), "\nPedidos\n-------\n")
	assert.Equal(t, "[WARN] carrinho restaurado\n", errOut.String())
}

func TestStatusBadgePlain(t *testing.T) {
	p := NewPrinter(&bytes.Buffer{}, &bytes.Buffer{}, false)
	assert.Equal(t, "[PENDENTE APROVACAO]", p.StatusBadge(model.OrderStatusPendingApproval))
	assert.Equal(t, "[CANCELADO]", p.StatusBadge(model.OrderStatusCanceled))
	assert.Equal(t, "texto", p.Bold("texto"))
	assert.Equal(t, "texto", p.Dim("texto"))
}

func TestTableRender(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, []string{"id", "nome"})
	table.AddRow("1", "Caneta")
	table.AddRow("2", "Caderno")
	require.NoError(t, table.Render())

	out := buf.String()
	assert.Equal(t, 2, table.Len())
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Caderno")
	assert.True(t, strings.Index(out, "Caneta") < strings.Index(out, "Caderno"))
}
