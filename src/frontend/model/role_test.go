package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole_PrefixIsOptional(t *testing.T) {
	for _, in := range []string{"VENDEDOR", "ROLE_VENDEDOR", " role_vendedor "} {
		r, err := ParseRole(in)
		require.NoError(t, err, in)
		assert.Equal(t, RoleSeller, r)
	}
}

func TestParseRole_RejectsUnknown(t *testing.T) {
	_, err := ParseRole("ROLE_GERENTE")
	assert.Error(t, err)

	_, err = ParseRoleSet("ROLE_CLIENTE", "SUPERUSER")
	assert.Error(t, err)
}

func TestRoleSet_Intersects(t *testing.T) {
	session, err := ParseRoleSet("ROLE_VENDEDOR")
	require.NoError(t, err)

	assert.True(t, session.Intersects(NewRoleSet(RoleAdministrator, RoleSeller)))
	assert.False(t, session.Intersects(NewRoleSet(RoleCustomer)))
	assert.False(t, session.Intersects(NewRoleSet()))
	assert.False(t, RoleSet(nil).Intersects(session))
}

func TestRoleSet_IsManager(t *testing.T) {
	assert.True(t, NewRoleSet(RoleAdministrator).IsManager())
	assert.True(t, NewRoleSet(RoleSeller, RoleCustomer).IsManager())
	assert.False(t, NewRoleSet(RoleCustomer).IsManager())
	assert.False(t, NewRoleSet().IsManager())
}

func TestRole_UnmarshalJSON(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"perfil":"ADMINISTRADOR"}`), &u))
	assert.Equal(t, RoleAdministrator, u.Role)

	assert.Error(t, json.Unmarshal([]byte(`{"perfil":"ROOT"}`), &u))
}

func TestOrderStatus_Terminal(t *testing.T) {
	terminal := map[OrderStatus]bool{
		OrderStatusPendingApproval: false,
		OrderStatusInProgress:      false,
		OrderStatusFinished:        true,
		OrderStatusCanceled:        true,
	}
	for _, s := range OrderStatuses() {
		assert.True(t, s.Valid())
		assert.Equal(t, terminal[s], s.Terminal(), s)
	}
	assert.False(t, OrderStatus("SHIPPED").Valid())
	assert.Equal(t, "PENDENTE APROVACAO", OrderStatusPendingApproval.Label())
}

func TestTimestampAcceptsLocalDateTime(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"dataCriacao":"2024-05-10T14:30:15.123456"}`), &o))
	assert.Equal(t, 2024, o.CreatedAt.Year())
	assert.Equal(t, 30, o.CreatedAt.Minute())

	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"dataCriacao":"2024-05-10T14:30:15Z"}`), &u))
	assert.Equal(t, 14, u.CreatedAt.UTC().Hour())

	assert.Error(t, json.Unmarshal([]byte(`{"dataCriacao":"ontem"}`), &u))
}
