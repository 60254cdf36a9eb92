package session

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/storage"
)

type fakeAuthorizer struct{ bearer string }

func (f *fakeAuthorizer) SetBearer(token string) { f.bearer = token }
func (f *fakeAuthorizer) ClearBearer()           { f.bearer = "" }

type fakeIssuer struct {
	token string
	err   error
}

func (f fakeIssuer) Login(context.Context, string, string) (string, error) { return f.token, f.err }

// blockingStore holds Get until release is closed.
type blockingStore struct {
	storage.Store
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) Get(ctx context.Context, key string) (string, bool, error) {
	close(b.entered)
	<-b.release
	return b.Store.Get(ctx, key)
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func validToken(t *testing.T, roles ...string) string {
	return signToken(t, jwt.MapClaims{
		"sub":   "ana@loja.com",
		"name":  "Ana",
		"roles": roles,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
}

func TestDecode(t *testing.T) {
	s, err := Decode(validToken(t, "ROLE_VENDEDOR"), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "ana@loja.com", s.Subject)
	assert.Equal(t, "Ana", s.Name)
	assert.True(t, s.Roles.Has(model.RoleSeller))
	assert.False(t, s.ExpiresAt.IsZero())
}

func TestDecode_Failures(t *testing.T) {
	cases := map[string]string{
		"garbage":      "not-a-jwt",
		"empty":        "",
		"no subject":   signToken(t, jwt.MapClaims{"roles": []string{"ROLE_CLIENTE"}}),
		"no roles":     signToken(t, jwt.MapClaims{"sub": "x"}),
		"unknown role": signToken(t, jwt.MapClaims{"sub": "x", "roles": []string{"ROLE_ROOT"}}),
		"expired": signToken(t, jwt.MapClaims{
			"sub": "x", "roles": []string{"ROLE_CLIENTE"}, "exp": time.Now().Add(-time.Minute).Unix(),
		}),
	}
	for name, token := range cases {
		_, err := Decode(token, time.Now())
		var de *DecodeError
		assert.True(t, errors.As(err, &de), name)
	}
}

func TestRestore_ValidToken(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	token := validToken(t, "ROLE_ADMINISTRADOR")
	require.NoError(t, mem.Set(ctx, storage.KeyToken, token))
	auth := &fakeAuthorizer{}

	s := NewStore(mem, auth, quietLogger())
	assert.True(t, s.IsLoading())
	s.Restore(ctx)

	assert.False(t, s.IsLoading())
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, token, auth.bearer)
	assert.True(t, s.Roles().Has(model.RoleAdministrator))
}

func TestRestore_DecodeFailureDiscardsToken(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.Set(ctx, storage.KeyToken, "garbage.token.value"))
	auth := &fakeAuthorizer{bearer: "stale"}

	s := NewStore(mem, auth, quietLogger())
	s.Restore(ctx)

	assert.False(t, s.IsLoading())
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, auth.bearer)
	_, ok, _ := mem.Get(ctx, storage.KeyToken)
	assert.False(t, ok)
	assert.Empty(t, s.Roles())
}

func TestRestore_NoToken(t *testing.T) {
	s := NewStore(storage.NewMemoryStore(), &fakeAuthorizer{}, quietLogger())
	s.Restore(context.Background())
	assert.False(t, s.IsLoading())
	assert.False(t, s.IsAuthenticated())
}

func TestRestore_IsLoadingOnlyWhileOutstanding(t *testing.T) {
	bs := &blockingStore{
		Store:   storage.NewMemoryStore(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := NewStore(bs, &fakeAuthorizer{}, quietLogger())

	done := make(chan struct{})
	go func() {
		s.Restore(context.Background())
		close(done)
	}()
	<-bs.entered
	assert.True(t, s.IsLoading())
	close(bs.release)
	<-done
	assert.False(t, s.IsLoading())
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	auth := &fakeAuthorizer{}
	s := NewStore(mem, auth, quietLogger())
	s.Restore(ctx)

	token := validToken(t, "ROLE_CLIENTE")
	require.NoError(t, s.Login(ctx, token))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, token, auth.bearer)
	persisted, ok, _ := mem.Get(ctx, storage.KeyToken)
	assert.True(t, ok)
	assert.Equal(t, token, persisted)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "ana@loja.com", cur.Subject)
}

func TestLogin_MalformedToken(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	auth := &fakeAuthorizer{}
	s := NewStore(mem, auth, quietLogger())
	s.Restore(ctx)

	err := s.Login(ctx, "nope")
	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, auth.bearer)
	_, ok, _ := mem.Get(ctx, storage.KeyToken)
	assert.False(t, ok)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	auth := &fakeAuthorizer{}
	s := NewStore(mem, auth, quietLogger())
	require.NoError(t, s.Login(ctx, validToken(t, "ROLE_CLIENTE")))

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, auth.bearer)
	_, ok, _ := mem.Get(ctx, storage.KeyToken)
	assert.False(t, ok)
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore(), &fakeAuthorizer{}, quietLogger())

	rejected := errors.New("Credenciais inválidas.")
	err := s.SignIn(ctx, fakeIssuer{err: rejected}, "a@b.c", "x")
	assert.Equal(t, rejected, err)
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.SignIn(ctx, fakeIssuer{token: validToken(t, "ROLE_VENDEDOR")}, "a@b.c", "x"))
	assert.True(t, s.IsAuthenticated())
}

func TestCurrentIsACopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewMemoryStore(), &fakeAuthorizer{}, quietLogger())
	require.NoError(t, s.Login(ctx, validToken(t, "ROLE_CLIENTE")))

	roles := s.Roles()
	roles[model.RoleAdministrator] = struct{}{}
	assert.False(t, s.Roles().Has(model.RoleAdministrator))
}

func TestLogin_CorruptStoreFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o600))
	fs, err := storage.NewFileStore(path)
	require.NoError(t, err)

	auth := &fakeAuthorizer{}
	s := NewStore(fs, auth, quietLogger())
	s.Restore(ctx)
	assert.False(t, s.IsAuthenticated())

	token := validToken(t, "ROLE_CLIENTE")
	require.NoError(t, s.Login(ctx, token))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, token, auth.bearer)

	v, ok, err := fs.Get(ctx, storage.KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, token, v)
}
