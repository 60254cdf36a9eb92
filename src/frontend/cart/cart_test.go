package cart

import (
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/model"
	"github.com/Clevinacio/desafio-logap-gerenciador/src/frontend/storage"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func product(id int64, price string) model.Product {
	return model.Product{ID: id, Name: "p", Price: decimal.RequireFromString(price), Stock: 100}
}

type fakePlacer struct {
	got    []model.OrderLine
	err    error
	during func()
}

func (f *fakePlacer) CreateOrder(_ context.Context, lines []model.OrderLine) (*model.CreatedOrder, error) {
	f.got = lines
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &model.CreatedOrder{ID: 42, Status: model.OrderStatusPendingApproval}, nil
}

type failingStore struct {
	*storage.MemoryStore
}

func (failingStore) Set(context.Context, string, string) error { return errors.New("disk full") }

func persisted(t *testing.T, s storage.Store) []Item {
	t.Helper()
	raw, ok, err := s.Get(context.Background(), storage.KeyCart)
	require.NoError(t, err)
	require.True(t, ok)
	var items []Item
	require.NoError(t, json.Unmarshal([]byte(raw), &items))
	return items
}

func TestScenarioA_CountAndTotal(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, storage.NewMemoryStore(), quietLogger())
	require.NoError(t, c.AddItem(ctx, product(1, "10.00"), 2))
	require.NoError(t, c.AddItem(ctx, product(2, "5.00"), 1))

	assert.Equal(t, 3, c.Count())
	assert.True(t, c.Total().Equal(decimal.NewFromInt(25)), c.Total().String())
}

func TestAddItemMergesSameProduct(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	c := New(ctx, mem, quietLogger())
	require.NoError(t, c.AddItem(ctx, product(1, "3.50"), 1))
	require.NoError(t, c.AddItem(ctx, product(1, "3.50"), 4))

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 5, c.Items()[0].Quantity)
	assert.Equal(t, 5, persisted(t, mem)[0].Quantity)
}

func TestAddItemRejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, storage.NewMemoryStore(), quietLogger())
	assert.ErrorIs(t, c.AddItem(ctx, product(1, "1"), 0), ErrInvalidQuantity)
	assert.ErrorIs(t, c.AddItem(ctx, product(1, "1"), -2), ErrInvalidQuantity)
	assert.Zero(t, c.Len())
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	c := New(ctx, mem, quietLogger())
	require.NoError(t, c.AddItem(ctx, product(1, "1"), 1))
	require.NoError(t, c.AddItem(ctx, product(2, "1"), 1))

	require.NoError(t, c.UpdateQuantity(ctx, 1, 7))
	assert.Equal(t, 7, c.Items()[0].Quantity)

	require.NoError(t, c.UpdateQuantity(ctx, 99, 3))
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.UpdateQuantity(ctx, 1, 0))
	require.Equal(t, 1, c.Len())
	assert.EqualValues(t, 2, c.Items()[0].ID)
	assert.Len(t, persisted(t, mem), 1)
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	c := New(ctx, mem, quietLogger())
	require.NoError(t, c.AddItem(ctx, product(1, "1"), 1))
	require.NoError(t, c.AddItem(ctx, product(2, "1"), 1))
	require.NoError(t, c.AddItem(ctx, product(3, "1"), 1))

	require.NoError(t, c.RemoveItem(ctx, 2))
	ids := []int64{}
	for _, it := range c.Items() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []int64{1, 3}, ids)

	require.NoError(t, c.Clear(ctx))
	assert.Zero(t, c.Len())
	assert.Empty(t, persisted(t, mem))
}

func TestInvariantsUnderRandomOperations(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))
	prices := []string{"0.99", "10.00", "5.50", "123.45"}
	c := New(ctx, storage.NewMemoryStore(), quietLogger())

	for step := 0; step < 500; step++ {
		id := int64(rng.Intn(len(prices)))
		switch rng.Intn(3) {
		case 0:
			_ = c.AddItem(ctx, product(id, prices[id]), rng.Intn(4)+1)
		case 1:
			require.NoError(t, c.RemoveItem(ctx, id))
		case 2:
			require.NoError(t, c.UpdateQuantity(ctx, id, rng.Intn(6)-2))
		}

		count, total := 0, decimal.Zero
		seen := map[int64]bool{}
		for _, it := range c.Items() {
			require.Greater(t, it.Quantity, 0)
			require.False(t, seen[it.ID], "duplicate line for %d", it.ID)
			seen[it.ID] = true
			count += it.Quantity
			total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		require.Equal(t, count, c.Count())
		require.True(t, total.Equal(c.Total()))
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.Set(ctx, storage.KeyCart,
		`[{"id":1,"nome":"Caneta","preco":2.5,"quantidadeEstoque":10,"quantity":2},`+
			`{"id":2,"nome":"Lápis","preco":1,"quantity":0},`+
			`{"id":1,"nome":"Caneta","preco":2.5,"quantity":1}]`))

	c := New(ctx, mem, quietLogger())
	assert.False(t, c.Recovered())
	require.Equal(t, 1, c.Len())
	it := c.Items()[0]
	assert.Equal(t, "Caneta", it.Name)
	assert.Equal(t, 3, it.Quantity)
	assert.True(t, c.Total().Equal(decimal.RequireFromString("7.5")))
}

func TestScenarioD_CorruptDataYieldsEmptyCart(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	require.NoError(t, mem.Set(ctx, storage.KeyCart, "{not json"))

	c := New(ctx, mem, quietLogger())
	assert.Zero(t, c.Len())
	assert.Zero(t, c.Count())
	assert.True(t, c.Recovered())

	require.NoError(t, c.AddItem(ctx, product(1, "1"), 1))
	assert.Len(t, persisted(t, mem), 1)
}

func TestScenarioB_CheckoutClearsCart(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	c := New(ctx, mem, quietLogger())
	require.NoError(t, c.AddItem(ctx, product(1, "10.00"), 2))
	require.NoError(t, c.AddItem(ctx, product(5, "5.00"), 1))

	placer := &fakePlacer{}
	id, err := c.Checkout(ctx, placer)
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
	assert.Equal(t, []model.OrderLine{{ProductID: 1, Quantity: 2}, {ProductID: 5, Quantity: 1}}, placer.got)
	assert.Zero(t, c.Len())
	assert.Empty(t, persisted(t, mem))
}

func TestCheckoutKeepsLinesAddedInFlight(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	c := New(ctx, mem, quietLogger())
	require.NoError(t, c.AddItem(ctx, product(1, "10.00"), 2))

	placer := &fakePlacer{during: func() {
		require.NoError(t, c.AddItem(ctx, product(1, "10.00"), 1))
		require.NoError(t, c.AddItem(ctx, product(9, "3.00"), 4))
	}}
	_, err := c.Checkout(ctx, placer)
	require.NoError(t, err)
	assert.Equal(t, []model.OrderLine{{ProductID: 1, Quantity: 2}}, placer.got)

	items := c.Items()
	require.Len(t, items, 2)
	assert.EqualValues(t, 1, items[0].ID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.EqualValues(t, 9, items[1].ID)
	assert.Equal(t, 4, items[1].Quantity)
	assert.Len(t, persisted(t, mem), 2)
}

func TestCheckoutFailureLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, storage.NewMemoryStore(), quietLogger())
	require.NoError(t, c.AddItem(ctx, product(1, "10.00"), 2))
	before := c.Items()

	rejected := errors.New("Estoque insuficiente para o produto: Caneta")
	_, err := c.Checkout(ctx, &fakePlacer{err: rejected})
	assert.Equal(t, rejected, err)
	assert.Equal(t, before, c.Items())
}

func TestCheckoutEmptyCart(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, storage.NewMemoryStore(), quietLogger())
	placer := &fakePlacer{}
	_, err := c.Checkout(ctx, placer)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, placer.got)
}

func TestPersistFailureIsReported(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, failingStore{storage.NewMemoryStore()}, quietLogger())
	err := c.AddItem(ctx, product(1, "1"), 1)
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestCorruptStoreFileDoesNotBlockWrites(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o600))
	fs, err := storage.NewFileStore(path)
	require.NoError(t, err)

	c := New(ctx, fs, quietLogger())
	assert.Zero(t, c.Len())
	require.NoError(t, c.AddItem(ctx, product(1, "10.00"), 2))

	again := New(ctx, fs, quietLogger())
	assert.Equal(t, 2, again.Count())
	assert.False(t, again.Recovered())
}
