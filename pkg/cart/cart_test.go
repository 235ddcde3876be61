package cart_test

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"storefront/internal/pricing"
	"storefront/pkg/cart"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mouse    = cart.Product{ID: "p1", Name: "Mouse", Price: 20, CountInStock: 10, Image: "/img/mouse.jpg"}
	pad      = cart.Product{ID: "p2", Name: "Pad", Price: 30, CountInStock: 5}
	keyboard = cart.Product{ID: "p3", Name: "Keyboard", Price: 150, CountInStock: 2}
)

func newStore(t *testing.T, storage cart.Storage) *cart.Store {
	t.Helper()
	store, err := cart.New(storage, pricing.DefaultPolicy)
	require.NoError(t, err)
	return store
}

func load(t *testing.T, storage cart.Storage, key string) string {
	t.Helper()
	v, ok, err := storage.Load(key)
	require.NoError(t, err)
	require.True(t, ok, key)
	return v
}

func TestAddItemReplacesQuantity(t *testing.T) {
	store := newStore(t, cart.NewMemoryStorage())

	require.NoError(t, store.AddItem(mouse, 2))
	require.NoError(t, store.AddItem(mouse, 5))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, 5, store.ItemCount())
}

func TestMutationsPersistLinesAndTotals(t *testing.T) {
	storage := cart.NewMemoryStorage()
	store := newStore(t, storage)

	require.NoError(t, store.AddItem(mouse, 2))
	require.NoError(t, store.AddItem(pad, 1))

	assert.Equal(t, "70.00", load(t, storage, cart.KeyItemsPrice))
	assert.Equal(t, "10.00", load(t, storage, cart.KeyShippingPrice))
	assert.Equal(t, "10.50", load(t, storage, cart.KeyTaxPrice))
	assert.Equal(t, "90.50", load(t, storage, cart.KeyTotalPrice))
	assert.JSONEq(t,
		`[{"product":"p1","name":"Mouse","image":"/img/mouse.jpg","price":20,"qty":2,"countInStock":10},
		  {"product":"p2","name":"Pad","image":"","price":30,"qty":1,"countInStock":5}]`,
		load(t, storage, cart.KeyCartItems))

	_, _, _, total := store.Totals().Strings()
	assert.Equal(t, "90.50", total)

	require.NoError(t, store.UpdateQuantity("p2", 3))
	assert.Equal(t, "130.00", load(t, storage, cart.KeyItemsPrice))
	assert.Equal(t, "0.00", load(t, storage, cart.KeyShippingPrice))
}

func TestRemoveItem(t *testing.T) {
	store := newStore(t, cart.NewMemoryStorage())
	require.NoError(t, store.AddItem(mouse, 1))
	require.NoError(t, store.AddItem(pad, 1))

	require.NoError(t, store.RemoveItem("p1"))
	require.NoError(t, store.RemoveItem("absent"))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p2", lines[0].ProductID)
}

func TestNonPositiveQuantityIsIgnored(t *testing.T) {
	store := newStore(t, cart.NewMemoryStorage())
	require.NoError(t, store.AddItem(mouse, 2))

	require.NoError(t, store.AddItem(mouse, 0))
	require.NoError(t, store.UpdateQuantity("p1", -3))
	require.NoError(t, store.UpdateQuantity("absent", 4))

	lines := store.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestClearLeavesEmptyListInStorage(t *testing.T) {
	storage := cart.NewMemoryStorage()
	store := newStore(t, storage)
	require.NoError(t, store.AddItem(keyboard, 1))

	require.NoError(t, store.Clear())
	assert.Empty(t, store.Lines())
	assert.Equal(t, 0, store.ItemCount())
	assert.Equal(t, "[]", load(t, storage, cart.KeyCartItems))
	assert.Equal(t, "0.00", load(t, storage, cart.KeyItemsPrice))
}

func TestLinesReturnsCopy(t *testing.T) {
	store := newStore(t, cart.NewMemoryStorage())
	require.NoError(t, store.AddItem(mouse, 1))

	lines := store.Lines()
	lines[0].Quantity = 99
	assert.Equal(t, 1, store.Lines()[0].Quantity)
}

func TestHydratesFromStorage(t *testing.T) {
	storage := cart.NewMemoryStorage()
	first := newStore(t, storage)
	require.NoError(t, first.AddItem(keyboard, 1))

	second := newStore(t, storage)
	require.Len(t, second.Lines(), 1)
	items, shipping, tax, total := second.Totals().Strings()
	assert.Equal(t, []string{"150.00", "0.00", "22.50", "172.50"}, []string{items, shipping, tax, total})
}

func TestCorruptStorageStartsEmpty(t *testing.T) {
	storage := cart.NewMemoryStorage()
	require.NoError(t, storage.Save(map[string]string{cart.KeyCartItems: "{not json"}))

	store := newStore(t, storage)
	assert.Empty(t, store.Lines())
}

type failingStorage struct {
	*cart.MemoryStorage
	fail bool
}

func (f *failingStorage) Save(entries map[string]string) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemoryStorage.Save(entries)
}

func TestFailedSaveKeepsPreviousState(t *testing.T) {
	storage := &failingStorage{MemoryStorage: cart.NewMemoryStorage()}
	store := newStore(t, storage)
	require.NoError(t, store.AddItem(mouse, 1))

	storage.fail = true
	assert.Error(t, store.AddItem(pad, 1))
	assert.Error(t, store.Clear())
	assert.Len(t, store.Lines(), 1)
}

func TestConcurrentMutations(t *testing.T) {
	store := newStore(t, cart.NewMemoryStorage())

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(q int) {
			defer wg.Done()
			_ = store.AddItem(mouse, q)
			_ = store.Totals()
		}(i)
	}
	wg.Wait()

	require.Len(t, store.Lines(), 1)
}

func TestSQLiteStorageSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")

	storage, err := cart.NewSQLiteStorage(path)
	require.NoError(t, err)
	store := newStore(t, storage)
	require.NoError(t, store.AddItem(mouse, 2))
	require.NoError(t, store.AddItem(pad, 1))
	require.NoError(t, store.AddItem(mouse, 3))
	require.NoError(t, storage.Close())

	reopened, err := cart.NewSQLiteStorage(path)
	require.NoError(t, err)
	defer reopened.Close()

	restored := newStore(t, reopened)
	assert.Equal(t, 4, restored.ItemCount())
	assert.Equal(t, "90.00", load(t, reopened, cart.KeyItemsPrice))

	_, ok, err := reopened.Load("missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
