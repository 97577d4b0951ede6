package cart

import (
	"context"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPersister struct {
	saved  [][]LineItem
	stored []LineItem
}

func (p *recordingPersister) Save(_ context.Context, items []LineItem) {
	p.saved = append(p.saved, items)
	p.stored = cloneItems(items)
}

func (p *recordingPersister) Load(context.Context) []LineItem {
	return cloneItems(p.stored)
}

func (p *recordingPersister) lastSaved(t *testing.T) []LineItem {
	t.Helper()
	require.NotEmpty(t, p.saved, "expected at least one save")
	return p.saved[len(p.saved)-1]
}

var (
	headphones = Product{ID: 2, Name: "Kablosuz Kulaklık", Category: "Aksesuar", Price: "449,99 TL", ImageURL: "/placeholder.svg"}
	keyboard   = Product{ID: 3, Name: "Mekanik Klavye", Category: "Bilgisayar", Price: "1.299,99 TL"}
	watch      = Product{ID: 1, Name: "Akıllı Saat", Price: "799.99 TL"}
)

func newTestStore() (*Store, *recordingPersister) {
	persister := &recordingPersister{}
	return NewStore(persister), persister
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(expected).Equal(actual), "expected=%s actual=%s", expected, actual)
}

func TestNewStoreIsEmpty(t *testing.T) {
	store, persister := newTestStore()

	state := store.State()
	assert.Empty(t, state.Items)
	assert.NotNil(t, state.Items)
	assert.Equal(t, 0, state.TotalItems)
	assertDecimal(t, "0", state.TotalPrice)
	assert.Empty(t, persister.saved)
}

func TestAddItemTwiceIncrementsQuantity(t *testing.T) {
	store, persister := newTestStore()
	c := context.Background()

	store.AddItem(c, headphones)
	store.AddItem(c, headphones)

	state := store.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, 2, state.Items[0].Quantity)
	assert.Equal(t, 2, state.TotalItems)
	assert.Len(t, persister.saved, 2)
}

func TestAddItemThreeTimesTotals(t *testing.T) {
	store, persister := newTestStore()
	c := context.Background()

	for range 3 {
		store.AddItem(c, headphones)
	}

	state := store.State()
	assert.Equal(t, 3, state.TotalItems)
	assertDecimal(t, "1349.97", state.TotalPrice)
	assert.Equal(t, []LineItem{{
		ID:       2,
		Name:     "Kablosuz Kulaklık",
		Category: "Aksesuar",
		Price:    "449,99 TL",
		Quantity: 3,
		ImageURL: "/placeholder.svg",
	}}, persister.lastSaved(t))
}

func TestAddItemPreservesInsertionOrderAndClearsError(t *testing.T) {
	store, _ := newTestStore()
	c := context.Background()
	store.SetError("catalog unavailable")

	store.AddItem(c, keyboard)
	store.AddItem(c, watch)
	store.AddItem(c, keyboard)

	state := store.State()
	require.Len(t, state.Items, 2)
	assert.Equal(t, 3, state.Items[0].ID)
	assert.Equal(t, 1, state.Items[1].ID)
	assert.Equal(t, 2, state.Items[0].Quantity)
	assertDecimal(t, "3399.97", state.TotalPrice)
	assert.Empty(t, state.Error)
}

func TestRemoveItem(t *testing.T) {
	tests := []struct {
		name          string
		remove        []int
		expectedIds   []int
		expectedSaves int
	}{
		{name: "given present id should remove line", remove: []int{3}, expectedIds: []int{2, 1}, expectedSaves: 4},
		{name: "given absent id should keep items", remove: []int{42}, expectedIds: []int{2, 3, 1}, expectedSaves: 4},
		{name: "given absent id twice should stay unchanged", remove: []int{42, 42}, expectedIds: []int{2, 3, 1}, expectedSaves: 5},
		{name: "given middle id removed should keep order", remove: []int{3, 2}, expectedIds: []int{1}, expectedSaves: 5},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store, persister := newTestStore()
			c := context.Background()
			store.AddItem(c, headphones)
			store.AddItem(c, keyboard)
			store.AddItem(c, watch)
			before := store.State()

			for _, id := range test.remove {
				store.RemoveItem(c, id)
			}

			state := store.State()
			ids := make([]int, 0, len(state.Items))
			for _, item := range state.Items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, test.expectedIds, ids)
			assert.Equal(t, TotalItems(state.Items), state.TotalItems)
			assert.Len(t, persister.saved, test.expectedSaves)
			if len(test.expectedIds) == len(before.Items) {
				assert.Equal(t, before, state)
			}
		})
	}
}

func TestSetQuantity(t *testing.T) {
	t.Run("given positive quantity should set absolute value", func(t *testing.T) {
		store, _ := newTestStore()
		c := context.Background()
		store.AddItem(c, headphones)

		store.SetQuantity(c, headphones.ID, 5)
		store.SetQuantity(c, headphones.ID, 4)

		state := store.State()
		require.Len(t, state.Items, 1)
		assert.Equal(t, 4, state.Items[0].Quantity)
		assertDecimal(t, "1799.96", state.TotalPrice)
	})

	t.Run("given zero quantity should remove line", func(t *testing.T) {
		store, persister := newTestStore()
		c := context.Background()
		store.AddItem(c, headphones)

		store.SetQuantity(c, headphones.ID, 0)

		state := store.State()
		assert.Empty(t, state.Items)
		assert.Equal(t, 0, state.TotalItems)
		assert.Empty(t, persister.lastSaved(t))
	})

	t.Run("given negative quantity should remove line", func(t *testing.T) {
		store, _ := newTestStore()
		c := context.Background()
		store.AddItem(c, headphones)
		store.AddItem(c, watch)

		store.SetQuantity(c, headphones.ID, -3)

		state := store.State()
		require.Len(t, state.Items, 1)
		assert.Equal(t, watch.ID, state.Items[0].ID)
	})

	t.Run("given absent id should be a no-op", func(t *testing.T) {
		store, persister := newTestStore()
		c := context.Background()
		store.AddItem(c, headphones)
		before := store.State()

		store.SetQuantity(c, 99, 5)
		store.SetQuantity(c, 99, 0)

		assert.Equal(t, before, store.State())
		assert.Len(t, persister.saved, 1)
	})
}

func TestClear(t *testing.T) {
	store, persister := newTestStore()
	c := context.Background()
	store.AddItem(c, headphones)
	store.AddItem(c, keyboard)
	store.SetQuantity(c, keyboard.ID, 7)

	store.Clear(c)

	state := store.State()
	assert.Equal(t, []LineItem{}, state.Items)
	assert.Equal(t, 0, state.TotalItems)
	assertDecimal(t, "0", state.TotalPrice)
	saved := persister.lastSaved(t)
	assert.NotNil(t, saved)
	assert.Empty(t, saved)
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name          string
		items         []LineItem
		expected      []LineItem
		expectedTotal string
		expectedError string
	}{
		{
			name: "given distinct lines should keep order",
			items: []LineItem{
				{ID: 3, Name: "Mekanik Klavye", Price: "1.299,99 TL", Quantity: 2},
				{ID: 2, Name: "Kablosuz Kulaklık", Price: "449,99 TL", Quantity: 1},
			},
			expected: []LineItem{
				{ID: 3, Name: "Mekanik Klavye", Price: "1.299,99 TL", Quantity: 2},
				{ID: 2, Name: "Kablosuz Kulaklık", Price: "449,99 TL", Quantity: 1},
			},
			expectedTotal: "3049.97",
		},
		{
			name: "given repeated id should merge into first line",
			items: []LineItem{
				{ID: 1, Name: "Akıllı Saat", Price: "799.99 TL", Quantity: 1},
				{ID: 2, Name: "Kablosuz Kulaklık", Price: "449,99 TL", Quantity: 1},
				{ID: 1, Name: "Saat", Price: "1 TL", Quantity: 2},
			},
			expected: []LineItem{
				{ID: 1, Name: "Akıllı Saat", Price: "799.99 TL", Quantity: 3},
				{ID: 2, Name: "Kablosuz Kulaklık", Price: "449,99 TL", Quantity: 1},
			},
			expectedTotal: "2849.96",
		},
		{
			name: "given non positive quantities should skip them",
			items: []LineItem{
				{ID: 2, Name: "Kablosuz Kulaklık", Price: "449,99 TL", Quantity: 0},
				{ID: 3, Name: "Mekanik Klavye", Price: "1.299,99 TL", Quantity: -4},
			},
			expected:      []LineItem{},
			expectedTotal: "0",
			expectedError: "ürünler yüklenemedi",
		},
		{
			name:          "given nil should empty the cart",
			expected:      []LineItem{},
			expectedTotal: "0",
			expectedError: "ürünler yüklenemedi",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store, persister := newTestStore()
			c := context.Background()
			store.AddItem(c, watch)
			store.SetError("ürünler yüklenemedi")
			saves := len(persister.saved)

			store.Replace(c, test.items)

			state := store.State()
			assert.Equal(t, test.expected, state.Items)
			assert.Equal(t, TotalItems(test.expected), state.TotalItems)
			assertDecimal(t, test.expectedTotal, state.TotalPrice)
			assert.Equal(t, test.expectedError, state.Error)
			assert.Len(t, persister.saved, saves+1)
			assert.Equal(t, test.expected, persister.lastSaved(t))
		})
	}
}

func TestReloadReplacesItemsWithoutPersisting(t *testing.T) {
	store, persister := newTestStore()
	c := context.Background()
	store.AddItem(c, headphones)
	persister.stored = []LineItem{
		{ID: 3, Name: "Mekanik Klavye", Price: "1.299,99 TL", Quantity: 2},
		{ID: 1, Name: "Akıllı Saat", Price: "799.99 TL", Quantity: 1},
	}
	saves := len(persister.saved)

	store.Reload(c)

	state := store.State()
	assert.Equal(t, persister.stored, state.Items)
	assert.Equal(t, 3, state.TotalItems)
	assertDecimal(t, "3399.97", state.TotalPrice)
	assert.Len(t, persister.saved, saves)
}

func TestReloadFromEmptyPersister(t *testing.T) {
	store, persister := newTestStore()
	c := context.Background()
	store.AddItem(c, headphones)
	persister.stored = nil

	store.Reload(c)

	state := store.State()
	assert.NotNil(t, state.Items)
	assert.Empty(t, state.Items)
	assert.Equal(t, 0, state.TotalItems)
}

func TestFlagsDoNotPersist(t *testing.T) {
	store, persister := newTestStore()

	store.SetLoading(true)
	store.SetError("failed fetching products")

	state := store.State()
	assert.True(t, state.Loading)
	assert.Equal(t, "failed fetching products", state.Error)
	assert.Empty(t, persister.saved)

	store.SetLoading(false)
	store.SetError("")
	state = store.State()
	assert.False(t, state.Loading)
	assert.Empty(t, state.Error)
}

func TestStateIsACopy(t *testing.T) {
	store, _ := newTestStore()
	c := context.Background()
	store.AddItem(c, headphones)

	state := store.State()
	state.Items[0].Quantity = 100

	assert.Equal(t, 1, store.State().Items[0].Quantity)
}

func TestInvariantsHoldForRandomOperations(t *testing.T) {
	products := []Product{headphones, keyboard, watch}
	rng := rand.New(rand.NewSource(7))
	store, _ := newTestStore()
	c := context.Background()

	for range 500 {
		product := products[rng.Intn(len(products))]
		switch rng.Intn(3) {
		case 0:
			store.AddItem(c, product)
		case 1:
			store.RemoveItem(c, product.ID)
		case 2:
			store.SetQuantity(c, product.ID, rng.Intn(6)-2)
		}

		state := store.State()
		seen := map[int]bool{}
		for _, item := range state.Items {
			assert.Positive(t, item.Quantity)
			assert.False(t, seen[item.ID], "duplicate id %d", item.ID)
			seen[item.ID] = true
		}
		assert.Equal(t, TotalItems(state.Items), state.TotalItems)
		assert.True(t, TotalPrice(state.Items).Equal(state.TotalPrice))
	}
}
