package cart

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore refuses every write, for exercising the degrade path.
type failingStore struct{}

func (failingStore) Get(string) (string, bool) { return "", false }
func (failingStore) Set(string, string) error  { return errors.New("quota exceeded") }
func (failingStore) Remove(string) error       { return errors.New("quota exceeded") }

func TestAddItemMergesSameIdentity(t *testing.T) {
	c := New("dev-1", NewMemoryStore())

	for i := 0; i < 3; i++ {
		c.AddItem("cal-roll", "California Roll", 8.99, nil)
	}

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 3, c.ItemCount())
}

func TestAddItemSeparatesModifierVariants(t *testing.T) {
	c := New("dev-1", NewMemoryStore())

	mild := []Modifier{{GroupName: "Spice Level", SelectedOptions: []string{"Mild"}}}
	hot := []Modifier{{GroupName: "Spice Level", SelectedOptions: []string{"Hot"}}}

	c.AddItem("spicy-tuna-roll", "Spicy Tuna Roll", 10.5, mild)
	c.AddItem("spicy-tuna-roll", "Spicy Tuna Roll", 10.5, hot)
	c.AddItem("spicy-tuna-roll", "Spicy Tuna Roll", 10.5, mild)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 1, lines[1].Quantity)
}

func TestAddItemNilAndEmptyModifiersMerge(t *testing.T) {
	c := New("dev-1", NewMemoryStore())

	c.AddItem("edamame", "Edamame", 4.5, nil)
	c.AddItem("edamame", "Edamame", 4.5, []Modifier{})

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 2, c.Lines()[0].Quantity)
}

func TestRemoveItemRemovesAllVariants(t *testing.T) {
	c := New("dev-1", NewMemoryStore())

	c.AddItem("spicy-tuna-roll", "Spicy Tuna Roll", 10.5,
		[]Modifier{{GroupName: "Spice Level", SelectedOptions: []string{"Mild"}}})
	c.AddItem("spicy-tuna-roll", "Spicy Tuna Roll", 10.5,
		[]Modifier{{GroupName: "Spice Level", SelectedOptions: []string{"Hot"}}})
	c.AddItem("edamame", "Edamame", 4.5, nil)

	c.RemoveItem("spicy-tuna-roll")

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "edamame", lines[0].ItemID)
}

func TestRemoveItemAbsentIsNoOp(t *testing.T) {
	c := New("dev-1", NewMemoryStore())
	c.AddItem("edamame", "Edamame", 4.5, nil)

	c.RemoveItem("cal-roll")

	assert.Len(t, c.Lines(), 1)
}

func TestUpdateQuantitySetsFirstMatch(t *testing.T) {
	c := New("dev-1", NewMemoryStore())
	c.AddItem("cal-roll", "California Roll", 8.99, nil)

	c.UpdateQuantity("cal-roll", 5)

	assert.Equal(t, 5, c.Lines()[0].Quantity)
	assert.Equal(t, 5, c.ItemCount())
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	c := New("dev-1", NewMemoryStore())
	c.AddItem("cal-roll", "California Roll", 8.99, nil)
	c.UpdateQuantity("cal-roll", 4)

	c.UpdateQuantity("cal-roll", 0)

	assert.False(t, c.Contains("cal-roll"))
	assert.Empty(t, c.Lines())
}

func TestUpdateQuantityNegativeRemoves(t *testing.T) {
	c := New("dev-1", NewMemoryStore())
	c.AddItem("cal-roll", "California Roll", 8.99, nil)

	c.UpdateQuantity("cal-roll", -3)

	assert.Empty(t, c.Lines())
}

func TestUpdateQuantityAbsentIsNoOp(t *testing.T) {
	c := New("dev-1", NewMemoryStore())
	c.AddItem("edamame", "Edamame", 4.5, nil)

	c.UpdateQuantity("cal-roll", 7)

	assert.False(t, c.Contains("cal-roll"))
	assert.Equal(t, 1, c.ItemCount())
}

func TestDerivedTotalsRecomputed(t *testing.T) {
	c := New("dev-1", NewMemoryStore())

	c.AddItem("cal-roll", "California Roll", 8.99, nil)
	c.AddItem("cal-roll", "California Roll", 8.99, nil)
	assert.InDelta(t, 17.98, c.Total(), 0.0001)
	assert.Equal(t, 2, c.ItemCount())

	c.AddItem("edamame", "Edamame", 4.5, nil)
	assert.InDelta(t, 22.48, c.Total(), 0.0001)
	assert.Equal(t, 3, c.ItemCount())

	c.UpdateQuantity("cal-roll", 1)
	assert.InDelta(t, 13.49, c.Total(), 0.0001)
	assert.Equal(t, 2, c.ItemCount())

	c.Clear()
	assert.Zero(t, c.Total())
	assert.Zero(t, c.ItemCount())
}

func TestPersistenceRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	c := New("dev-1", store)
	c.AddItem("cal-roll", "California Roll", 8.99, nil)
	c.AddItem("cal-roll", "California Roll", 8.99, nil)
	c.AddItem("spicy-tuna-roll", "Spicy Tuna Roll", 10.5,
		[]Modifier{{GroupName: "Spice Level", SelectedOptions: []string{"Hot"}}})

	// Simulate a reload: a fresh aggregate over the same store.
	restored := New("dev-1", store)

	assert.Equal(t, c.Lines(), restored.Lines())
	assert.Equal(t, c.Total(), restored.Total())
	assert.Equal(t, c.ItemCount(), restored.ItemCount())
}

func TestCorruptStoredStateHydratesEmpty(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set("dev-1", "{not json"))

	c := New("dev-1", store)

	assert.Empty(t, c.Lines())
	assert.Zero(t, c.Total())
}

func TestStoreFailuresDoNotSurface(t *testing.T) {
	c := New("dev-1", failingStore{})

	// Every mutation still succeeds in memory.
	c.AddItem("cal-roll", "California Roll", 8.99, nil)
	c.UpdateQuantity("cal-roll", 3)
	assert.Equal(t, 3, c.ItemCount())

	c.Clear()
	assert.Empty(t, c.Lines())
}

func TestClearDropsPersistedCopy(t *testing.T) {
	store := NewMemoryStore()
	c := New("dev-1", store)
	c.AddItem("cal-roll", "California Roll", 8.99, nil)

	c.Clear()

	_, ok := store.Get("dev-1")
	assert.False(t, ok)
}

type countingObserver struct {
	events []string
}

func (o *countingObserver) CartEvent(op string, itemID string, quantity int) {
	o.events = append(o.events, op)
}

func TestObserverReceivesMutationEvents(t *testing.T) {
	obs := &countingObserver{}
	c := New("dev-1", NewMemoryStore(), obs)

	c.AddItem("cal-roll", "California Roll", 8.99, nil)
	c.UpdateQuantity("cal-roll", 2)
	c.RemoveItem("cal-roll")
	c.Clear()

	assert.Equal(t, []string{"add", "update", "remove", "clear"}, obs.events)
}

func TestConcurrentWritersOnSharedCart(t *testing.T) {
	manager := NewManager(NewMemoryStore())

	const writers = 8
	const addsEach = 100

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := manager.Cart("dev-1")
			for j := 0; j < addsEach; j++ {
				c.AddItem("cal-roll", "California Roll", 8.99, nil)
			}
		}()
	}
	wg.Wait()

	c := manager.Cart("dev-1")
	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, writers*addsEach, lines[0].Quantity)
	assert.Equal(t, writers*addsEach, c.ItemCount())
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	c := New("dev-1", NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.AddItem("miso-soup", "Miso Soup", 3.25, nil)
				c.UpdateQuantity("miso-soup", 1)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Lines()
				c.Total()
				c.Contains("miso-soup")
				c.IsEmpty()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, c.ItemCount())
}
