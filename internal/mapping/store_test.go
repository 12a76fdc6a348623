package mapping

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jitu/pkg/contracts/domain"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"Tanggal", "Produk", "Harga"})
	b := Fingerprint([]string{"harga", "TANGGAL", "produk "})
	c := Fingerprint([]string{"Tanggal", "Produk", "Harga", "Qty"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 32)
}

func TestStoreConfirmAndLookup(t *testing.T) {
	store := NewStore(nil)
	columns := []string{"Tgl", "Barang", "Hrg"}
	m := domain.ColumnMapping{
		domain.RoleDate:    "Tgl",
		domain.RoleProduct: "Barang",
		domain.RolePrice:   "Hrg",
	}

	entry, err := store.Confirm(columns, m)
	require.NoError(t, err)
	assert.Equal(t, Fingerprint(columns), entry.Fingerprint)
	assert.False(t, entry.ConfirmedAt.IsZero())
	assert.Equal(t, 1, store.Len())

	// confirming copies the mapping
	m[domain.RolePrice] = "changed"

	got, ok := store.Lookup([]string{"HRG", "tgl", "barang"})
	require.True(t, ok)
	assert.Equal(t, domain.ColumnMapping{
		domain.RoleDate:    "tgl",
		domain.RoleProduct: "barang",
		domain.RolePrice:   "HRG",
	}, got)

	_, ok = store.Lookup([]string{"Tgl", "Barang"})
	assert.False(t, ok)

	assert.True(t, store.Forget(columns))
	assert.False(t, store.Forget(columns))
	assert.Equal(t, 0, store.Len())
}

func TestStoreConfirmRejectsInvalid(t *testing.T) {
	store := NewStore(nil)
	columns := []string{"A", "B", "C"}

	tests := []struct {
		name    string
		mapping domain.ColumnMapping
		target  error
	}{
		{
			name: "unknown column",
			mapping: domain.ColumnMapping{
				domain.RoleDate: "A", domain.RoleProduct: "B", domain.RolePrice: "Z",
			},
			target: ErrInvalidMapping,
		},
		{
			name: "one column two roles",
			mapping: domain.ColumnMapping{
				domain.RoleDate: "A", domain.RoleProduct: "B", domain.RolePrice: "B",
			},
			target: ErrInvalidMapping,
		},
		{
			name: "unknown role",
			mapping: domain.ColumnMapping{
				domain.RoleDate: "A", domain.RoleProduct: "B", domain.RolePrice: "C", domain.Role("discount"): "C",
			},
			target: ErrInvalidMapping,
		},
		{
			name: "missing mandatory role",
			mapping: domain.ColumnMapping{
				domain.RoleDate: "A", domain.RoleProduct: "B",
			},
			target: ErrIncompleteMapping,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Confirm(columns, tt.mapping)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.target), "got %v", err)
		})
	}
	assert.Equal(t, 0, store.Len())
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore(nil)
	columns := []string{"Tanggal", "Produk", "Harga"}
	m := domain.ColumnMapping{
		domain.RoleDate:    "Tanggal",
		domain.RoleProduct: "Produk",
		domain.RolePrice:   "Harga",
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := store.Confirm(columns, m)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			store.Lookup(columns)
			store.List()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Len())
	require.Len(t, store.List(), 1)
}
