package mapping

import (
	"jitu/pkg/contracts/domain"
)

// KeywordSet lists the label keywords that suggest each role
type KeywordSet map[domain.Role][]string

// DefaultKeywords returns the built-in Indonesian and English keyword sets
func DefaultKeywords() KeywordSet {
	return KeywordSet{
		domain.RoleDate: {
			"tgl", "tanggal", "date", "waktu", "time", "datetime", "hari",
			"tgl transaksi", "tanggal transaksi", "transaction date",
			"tgl jual", "tgl beli", "created at", "order date",
		},
		domain.RoleProduct: {
			"nama", "produk", "item", "menu", "barang", "product",
			"nama produk", "nama barang", "nama menu", "product name", "item name",
			"sku", "deskripsi", "description",
		},
		domain.RolePrice: {
			"harga", "hrg", "price", "total", "bayar", "nilai", "rp", "amount",
			"hrg jual", "harga jual", "harga satuan", "selling price", "sale price", "unit price",
			"nominal", "jumlah bayar", "total harga", "subtotal", "omzet", "revenue",
		},
		domain.RoleQuantity: {
			"jumlah", "qty", "quantity", "pcs", "unit", "banyak",
			"jml", "kuantitas", "volume", "pieces", "terjual",
		},
		domain.RoleCategory: {
			"kategori", "category", "jenis", "type", "group",
			"klasifikasi", "golongan", "kelompok",
		},
		domain.RoleCustomer: {
			"pelanggan", "customer", "pembeli", "buyer", "konsumen",
			"nama pelanggan", "nama pembeli", "customer name", "client",
		},
	}
}

// normalized returns a copy with every keyword run through NormalizeLabel
func (k KeywordSet) normalized() KeywordSet {
	out := make(KeywordSet, len(k))
	for role, words := range k {
		seen := make(map[string]bool, len(words))
		for _, w := range words {
			n := NormalizeLabel(w)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out[role] = append(out[role], n)
		}
	}
	return out
}
