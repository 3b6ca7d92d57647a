package pagination_test

import (
	"testing"

	"katalog/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", "", 1, 10},
		{"explicit", "3", "12", 3, 12},
		{"non numeric", "abc", "x", 1, 10},
		{"zero falls back", "0", "0", 1, 10},
		{"negative passes through", "-2", "5", -2, 5},
		{"leading digits", "2abc", "12px", 2, 12},
		{"surrounding whitespace", " 4 ", "\t6", 4, 6},
		{"explicit sign", "+3", "-0", 3, 10},
		{"sign without digits", "-", "+x", 1, 10},
		{"decimal truncates", "2.9", "7.5", 2, 7},
		{"overflow falls back", "99999999999999999999", "5", 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := pagination.ParseParams(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
		})
	}
}

func TestParams_OffsetAndInfo(t *testing.T) {
	p := pagination.Params{Page: 3, Limit: 12}
	assert.Equal(t, 24, p.Offset())

	info := p.Info(30)
	assert.Equal(t, pagination.PageInfo{Page: 3, Limit: 12, Total: 30, TotalPages: 3}, info)
}

func TestTotalPages(t *testing.T) {
	for total := int64(0); total <= 50; total++ {
		for _, limit := range []int{1, 6, 10, 12, 24, 48} {
			got := pagination.TotalPages(total, limit)
			want := int((total + int64(limit) - 1) / int64(limit))
			assert.Equal(t, want, got, "total=%d limit=%d", total, limit)
		}
	}
	assert.Equal(t, 1, pagination.TotalPages(8, 12))
	assert.Equal(t, 0, pagination.TotalPages(8, 0))
}

func TestParseSort(t *testing.T) {
	for _, token := range pagination.SortOptions {
		spec, err := pagination.ParseSort(token)
		require.NoError(t, err)
		assert.Equal(t, token, spec.String())
	}

	spec, err := pagination.ParseSort(" PRICE:Desc ")
	require.NoError(t, err)
	assert.Equal(t, pagination.SortSpec{Field: "price", Direction: "desc"}, spec)

	for _, bad := range []string{"", "name", "stock:asc", "name:up", ":asc"} {
		_, err := pagination.ParseSort(bad)
		assert.Error(t, err, bad)
	}
}

type item struct {
	name  string
	price string
}

func field(it item, f string) string {
	if f == pagination.FieldPrice {
		return it.price
	}
	return it.name
}

func TestSorted_PriceDesc(t *testing.T) {
	items := []item{{"a", "10"}, {"b", "5"}, {"c", "20"}}

	out := pagination.Sorted(items, pagination.SortSpec{Field: "price", Direction: "desc"}, field)

	assert.Equal(t, []string{"20", "10", "5"}, []string{out[0].price, out[1].price, out[2].price})
	// input untouched
	assert.Equal(t, "10", items[0].price)
}

func TestSorted_PriceIsNumericNotLexicographic(t *testing.T) {
	items := []item{{"a", "100"}, {"b", "9.5"}, {"c", "20"}}

	out := pagination.Sorted(items, pagination.SortSpec{Field: "price", Direction: "asc"}, field)

	assert.Equal(t, "9.5", out[0].price)
	assert.Equal(t, "20", out[1].price)
	assert.Equal(t, "100", out[2].price)
}

func TestSorted_UnparsablePriceSortsAsZero(t *testing.T) {
	items := []item{{"a", "3"}, {"b", "n/a"}, {"c", "-1"}}

	out := pagination.Sorted(items, pagination.SortSpec{Field: "price", Direction: "asc"}, field)

	assert.Equal(t, []string{"c", "b", "a"}, []string{out[0].name, out[1].name, out[2].name})
}

func TestSorted_NameIsStable(t *testing.T) {
	items := []item{{"Mouse", "1"}, {"Laptop", "2"}, {"Mouse", "3"}, {"Keyboard", "4"}}

	asc := pagination.Sorted(items, pagination.SortSpec{Field: "name", Direction: "asc"}, field)
	assert.Equal(t, []string{"4", "2", "1", "3"}, []string{asc[0].price, asc[1].price, asc[2].price, asc[3].price})

	desc := pagination.Sorted(items, pagination.SortSpec{Field: "name", Direction: "desc"}, field)
	assert.Equal(t, []string{"1", "3", "2", "4"}, []string{desc[0].price, desc[1].price, desc[2].price, desc[3].price})
}
