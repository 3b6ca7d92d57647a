package pagination

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Sort fields and directions understood by ParseSort.
const (
	FieldName  = "name"
	FieldPrice = "price"

	Asc  = "asc"
	Desc = "desc"
)

// DefaultSort is the ordering used when none is selected.
var DefaultSort = SortSpec{Field: FieldName, Direction: Asc}

// SortOptions lists every accepted field:direction token.
var SortOptions = []string{"name:asc", "name:desc", "price:asc", "price:desc"}

// SortSpec is a compound field:direction selection.
type SortSpec struct {
	Field     string
	Direction string
}

func (s SortSpec) String() string {
	return s.Field + ":" + s.Direction
}

// ParseSort parses a token such as "price:desc".
func ParseSort(token string) (SortSpec, error) {
	field, dir, ok := strings.Cut(strings.TrimSpace(token), ":")
	if !ok {
		return SortSpec{}, fmt.Errorf("invalid sort %q: expected field:direction", token)
	}
	field = strings.ToLower(field)
	dir = strings.ToLower(dir)
	if field != FieldName && field != FieldPrice {
		return SortSpec{}, fmt.Errorf("invalid sort field %q", field)
	}
	if dir != Asc && dir != Desc {
		return SortSpec{}, fmt.Errorf("invalid sort direction %q", dir)
	}
	return SortSpec{Field: field, Direction: dir}, nil
}

// Sorted returns a stably reordered copy of items. value extracts the raw
// text of a field from an item; prices that do not parse as numbers
// sort as zero.
func Sorted[T any](items []T, spec SortSpec, value func(item T, field string) string) []T {
	out := make([]T, len(items))
	copy(out, items)

	desc := spec.Direction == Desc
	switch spec.Field {
	case FieldName:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := value(out[i], FieldName), value(out[j], FieldName)
			if desc {
				return a > b
			}
			return a < b
		})
	case FieldPrice:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := numeric(value(out[i], FieldPrice)), numeric(value(out[j], FieldPrice))
			if desc {
				return a > b
			}
			return a < b
		})
	}
	return out
}

func numeric(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
