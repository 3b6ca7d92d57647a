package codec

import (
	"sort"
	"strings"
)

// aliases maps lower-cased field spellings seen from older producers onto
// the canonical product field names.
var aliases = map[string]string{
	"nombre": "name",
	"precio": "price",
}

// Canonical returns a copy of r with lower-cased keys and known aliases
// folded onto their canonical name. A key already spelled canonically wins
// over any alias or differently-cased variant; other collisions resolve in
// key order.
func Canonical(r Record) Record {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Record, len(r))
	exact := make(map[string]bool, len(r))
	for _, k := range keys {
		v := r[k]
		key := strings.ToLower(k)
		if canon, ok := aliases[key]; ok {
			key = canon
		}
		if k == key {
			exact[key] = true
			out[key] = v
			continue
		}
		if !exact[key] {
			out[key] = v
		}
	}
	return out
}

// Get returns the value of field, or "" when absent.
func (r Record) Get(field string) string {
	return r[field]
}
