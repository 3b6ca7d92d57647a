package client

import (
	"strconv"
	"strings"

	"katalog/internal/codec"
)

const treeIndent = "  "

// Detail is a single fetched record. It is owned by one caller and is not
// safe for concurrent use.
type Detail struct {
	Format Format
	// Text is the encoded response: indented JSON or the markup as received.
	Text string
	// Tree is the decoded record: a JSON value or a codec.Record.
	Tree interface{}

	raw bool
}

// ToggleRaw switches between the tree and raw views and reports whether the
// raw view is now active.
func (d *Detail) ToggleRaw() bool {
	d.raw = !d.raw
	return d.raw
}

// ShowingRaw reports whether Render returns the raw text.
func (d *Detail) ShowingRaw() bool {
	return d.raw
}

// Render returns the active view.
func (d *Detail) Render() string {
	if d.raw {
		return d.Text
	}
	var b strings.Builder
	writeTree(&b, d.Tree, 0)
	return strings.TrimRight(b.String(), "\n")
}

// writeTree unfolds nested objects and arrays one indentation level per
// depth. Object keys are written in sorted order.
func writeTree(b *strings.Builder, v interface{}, depth int) {
	switch t := v.(type) {
	case map[string]interface{}:
		for _, k := range sortedKeys(t) {
			writeEntry(b, k, t[k], depth)
		}
	case codec.Record:
		for _, k := range sortedKeys(t) {
			writeEntry(b, k, t[k], depth)
		}
	case []interface{}:
		for i, item := range t {
			writeEntry(b, "["+strconv.Itoa(i)+"]", item, depth)
		}
	default:
		b.WriteString(strings.Repeat(treeIndent, depth))
		b.WriteString(leafText(v))
		b.WriteByte('\n')
	}
}

func writeEntry(b *strings.Builder, key string, v interface{}, depth int) {
	b.WriteString(strings.Repeat(treeIndent, depth))
	b.WriteString(key)
	b.WriteByte(':')
	switch t := v.(type) {
	case map[string]interface{}, []interface{}:
		b.WriteByte('\n')
		writeTree(b, t, depth+1)
	default:
		b.WriteByte(' ')
		b.WriteString(leafText(v))
		b.WriteByte('\n')
	}
}

func leafText(v interface{}) string {
	if v == nil {
		return "null"
	}
	return scalarText(v)
}
