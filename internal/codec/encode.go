// Package codec converts response envelopes to the nested markup format and
// reads that format back into loosely typed records.
package codec

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

const indentUnit = "    "

// ErrNotObject is returned when the value to encode is not a JSON object.
var ErrNotObject = errors.New("codec: top-level value must encode to an object")

// EncodeXML renders v as a root-less XML fragment: one element per object
// key, array values repeated as siblings of the same name and nested objects
// expanded recursively. Key order follows the JSON encoding of v.
func EncodeXML(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: marshal: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("codec: read: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotObject
	}

	w := &xmlWriter{dec: dec}
	if err := w.members(0); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(w.buf.Bytes(), []byte("\n")), nil
}

type xmlWriter struct {
	dec *json.Decoder
	buf bytes.Buffer
}

// members writes every key of the object whose '{' was just consumed, then
// consumes the closing '}'.
func (w *xmlWriter) members(depth int) error {
	for w.dec.More() {
		tok, err := w.dec.Token()
		if err != nil {
			return fmt.Errorf("codec: read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("codec: unexpected key token %v", tok)
		}
		if err := w.value(elementName(key), depth); err != nil {
			return err
		}
	}
	_, err := w.dec.Token()
	return err
}

func (w *xmlWriter) value(name string, depth int) error {
	tok, err := w.dec.Token()
	if err != nil {
		return fmt.Errorf("codec: read value of %q: %w", name, err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			if !w.dec.More() {
				w.leaf(name, "", depth)
				_, err := w.dec.Token()
				return err
			}
			w.line(depth, "<"+name+">")
			if err := w.members(depth + 1); err != nil {
				return err
			}
			w.line(depth, "</"+name+">")
			return nil
		case '[':
			for w.dec.More() {
				if err := w.value(name, depth); err != nil {
					return err
				}
			}
			_, err := w.dec.Token()
			return err
		default:
			return fmt.Errorf("codec: unexpected delimiter %v", t)
		}
	case nil:
		w.leaf(name, "", depth)
	case string:
		w.leaf(name, t, depth)
	case json.Number:
		w.leaf(name, t.String(), depth)
	case bool:
		if t {
			w.leaf(name, "true", depth)
		} else {
			w.leaf(name, "false", depth)
		}
	default:
		return fmt.Errorf("codec: unsupported token %T", tok)
	}
	return nil
}

func (w *xmlWriter) leaf(name, text string, depth int) {
	w.buf.WriteString(strings.Repeat(indentUnit, depth))
	w.buf.WriteString("<" + name + ">")
	_ = xml.EscapeText(&w.buf, []byte(text))
	w.buf.WriteString("</" + name + ">\n")
}

func (w *xmlWriter) line(depth int, s string) {
	w.buf.WriteString(strings.Repeat(indentUnit, depth))
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

// elementName maps a JSON key onto the tag alphabet the decoder accepts.
func elementName(key string) string {
	if key == "" {
		return "_"
	}
	b := []byte(key)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			b[i] = '_'
		}
	}
	return string(b)
}
