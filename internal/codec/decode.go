package codec

import (
	"html"
	"regexp"
	"strings"
)

// Container tags located by DecodeXML.
const (
	RecordTag     = "data"
	PaginationTag = "pagination"
)

// Record is a decoded field-name to text mapping. No schema is applied.
type Record map[string]string

// Document is the result of decoding a markup response.
type Document struct {
	Records []Record
	// Pagination is nil when the document carried no pagination block.
	Pagination Record
}

var openTag = regexp.MustCompile(`<([A-Za-z0-9_]+)>`)

// DecodeXML extracts every <data> block as a record and the first
// <pagination> block, if any. It never fails: unclosed, malformed and
// unknown tags are skipped or kept as plain fields, values stay text, and a
// repeated field overwrites the earlier one.
func DecodeXML(doc string) Document {
	var out Document
	for _, inner := range blocks(doc, RecordTag) {
		out.Records = append(out.Records, fields(inner))
	}
	if pag := blocks(doc, PaginationTag); len(pag) > 0 {
		out.Pagination = fields(pag[0])
	}
	return out
}

// blocks returns the content of each <tag>...</tag> pair, pairing every
// opening tag with the nearest closing tag after it.
func blocks(doc, tag string) []string {
	opening, closing := "<"+tag+">", "</"+tag+">"
	var out []string
	for pos := 0; ; {
		start := strings.Index(doc[pos:], opening)
		if start < 0 {
			return out
		}
		contentStart := pos + start + len(opening)
		end := strings.Index(doc[contentStart:], closing)
		if end < 0 {
			return out
		}
		out = append(out, doc[contentStart:contentStart+end])
		pos = contentStart + end + len(closing)
	}
}

// fields reads the immediate child elements of a block.
func fields(inner string) Record {
	rec := Record{}
	for pos := 0; pos < len(inner); {
		loc := openTag.FindStringSubmatchIndex(inner[pos:])
		if loc == nil {
			break
		}
		name := inner[pos+loc[2] : pos+loc[3]]
		contentStart := pos + loc[1]
		end := strings.Index(inner[contentStart:], "</"+name+">")
		if end < 0 {
			pos += loc[0] + 1
			continue
		}
		rec[name] = html.UnescapeString(inner[contentStart : contentStart+end])
		pos = contentStart + end + len(name) + 3
	}
	return rec
}
