// Package pagination computes server-side page windows and the client-side
// ordering of a fetched page.
package pagination

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Params is a requested page window.
type Params struct {
	Page  int
	Limit int
}

// PageInfo describes the window that was served.
type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ParseParams reads raw query values. Only the leading integer of each value
// counts, so "2abc" reads as 2. Values without one, and zero, fall back to
// the defaults. Negative values are passed through unchanged.
func ParseParams(rawPage, rawLimit string) Params {
	return Params{
		Page:  parseOrDefault(rawPage, DefaultPage),
		Limit: parseOrDefault(rawLimit, DefaultLimit),
	}
}

func parseOrDefault(raw string, def int) int {
	n, err := strconv.Atoi(leadingInt(raw))
	if err != nil || n == 0 {
		return def
	}
	return n
}

// leadingInt returns the optionally signed digits at the start of s after
// any leading whitespace.
func leadingInt(s string) string {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return ""
	}
	return s[:end]
}

// Offset is the index of the first record in the window.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Info derives the PageInfo for a window over total matching records.
func (p Params) Info(total int64) PageInfo {
	return PageInfo{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: TotalPages(total, p.Limit),
	}
}

// TotalPages returns ceil(total/limit). A zero limit yields zero pages.
func TotalPages(total int64, limit int) int {
	if limit == 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
