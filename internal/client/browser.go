package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"katalog/internal/codec"
	"katalog/internal/pagination"
)

// DefaultPageSize is the initial page size of a Browser.
const DefaultPageSize = 12

// PageSizes are the suggested page size choices.
var PageSizes = []int{6, 12, 24, 48}

// ErrStale is returned by a fetch that was superseded by a newer one.
var ErrStale = errors.New("client: response superseded by a newer request")

type loadedPage struct {
	page  int
	limit int
	res   *Page
}

// Browser keeps the listing state of one consumer: page cursor, page size,
// format and sort. It is safe for concurrent use. Every fetch cancels the
// previous in-flight fetch of the same kind and only the latest one lands.
// Moving the cursor or changing the page size or format also discards an
// in-flight list fetch.
type Browser struct {
	client *Client

	listGen   atomic.Uint64
	detailGen atomic.Uint64

	mu           sync.Mutex
	page         int
	pageSize     int
	format       Format
	sort         pagination.SortSpec
	listCancel   context.CancelFunc
	detailCancel context.CancelFunc
	loaded       *loadedPage
}

// NewBrowser starts on page 1 with the default page size, JSON and name:asc.
func NewBrowser(c *Client) *Browser {
	return &Browser{
		client:   c,
		page:     1,
		pageSize: DefaultPageSize,
		format:   FormatJSON,
		sort:     pagination.DefaultSort,
	}
}

// Page returns the page under the cursor.
func (b *Browser) Page() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// PageSize returns the requested page size.
func (b *Browser) PageSize() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pageSize
}

// Format returns the representation requested on the next fetch.
func (b *Browser) Format() Format {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.format
}

// Sort returns the ordering applied to the loaded page.
func (b *Browser) Sort() pagination.SortSpec {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sort
}

// SetPage moves the cursor directly to page n.
func (b *Browser) SetPage(n int) error {
	if n < 1 {
		return fmt.Errorf("invalid page %d", n)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = n
	b.invalidateListLocked()
	return nil
}

// SetFormat changes the representation and returns to page 1.
func (b *Browser) SetFormat(f Format) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.format = f
	b.page = 1
	b.invalidateListLocked()
}

// SetPageSize changes the page size and returns to page 1.
func (b *Browser) SetPageSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("invalid page size %d", n)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pageSize = n
	b.page = 1
	b.invalidateListLocked()
	return nil
}

// SetSort selects the ordering of the fetched page. It never re-fetches.
func (b *Browser) SetSort(token string) error {
	spec, err := pagination.ParseSort(token)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sort = spec
	return nil
}

// HasNext reports whether a page after the cursor exists. It trusts the
// server's totalPages when present and otherwise assumes more data whenever
// the loaded page was full. Nothing is known until a page of the current
// size has been loaded.
func (b *Browser) HasNext() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hasNextLocked()
}

func (b *Browser) hasNextLocked() bool {
	if b.loaded == nil || b.loaded.limit != b.pageSize {
		return false
	}
	if total, ok := b.loaded.res.TotalPages(); ok {
		return b.page < total
	}
	if b.page < b.loaded.page {
		return true
	}
	return b.page == b.loaded.page && len(b.loaded.res.Records) >= b.loaded.limit
}

// HasPrev reports whether the cursor is past page 1.
func (b *Browser) HasPrev() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page > 1
}

// Next advances the cursor when HasNext allows it.
func (b *Browser) Next() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasNextLocked() {
		return false
	}
	b.page++
	b.invalidateListLocked()
	return true
}

// Prev moves the cursor back one page when possible.
func (b *Browser) Prev() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page <= 1 {
		return false
	}
	b.page--
	b.invalidateListLocked()
	return true
}

// invalidateListLocked discards any in-flight list fetch: it is cancelled and
// its result, should one still arrive, is reported as ErrStale.
func (b *Browser) invalidateListLocked() {
	b.listGen.Add(1)
	if b.listCancel != nil {
		b.listCancel()
		b.listCancel = nil
	}
}

// Load fetches the page under the cursor and returns its records in the
// selected order.
func (b *Browser) Load(ctx context.Context) ([]codec.Record, error) {
	b.mu.Lock()
	gen := b.listGen.Add(1)
	if b.listCancel != nil {
		b.listCancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	b.listCancel = cancel
	page, limit, format := b.page, b.pageSize, b.format
	b.mu.Unlock()
	defer cancel()

	res, err := b.client.ListProducts(ctx, page, limit, format)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.listGen.Load() {
		return nil, ErrStale
	}
	b.listCancel = nil
	if err != nil {
		return nil, err
	}
	b.loaded = &loadedPage{page: page, limit: limit, res: res}
	return b.itemsLocked(), nil
}

// Items returns the loaded records in the selected order.
func (b *Browser) Items() []codec.Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.itemsLocked()
}

func (b *Browser) itemsLocked() []codec.Record {
	if b.loaded == nil {
		return nil
	}
	return pagination.Sorted(b.loaded.res.Records, b.sort, func(r codec.Record, field string) string {
		return r.Get(field)
	})
}

// Detail fetches one record in the current format.
func (b *Browser) Detail(ctx context.Context, id string) (*Detail, error) {
	b.mu.Lock()
	gen := b.detailGen.Add(1)
	if b.detailCancel != nil {
		b.detailCancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	b.detailCancel = cancel
	format := b.format
	b.mu.Unlock()
	defer cancel()

	d, err := b.client.GetProduct(ctx, id, format)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.detailGen.Load() {
		return nil, ErrStale
	}
	b.detailCancel = nil
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Stop cancels any in-flight fetch.
func (b *Browser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listCancel != nil {
		b.listCancel()
		b.listCancel = nil
	}
	if b.detailCancel != nil {
		b.detailCancel()
		b.detailCancel = nil
	}
}
