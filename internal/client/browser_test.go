package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"katalog/internal/client"
	"katalog/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func names(t *testing.T, b *client.Browser) []string {
	t.Helper()
	var out []string
	for _, r := range b.Items() {
		out = append(out, r.Get("name"))
	}
	return out
}

func TestBrowser_Defaults(t *testing.T) {
	b := client.NewBrowser(client.New(client.Config{BaseURL: "http://unused"}))

	assert.Equal(t, 1, b.Page())
	assert.Equal(t, client.DefaultPageSize, b.PageSize())
	assert.Equal(t, client.FormatJSON, b.Format())
	assert.Equal(t, pagination.DefaultSort, b.Sort())
	assert.False(t, b.HasNext())
	assert.False(t, b.HasPrev())
	assert.Nil(t, b.Items())
	assert.Contains(t, client.PageSizes, client.DefaultPageSize)
}

func TestBrowser_SettingsResetPage(t *testing.T) {
	srv := httptest.NewServer(newFakeCatalog(20))
	defer srv.Close()
	c := newTestClient(t, srv)
	defer c.Close()
	b := client.NewBrowser(c)

	require.NoError(t, b.SetPageSize(6))
	_, err := b.Load(context.Background())
	require.NoError(t, err)
	require.True(t, b.Next())
	assert.Equal(t, 2, b.Page())

	b.SetFormat(client.FormatXML)
	assert.Equal(t, 1, b.Page())

	require.True(t, b.Next())
	require.NoError(t, b.SetPageSize(24))
	assert.Equal(t, 1, b.Page())

	assert.Error(t, b.SetPageSize(0))
	assert.Equal(t, 24, b.PageSize())

	require.NoError(t, b.SetSort("price:desc"))
	assert.Error(t, b.SetSort("stock:asc"))
	assert.Equal(t, pagination.SortSpec{Field: pagination.FieldPrice, Direction: pagination.Desc}, b.Sort())
}

func TestBrowser_SortReordersLoadedPageOnly(t *testing.T) {
	fc := newFakeCatalog(3)
	fc.products[0]["price"] = 30
	fc.products[1]["price"] = 5.5
	fc.products[2]["price"] = 100
	srv := httptest.NewServer(fc)
	defer srv.Close()
	c := newTestClient(t, srv)
	defer c.Close()
	b := client.NewBrowser(c)

	items, err := b.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"Product A", "Product B", "Product C"}, names(t, b))

	require.NoError(t, b.SetSort("price:desc"))
	assert.Equal(t, []string{"Product C", "Product A", "Product B"}, names(t, b))

	require.NoError(t, b.SetSort("price:asc"))
	assert.Equal(t, []string{"Product B", "Product A", "Product C"}, names(t, b))

	require.NoError(t, b.SetSort("name:desc"))
	assert.Equal(t, []string{"Product C", "Product B", "Product A"}, names(t, b))
}

func TestBrowser_HasNextUsesTotalPages(t *testing.T) {
	// 12 records with a page size of 6: the second page is exactly full.
	srv := httptest.NewServer(newFakeCatalog(12))
	defer srv.Close()
	c := newTestClient(t, srv)
	defer c.Close()
	b := client.NewBrowser(c)
	require.NoError(t, b.SetPageSize(6))

	_, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, b.HasNext())
	assert.False(t, b.HasPrev())

	require.True(t, b.Next())
	items, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 6)
	assert.False(t, b.HasNext())
	assert.False(t, b.Next())
	assert.True(t, b.HasPrev())

	require.True(t, b.Prev())
	assert.Equal(t, 1, b.Page())
	assert.False(t, b.Prev())
}

func TestBrowser_HasNextShortPageHeuristic(t *testing.T) {
	fc := newFakeCatalog(8)
	fc.xmlPagination = false
	srv := httptest.NewServer(fc)
	defer srv.Close()
	c := newTestClient(t, srv)
	defer c.Close()
	b := client.NewBrowser(c)
	b.SetFormat(client.FormatXML)
	require.NoError(t, b.SetPageSize(6))

	_, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, b.HasNext(), "a full page suggests more data")

	require.True(t, b.Next())
	items, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.False(t, b.HasNext(), "a short page ends the listing")
}

func TestBrowser_EmptyCatalog(t *testing.T) {
	srv := httptest.NewServer(newFakeCatalog(0))
	defer srv.Close()
	c := newTestClient(t, srv)
	defer c.Close()
	b := client.NewBrowser(c)

	items, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.False(t, b.HasNext())
}

func TestBrowser_NewerLoadSupersedesInFlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") == "application/json" {
			close(started)
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
			return
		}
		_, _ = w.Write([]byte("<data><id>1</id><name>Fresh</name></data>"))
	}))
	defer srv.Close()
	c := newTestClient(t, srv)
	defer c.Close()
	b := client.NewBrowser(c)

	errc := make(chan error, 1)
	go func() {
		_, err := b.Load(context.Background())
		errc <- err
	}()
	<-started

	b.SetFormat(client.FormatXML)
	items, err := b.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Fresh", items[0].Get("name"))

	assert.ErrorIs(t, <-errc, client.ErrStale)
	assert.Equal(t, []string{"Fresh"}, names(t, b))
}

func TestBrowser_StaleDetailIsDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/products/slow" {
			close(started)
			<-r.Context().Done()
			return
		}
		_, _ = w.Write([]byte(`{"data":{"id":"fast"}}`))
	}))
	defer srv.Close()
	c := newTestClient(t, srv)
	defer c.Close()
	b := client.NewBrowser(c)

	errc := make(chan error, 1)
	go func() {
		_, err := b.Detail(context.Background(), "slow")
		errc <- err
	}()
	<-started

	d, err := b.Detail(context.Background(), "fast")
	require.NoError(t, err)
	assert.Equal(t, "id: fast", d.Render())
	assert.ErrorIs(t, <-errc, client.ErrStale)
}

func TestBrowser_Stop(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()
	c := newTestClient(t, srv)
	defer c.Close()
	b := client.NewBrowser(c)

	errc := make(chan error, 1)
	go func() {
		_, err := b.Load(context.Background())
		errc <- err
	}()
	<-started
	b.Stop()

	assert.ErrorIs(t, <-errc, context.Canceled)
	assert.Nil(t, b.Items())
}

func TestBrowser_CursorChangeDiscardsInFlightLoad(t *testing.T) {
	defer goleak.VerifyNone(t)

	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()
	c := newTestClient(t, srv)
	defer c.Close()
	b := client.NewBrowser(c)

	errc := make(chan error, 1)
	go func() {
		_, err := b.Load(context.Background())
		errc <- err
	}()
	<-started

	require.NoError(t, b.SetPage(2))

	assert.ErrorIs(t, <-errc, client.ErrStale)
	assert.Equal(t, 2, b.Page())
	assert.Nil(t, b.Items(), "page 1 data must not land under a page 2 cursor")
}

func TestBrowser_SettingChangesDiscardLateResponse(t *testing.T) {
	tests := []struct {
		name   string
		change func(b *client.Browser) error
	}{
		{"page size", func(b *client.Browser) error { return b.SetPageSize(24) }},
		{"format", func(b *client.Browser) error { b.SetFormat(client.FormatXML); return nil }},
		{"prev", func(b *client.Browser) error {
			if !b.Prev() {
				return assert.AnError
			}
			return nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			release := make(chan struct{})
			started := make(chan struct{}, 1)
			fc := newFakeCatalog(20)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				started <- struct{}{}
				<-release
				fc.ServeHTTP(w, r)
			}))
			defer srv.Close()
			c := newTestClient(t, srv)
			defer c.Close()
			b := client.NewBrowser(c)
			require.NoError(t, b.SetPage(2))

			errc := make(chan error, 1)
			go func() {
				_, err := b.Load(context.Background())
				errc <- err
			}()
			<-started
			require.NoError(t, tt.change(b))
			close(release)

			assert.ErrorIs(t, <-errc, client.ErrStale)
			assert.Nil(t, b.Items())
		})
	}
}

func TestBrowser_NextAdvancesFromCursor(t *testing.T) {
	srv := httptest.NewServer(newFakeCatalog(20))
	defer srv.Close()
	c := newTestClient(t, srv)
	defer c.Close()
	b := client.NewBrowser(c)
	require.NoError(t, b.SetPageSize(6))
	require.NoError(t, b.SetPage(3))

	_, err := b.Load(context.Background())
	require.NoError(t, err)

	require.True(t, b.Prev())
	assert.Equal(t, 2, b.Page())
	require.True(t, b.Next())
	assert.Equal(t, 3, b.Page(), "next returns to the page after the cursor")

	require.True(t, b.Next())
	assert.Equal(t, 4, b.Page())
	assert.False(t, b.Next(), "20 records at 6 per page end on page 4")
}

func TestBrowser_HasNextUnknownAfterPageSizeChange(t *testing.T) {
	srv := httptest.NewServer(newFakeCatalog(20))
	defer srv.Close()
	c := newTestClient(t, srv)
	defer c.Close()
	b := client.NewBrowser(c)
	require.NoError(t, b.SetPageSize(6))

	_, err := b.Load(context.Background())
	require.NoError(t, err)
	require.True(t, b.HasNext())

	require.NoError(t, b.SetPageSize(48))
	assert.False(t, b.HasNext())

	_, err = b.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, b.HasNext(), "20 records fit one page of 48")
}
