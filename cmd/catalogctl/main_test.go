package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"katalog/internal/events"
	"katalog/internal/models"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/products", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "6", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data":[` +
			`{"id":"a","name":"Desk","sku":"D-1","price":120,"stock":2,"category":"office"},` +
			`{"id":"b","name":"Chair","sku":"C-1","price":80.5,"stock":0,"category":"office"}` +
			`],"pagination":{"page":2,"limit":6,"total":8,"totalPages":2}}`))
	})
	mux.HandleFunc("/products/a", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":"a","name":"Desk"}}`))
	})
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "password123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid credentials","details":{}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"t.o.k","user":{"id":"1","username":"editor","role":"editor"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(viper.New())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	srv := catalogServer(t)

	out, err := run(t, "list", "--url", srv.URL, "--api-key", "k", "--page", "2", "--limit", "6", "--sort", "price:asc")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Chair")
	assert.Contains(t, lines[1], "80.5")
	assert.Contains(t, lines[2], "Desk")
	assert.Equal(t, "page 2  prev: yes  next: no", lines[4])
}

func TestListCommand_RejectsBadInput(t *testing.T) {
	_, err := run(t, "list", "--format", "yaml")
	assert.Error(t, err)

	_, err = run(t, "list", "--sort", "stock:asc")
	assert.Error(t, err)

	_, err = run(t, "list", "--page", "0")
	assert.Error(t, err)
}

func TestGetCommand(t *testing.T) {
	srv := catalogServer(t)

	out, err := run(t, "get", "a", "--url", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "id: a\nname: Desk\n", out)

	out, err = run(t, "get", "a", "--url", srv.URL, "--raw")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"data\": {\n    \"id\": \"a\",\n    \"name\": \"Desk\"\n  }\n}\n", out)
}

func TestLoginCommand(t *testing.T) {
	srv := catalogServer(t)

	out, err := run(t, "login", "editor", "--url", srv.URL, "--password", "password123")
	require.NoError(t, err)
	assert.Equal(t, "t.o.k\n", out)

	_, err = run(t, "login", "editor", "--url", srv.URL, "--password", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestPrintEvent(t *testing.T) {
	var out bytes.Buffer
	handle := printEvent(&out)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	created, err := json.Marshal(events.ProductEvent{
		Type:       events.ProductCreated,
		ProductID:  "p1",
		SKU:        "SKU-1",
		OccurredAt: at,
		Product:    &models.Product{ID: "p1", Name: "Lamp", SKU: "SKU-1", Price: decimal.RequireFromString("19.99")},
	})
	require.NoError(t, err)
	deleted, err := json.Marshal(events.ProductEvent{Type: events.ProductDeleted, ProductID: "p1", SKU: "SKU-1", OccurredAt: at})
	require.NoError(t, err)

	require.NoError(t, handle(created))
	require.NoError(t, handle(deleted))
	assert.Error(t, handle([]byte("not json")))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2024-05-01T12:00:00Z  product.created  p1  SKU-1  Lamp @ 19.99", lines[0])
	assert.Equal(t, "2024-05-01T12:00:00Z  product.deleted  p1  SKU-1", lines[1])
}
