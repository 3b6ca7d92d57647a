// Package client consumes the catalog HTTP API in either representation.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"katalog/internal/codec"
	"katalog/internal/models"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Format selects the representation requested from the catalog.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

const (
	apiKeyHeader   = "x-api-key"
	defaultTimeout = 10 * time.Second
)

// ErrRecordNotFound is returned when a markup detail response holds no
// record with the requested id.
var ErrRecordNotFound = errors.New("client: record not found in response")

// ParseFormat accepts "json" or "xml" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatXML:
		return FormatXML, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

func (f Format) accept() string {
	if f == FormatXML {
		return "application/xml"
	}
	return "application/json"
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("catalog: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("catalog: status %d %s: %s", e.Status, e.Code, e.Message)
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client talks to one catalog server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Client. A nil HTTPClient gets one bounded by Timeout.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: cfg.HTTPClient,
		logger:     cfg.Logger,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// Page is one fetched window of records.
type Page struct {
	Format  Format
	Records []codec.Record
	// Pagination is nil when the response carried no pagination block.
	Pagination codec.Record
	Raw        []byte
}

// TotalPages reports the server's page count, if the response carried one.
func (p *Page) TotalPages() (int, bool) {
	if p == nil || p.Pagination == nil {
		return 0, false
	}
	n, err := strconv.Atoi(p.Pagination.Get("totalPages"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Login exchanges credentials for a signed token.
func (c *Client) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	body, err := json.Marshal(models.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal login request: %w", err)
	}
	raw, err := c.do(ctx, http.MethodPost, "/auth/login", FormatJSON, body)
	if err != nil {
		return nil, err
	}
	var res models.LoginResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	return &res, nil
}

// ListProducts fetches one page of products in the given format.
func (c *Client) ListProducts(ctx context.Context, page, limit int, format Format) (*Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	raw, err := c.do(ctx, http.MethodGet, "/products?"+q.Encode(), format, nil)
	if err != nil {
		return nil, err
	}

	out := &Page{Format: format, Raw: raw}
	if format == FormatXML {
		doc := codec.DecodeXML(string(raw))
		out.Records = canonicalAll(doc.Records)
		out.Pagination = doc.Pagination
		return out, nil
	}

	var body struct {
		Data       []map[string]interface{} `json:"data"`
		Pagination map[string]interface{}   `json:"pagination"`
	}
	if err := decodeNumbers(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode product list: %w", err)
	}
	records := make([]codec.Record, 0, len(body.Data))
	for _, item := range body.Data {
		records = append(records, flatten(item))
	}
	out.Records = canonicalAll(records)
	if body.Pagination != nil {
		out.Pagination = flatten(body.Pagination)
	}
	return out, nil
}

// GetProduct fetches a single product in the given format.
func (c *Client) GetProduct(ctx context.Context, id string, format Format) (*Detail, error) {
	raw, err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), format, nil)
	if err != nil {
		return nil, err
	}

	if format == FormatXML {
		for _, rec := range codec.DecodeXML(string(raw)).Records {
			if rec := codec.Canonical(rec); rec.Get("id") == id {
				return &Detail{Format: format, Text: string(raw), Tree: rec}, nil
			}
		}
		return nil, ErrRecordNotFound
	}

	var body map[string]interface{}
	if err := decodeNumbers(raw, &body); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent product: %w", err)
	}
	var tree interface{} = body
	if data, ok := body["data"]; ok {
		tree = data
	}
	return &Detail{Format: format, Text: pretty.String(), Tree: tree}, nil
}

func (c *Client) do(ctx context.Context, method, path string, format Format, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", format.accept())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	c.logger.Debug("catalog request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp.StatusCode, raw)
	}
	return raw, nil
}

func apiError(status int, raw []byte) *APIError {
	var env models.ErrorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Error.Message == "" {
		return &APIError{Status: status, Message: http.StatusText(status)}
	}
	return &APIError{Status: status, Code: env.Error.Code, Message: env.Error.Message}
}

func decodeNumbers(raw []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func canonicalAll(records []codec.Record) []codec.Record {
	out := make([]codec.Record, len(records))
	for i, r := range records {
		out[i] = codec.Canonical(r)
	}
	return out
}

// flatten turns a decoded object into a text record. Nested values keep
// their compact JSON encoding.
func flatten(m map[string]interface{}) codec.Record {
	rec := make(codec.Record, len(m))
	for k, v := range m {
		rec[k] = scalarText(v)
	}
	return rec
}

func scalarText(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
