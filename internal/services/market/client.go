// Package market implements the HTTP client for the marketplace backend:
// category directory fetches, product create/update, media uploads, and media
// deletion.
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"wares/internal/catalog"
	"wares/internal/services"
)

// MediaRecord is one server-side media entry attached to a product.
type MediaRecord struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

// ProductPayload is the create/update request body. Attribute values are sent
// as a flat string map; checkbox selections arrive pre-joined.
type ProductPayload struct {
	CategoryID    string            `json:"category_id"`
	SubcategoryID string            `json:"subcategory_id,omitempty"`
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Manufacturer  string            `json:"manufacturer,omitempty"`
	Model         string            `json:"model,omitempty"`
	Price         float64           `json:"price"`
	TypeTags      []string          `json:"type_tags"`
	DirectSale    bool              `json:"direct_sale"`
	HidePrice     bool              `json:"hide_price"`
	OnlinePayment bool              `json:"online_payment"`
	StockQuantity int               `json:"stock_quantity"`
	OwnerID       string            `json:"owner_id"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	VideoLinks    []string          `json:"video_links,omitempty"`
}

// Product is the backend's view of a listing, including its media list in
// server order.
type Product struct {
	ID            int64         `json:"id"`
	CategoryID    string        `json:"category_id"`
	SubcategoryID string        `json:"subcategory_id,omitempty"`
	Name          string        `json:"name"`
	Media         []MediaRecord `json:"media"`
}

// ImageUpload is one file of an ordered image batch.
type ImageUpload struct {
	Filename string
	Reader   io.Reader
}

// API defines the backend operations the authoring flow depends on.
type API interface {
	Categories(ctx context.Context) ([]catalog.Category, error)
	CreateProduct(ctx context.Context, payload ProductPayload) (*Product, error)
	UpdateProduct(ctx context.Context, id int64, payload ProductPayload) (*Product, error)
	UploadBrochure(ctx context.Context, productID int64, filename string, r io.Reader) (*MediaRecord, error)
	UploadImages(ctx context.Context, productID int64, files []ImageUpload) ([]MediaRecord, error)
	DeleteMedia(ctx context.Context, productID int64, mediaIDs []int64) error
	Product(ctx context.Context, id int64) (*Product, error)
}

// Client talks to the marketplace backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ API = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a marketplace client.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("marketplace base url required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("marketplace api token required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Categories fetches the full category directory, including subcategories and
// their attribute schemas.
func (c *Client) Categories(ctx context.Context) ([]catalog.Category, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/categories", nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, "fetch categories"); err != nil {
		return nil, err
	}
	var categories []catalog.Category
	if err := json.NewDecoder(resp.Body).Decode(&categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return categories, nil
}

// CreateProduct creates a new product and returns the server record with its
// assigned id.
func (c *Client) CreateProduct(ctx context.Context, payload ProductPayload) (*Product, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode product payload: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/products", bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, "create product"); err != nil {
		return nil, err
	}
	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("decode created product: %w", err)
	}
	return &product, nil
}

// UpdateProduct updates an existing product's base fields.
func (c *Client) UpdateProduct(ctx context.Context, id int64, payload ProductPayload) (*Product, error) {
	if id <= 0 {
		return nil, errors.New("product id must be positive")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode product payload: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPatch, fmt.Sprintf("/products/%d", id), bytes.NewReader(body), "application/json")
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, "update product"); err != nil {
		return nil, err
	}
	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("decode updated product: %w", err)
	}
	return &product, nil
}

// UploadBrochure sends the brochure document as a multipart upload and
// returns the created media record. The backend keeps at most one brochure
// and replaces any existing one.
func (c *Client) UploadBrochure(ctx context.Context, productID int64, filename string, r io.Reader) (*MediaRecord, error) {
	if productID <= 0 {
		return nil, errors.New("product id must be positive")
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("brochure", filename)
	if err != nil {
		return nil, fmt.Errorf("build brochure form: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read brochure file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize brochure form: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/products/%d/brochure", productID), &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload brochure: %w", err)
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, "upload brochure"); err != nil {
		return nil, err
	}
	var record MediaRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode brochure record: %w", err)
	}
	return &record, nil
}

// UploadImages sends a batch of images in one multipart request. Part order is
// preserved server-side, so the first file becomes the primary image. The
// response lists the created media records in the same order.
func (c *Client) UploadImages(ctx context.Context, productID int64, files []ImageUpload) ([]MediaRecord, error) {
	if productID <= 0 {
		return nil, errors.New("product id must be positive")
	}
	if len(files) == 0 {
		return nil, errors.New("image batch must not be empty")
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, file := range files {
		part, err := writer.CreateFormFile("images", file.Filename)
		if err != nil {
			return nil, fmt.Errorf("build image form: %w", err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return nil, fmt.Errorf("read image file %s: %w", file.Filename, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize image form: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/products/%d/images", productID), &buf, writer.FormDataContentType())
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload images: %w", err)
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, "upload images"); err != nil {
		return nil, err
	}
	var records []MediaRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode uploaded media: %w", err)
	}
	return records, nil
}

// DeleteMedia removes persisted media entries by id. Callers update local
// state only after this returns nil.
func (c *Client) DeleteMedia(ctx context.Context, productID int64, mediaIDs []int64) error {
	if productID <= 0 {
		return errors.New("product id must be positive")
	}
	if len(mediaIDs) == 0 {
		return errors.New("media ids must not be empty")
	}
	body, err := json.Marshal(map[string][]int64{"media_ids": mediaIDs})
	if err != nil {
		return fmt.Errorf("encode media ids: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/products/%d/media", productID), bytes.NewReader(body), "application/json")
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	defer resp.Body.Close()
	return c.checkStatus(resp, "delete media")
}

// Product fetches the server record for a product, media list included.
func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	if id <= 0 {
		return nil, errors.New("product id must be positive")
	}
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, "")
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch product: %w", err)
	}
	defer resp.Body.Close()
	if err := c.checkStatus(resp, "fetch product"); err != nil {
		return nil, err
	}
	var product Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("decode product: %w", err)
	}
	return &product, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// checkStatus maps non-success responses to classified errors, keeping a
// short excerpt of the body for diagnostics.
func (c *Client) checkStatus(resp *http.Response, operation string) error {
	if resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	message := fmt.Sprintf("status %d", resp.StatusCode)
	if detail := strings.TrimSpace(string(excerpt)); detail != "" {
		message = fmt.Sprintf("status %d: %s", resp.StatusCode, detail)
	}
	marker := services.ErrBackend
	switch {
	case resp.StatusCode == http.StatusNotFound:
		marker = services.ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		marker = services.ErrConfiguration
	case resp.StatusCode >= http.StatusInternalServerError:
		marker = services.ErrTransient
	}
	return services.Wrap(marker, "market", operation, message, nil)
}
