// Package client talks to the catalog product API over HTTP.
package client

import (
	"bytes"
	"catalog_server/structs"
	"catalog_server/structs/tables"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
)

// Fallback messages used when the server sends none.
const (
	MsgFetchFailed  = "Failed to fetch products"
	MsgAddFailed    = "Failed to add product"
	MsgEditFailed   = "Failed to edit product"
	MsgDeleteFailed = "Failed to delete product"
)

// APIError is a failed request. Status is 0 when no response was received.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// File is one image to upload.
type File struct {
	Name    string
	Content io.Reader
}

// ProductPayload is the form sent on create and update. On update, ExistingImages is always sent,
// an empty list clears the stored images.
type ProductPayload struct {
	SKU            string
	Name           string
	Price          string
	ExistingImages []string
	Files          []File
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *gecho.Logger
}

func New(cfg *structs.ClientConfig, logger *gecho.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (c *Client) ListProducts(ctx context.Context, search string, page, limit int) (*structs.ProductListResponse, error) {
	query := url.Values{}
	query.Set("search", search)
	query.Set("page", strconv.Itoa(page))
	query.Set("limit", strconv.Itoa(limit))

	req, err := c.newRequest(ctx, http.MethodGet, "/products/get-all-product?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var list structs.ProductListResponse
	if err := c.do(req, &list, MsgFetchFailed); err != nil {
		return nil, err
	}
	if list.Products == nil {
		list.Products = []tables.Product{}
	}
	return &list, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*tables.Product, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var product tables.Product
	if err := c.do(req, &product, MsgFetchFailed); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) AddProduct(ctx context.Context, payload ProductPayload) (*tables.Product, error) {
	return c.sendForm(ctx, http.MethodPost, "/products/add-product", payload, false, MsgAddFailed)
}

func (c *Client) EditProduct(ctx context.Context, id int64, payload ProductPayload) (*tables.Product, error) {
	return c.sendForm(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), payload, true, MsgEditFailed)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/products/delete-product/%d", id), nil)
	if err != nil {
		return err
	}

	var msg structs.MessageResponse
	return c.do(req, &msg, MsgDeleteFailed)
}

func (c *Client) sendForm(ctx context.Context, method, path string, payload ProductPayload, withExisting bool, fallback string) (*tables.Product, error) {
	body, contentType, err := encodeForm(payload, withExisting)
	if err != nil {
		return nil, &APIError{Message: fallback}
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var product tables.Product
	if err := c.do(req, &product, fallback); err != nil {
		return nil, err
	}
	return &product, nil
}

func encodeForm(payload ProductPayload, withExisting bool) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{{"sku", payload.SKU}, {"name", payload.Name}, {"price", payload.Price}}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	if withExisting {
		if len(payload.ExistingImages) == 0 {
			if err := mw.WriteField("existingImages", ""); err != nil {
				return nil, "", err
			}
		}
		for _, ref := range payload.ExistingImages {
			if err := mw.WriteField("existingImages", ref); err != nil {
				return nil, "", err
			}
		}
	}

	for _, file := range payload.Files {
		fw, err := mw.CreateFormFile("images", file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(fw, file.Content); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

// do sends req and decodes a 2xx body into out. Failures become *APIError carrying the server's
// message, or fallback when there is none.
func (c *Client) do(req *http.Request, out any, fallback string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Request failed",
			gecho.Field("method", req.Method),
			gecho.Field("path", req.URL.Path),
			gecho.Field("error", err),
		)
		return &APIError{Message: fallback}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: fallback}
		var body structs.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
			apiErr.Message = body.Message
		}
		c.logger.Debug("Request rejected",
			gecho.Field("method", req.Method),
			gecho.Field("path", req.URL.Path),
			gecho.Field("status", resp.StatusCode),
			gecho.Field("message", apiErr.Message),
		)
		return apiErr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Status: resp.StatusCode, Message: fallback}
	}
	return nil
}
