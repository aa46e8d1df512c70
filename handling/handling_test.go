package handling_test

import (
	"bytes"
	"catalog_server/handling"
	"catalog_server/lib"
	"catalog_server/structs"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadsConfig() *structs.UploadsConfig {
	return &structs.UploadsConfig{FieldName: "images", MaxFiles: 5, MaxFileBytes: 5 << 20, AllowedTypes: []string{"png"}}
}

type formPart struct {
	field, value, file string
}

func multipartRequest(t *testing.T, parts ...formPart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		if p.file != "" {
			fw, err := mw.CreateFormFile(p.field, p.file)
			require.NoError(t, err)
			_, err = fw.Write([]byte(p.value))
			require.NoError(t, err)
			continue
		}
		require.NoError(t, mw.WriteField(p.field, p.value))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/products/add-product", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestParseListOptions(t *testing.T) {
	tests := []struct {
		query          string
		search         string
		page, pageSize int
	}{
		{"", "", 1, 10},
		{"search=lamp&page=3&limit=20", "lamp", 3, 20},
		{"search=%20lamp%20&page=abc&limit=-1", "lamp", 1, 10},
		{"page=0&limit=0", "", 1, 10},
		{"limit=1000", "", 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/products/get-all-product?"+tt.query, nil)
			opts := handling.ParseListOptions(req)
			assert.Equal(t, tt.search, opts.Search)
			assert.Equal(t, tt.page, opts.Page)
			assert.Equal(t, tt.pageSize, opts.PageSize)
		})
	}
}

func TestParseID(t *testing.T) {
	withID := func(id string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		req := httptest.NewRequest(http.MethodGet, "/products/"+id, nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := handling.ParseID(withID("12"))
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"abc", "0", "-4", ""} {
		_, err := handling.ParseID(withID(bad))
		var ve *lib.ValidationError
		assert.ErrorAs(t, err, &ve, bad)
	}
}

func TestNormalizeExistingImages(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{"none", nil, []string{}},
		{"empty string clears", []string{""}, []string{}},
		{"braced", []string{"{/uploads/a.png,/uploads/b.png}"}, []string{"/uploads/a.png", "/uploads/b.png"}},
		{"plain delimited", []string{"/uploads/a.png, /uploads/b.png,"}, []string{"/uploads/a.png", "/uploads/b.png"}},
		{"repeated", []string{"/uploads/a.png", "/uploads/b.png"}, []string{"/uploads/a.png", "/uploads/b.png"}},
		{"single", []string{"/uploads/a.png"}, []string{"/uploads/a.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, handling.NormalizeExistingImages(tt.values))
		})
	}
}

func TestParseProductForm_Create(t *testing.T) {
	// Setup
	req := multipartRequest(t,
		formPart{field: "sku", value: " P1 "},
		formPart{field: "name", value: "Lamp"},
		formPart{field: "price", value: "12.50"},
		formPart{field: "images", value: "one", file: "a.png"},
		formPart{field: "images", value: "two", file: "b.png"},
		formPart{field: "other", value: "ignored", file: "c.png"},
	)

	// Execute
	form, err := handling.ParseProductForm(req, uploadsConfig())
	require.NoError(t, err)
	defer form.Close()
	in, err := form.CreateInput()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "P1", in.SKU)
	assert.Equal(t, "Lamp", in.Name)
	assert.Equal(t, "12.5", in.Price.String())
	require.Len(t, in.Images, 2)
	assert.Equal(t, "a.png", in.Images[0].FileName)
	assert.Equal(t, "images", in.Images[0].FieldName)

	data, err := io.ReadAll(in.Images[1].Content)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestParseProductForm_CreatePriceErrors(t *testing.T) {
	for _, price := range []string{"", "abc"} {
		req := multipartRequest(t, formPart{field: "sku", value: "P1"}, formPart{field: "price", value: price})
		form, err := handling.ParseProductForm(req, uploadsConfig())
		require.NoError(t, err)

		_, err = form.CreateInput()
		var ve *lib.ValidationError
		assert.ErrorAs(t, err, &ve, price)
		form.Close()
	}
}

func TestParseProductForm_TooManyFiles(t *testing.T) {
	parts := make([]formPart, 0, 6)
	for range 6 {
		parts = append(parts, formPart{field: "images", value: "x", file: "a.png"})
	}

	_, err := handling.ParseProductForm(multipartRequest(t, parts...), uploadsConfig())

	var ue *lib.UploadError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "You can upload a maximum of 5 images.", ue.Message)
}

func TestParseProductForm_Update(t *testing.T) {
	t.Run("only sent fields", func(t *testing.T) {
		req := multipartRequest(t, formPart{field: "name", value: "Desk Lamp"})
		form, err := handling.ParseProductForm(req, uploadsConfig())
		require.NoError(t, err)
		defer form.Close()

		in, err := form.UpdateInput()
		require.NoError(t, err)
		require.NotNil(t, in.Name)
		assert.Equal(t, "Desk Lamp", *in.Name)
		assert.Nil(t, in.SKU)
		assert.Nil(t, in.Price)
		assert.False(t, in.HasExisting)
		assert.Empty(t, in.Images)
	})

	t.Run("existing images as repeated field", func(t *testing.T) {
		req := multipartRequest(t,
			formPart{field: "existingImages", value: "/uploads/a.png"},
			formPart{field: "existingImages", value: "/uploads/c.png"},
			formPart{field: "price", value: "3"},
		)
		form, err := handling.ParseProductForm(req, uploadsConfig())
		require.NoError(t, err)
		defer form.Close()

		in, err := form.UpdateInput()
		require.NoError(t, err)
		assert.True(t, in.HasExisting)
		assert.Equal(t, []string{"/uploads/a.png", "/uploads/c.png"}, in.ExistingImages)
		require.NotNil(t, in.Price)
		assert.Equal(t, "3", in.Price.String())
	})

	t.Run("empty existing images clears", func(t *testing.T) {
		req := multipartRequest(t, formPart{field: "existingImages", value: ""})
		form, err := handling.ParseProductForm(req, uploadsConfig())
		require.NoError(t, err)
		defer form.Close()

		in, err := form.UpdateInput()
		require.NoError(t, err)
		assert.True(t, in.HasExisting)
		assert.Empty(t, in.ExistingImages)
	})
}

func TestParseProductForm_URLEncoded(t *testing.T) {
	body := url.Values{"sku": {"P1"}, "name": {"Lamp"}, "price": {"4"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/products/add-product", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	form, err := handling.ParseProductForm(req, uploadsConfig())
	require.NoError(t, err)
	defer form.Close()

	in, err := form.CreateInput()
	require.NoError(t, err)
	assert.Equal(t, "P1", in.SKU)
	assert.Empty(t, in.Images)
}

func TestHandleError(t *testing.T) {
	logger := gecho.NewLogger(gecho.NewConfig(gecho.WithLogLevel(gecho.LogLevelFatal), gecho.WithOutput(io.Discard)))

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", &lib.NotFoundError{Resource: "Product"}, http.StatusNotFound, "Product not found"},
		{"validation", lib.NewValidationError("price", "price must be greater than zero"), http.StatusBadRequest, "price must be greater than zero"},
		{"upload", &lib.UploadError{Message: "Only image files (png) are allowed!"}, http.StatusBadRequest, "Only image files (png) are allowed!"},
		{"internal", errors.New("dial tcp: connection refused"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)

			handling.HandleError(tt.err, "test", logger, rec, req)

			assert.Equal(t, tt.status, rec.Code)
			var body structs.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, "error", body.Status)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}
