package handling

import (
	"catalog_server/lib"
	"catalog_server/storage"
	"catalog_server/structs"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	multipartMemory     = 32 << 20
	existingImagesField = "existingImages"
)

// ProductForm is a parsed product submission. Close releases the uploaded files.
type ProductForm struct {
	values map[string][]string
	files  []multipart.File
	form   *multipart.Form
	Images []structs.ImageUpload
}

func (f *ProductForm) Close() {
	for _, file := range f.files {
		file.Close()
	}
	if f.form != nil {
		f.form.RemoveAll()
	}
}

func (f *ProductForm) has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f *ProductForm) get(key string) string {
	if v := f.values[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// ParseProductForm reads a multipart (or urlencoded) product submission. Files are taken from the
// configured upload field only.
func ParseProductForm(r *http.Request, cfg *structs.UploadsConfig) (*ProductForm, error) {
	pf := &ProductForm{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return nil, formError(err)
		}
		pf.form = r.MultipartForm
		pf.values = r.MultipartForm.Value
	} else {
		if err := r.ParseForm(); err != nil {
			return nil, formError(err)
		}
		pf.values = r.PostForm
	}

	if pf.form == nil {
		return pf, nil
	}

	headers := pf.form.File[cfg.FieldName]
	if cfg.MaxFiles > 0 && len(headers) > cfg.MaxFiles {
		pf.Close()
		return nil, &lib.UploadError{Message: storage.MaxFilesMessage(cfg.MaxFiles)}
	}

	for _, fh := range headers {
		file, err := fh.Open()
		if err != nil {
			pf.Close()
			return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
		}
		pf.files = append(pf.files, file)
		pf.Images = append(pf.Images, structs.ImageUpload{
			FieldName: cfg.FieldName,
			FileName:  fh.Filename,
			Size:      fh.Size,
			Content:   file,
		})
	}

	return pf, nil
}

func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &lib.UploadError{Message: fmt.Sprintf("Request body too large (max %d MB)", tooLarge.Limit>>20)}
	}
	return lib.NewValidationError("body", "Invalid form data")
}

// CreateInput builds the create input. Price must be present and numeric.
func (f *ProductForm) CreateInput() (structs.CreateProductInput, error) {
	price, err := parsePrice(f.get("price"))
	if err != nil {
		return structs.CreateProductInput{}, err
	}

	return structs.CreateProductInput{
		SKU:    f.get("sku"),
		Name:   f.get("name"),
		Price:  price,
		Images: f.Images,
	}, nil
}

// UpdateInput builds the update input from the fields that were sent.
func (f *ProductForm) UpdateInput() (structs.UpdateProductInput, error) {
	in := structs.UpdateProductInput{Images: f.Images}

	if f.has("sku") {
		sku := f.get("sku")
		in.SKU = &sku
	}
	if f.has("name") {
		name := f.get("name")
		in.Name = &name
	}
	if f.has("price") {
		price, err := parsePrice(f.get("price"))
		if err != nil {
			return in, err
		}
		in.Price = &price
	}

	for _, key := range []string{existingImagesField, existingImagesField + "[]"} {
		if f.has(key) {
			in.HasExisting = true
			in.ExistingImages = append(in.ExistingImages, NormalizeExistingImages(f.values[key])...)
		}
	}

	return in, nil
}

// NormalizeExistingImages accepts either one delimited string ("{a,b}" or "a,b") or a repeated field.
func NormalizeExistingImages(values []string) []string {
	switch len(values) {
	case 0:
		return []string{}
	case 1:
		return splitAndTrim(strings.Trim(strings.TrimSpace(values[0]), "{}"))
	default:
		out := make([]string, 0, len(values))
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		return out
	}
}

func parsePrice(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, lib.NewValidationError("price", "price is required")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, lib.NewValidationError("price", "price must be a number")
	}
	return price, nil
}
