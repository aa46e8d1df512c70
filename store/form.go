package store

import (
	"catalog_server/client"
	"catalog_server/storage"
	"catalog_server/structs/tables"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MaxImages is the number of images a product may carry.
const MaxImages = 5

var formValidator = validator.New(validator.WithRequiredStructEnabled())

// FieldErrors maps a form field to its message.
type FieldErrors map[string]string

type formFields struct {
	SKU   string `validate:"required"`
	Name  string `validate:"required"`
	Price string `validate:"required"`
}

var requiredMessages = map[string]string{
	"SKU":   "SKU is required",
	"Name":  "Name is required",
	"Price": "Price is required",
}

// Preview is one thumbnail shown in the form.
type Preview struct {
	// URL of a retained image, or the file name of a newly selected one.
	Source string
	Local  bool
}

// ProductForm holds the add/edit form. ProductID is 0 when adding.
type ProductForm struct {
	ProductID int64
	SKU       string
	Name      string
	Price     string

	assetsURL string
	existing  []string
	files     []client.File
}

func NewAddForm(assetsURL string) *ProductForm {
	return &ProductForm{assetsURL: assetsURL, existing: []string{}}
}

// NewEditForm fills the form from p. Images already resolved against assetsURL are stored as refs.
func NewEditForm(p tables.Product, assetsURL string) *ProductForm {
	existing := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		existing = append(existing, storage.StripBase(assetsURL, img))
	}
	return &ProductForm{
		ProductID: p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Price:     p.Price.String(),
		assetsURL: assetsURL,
		existing:  existing,
	}
}

func (f *ProductForm) IsEdit() bool {
	return f.ProductID != 0
}

func (f *ProductForm) Existing() []string {
	return slices.Clone(f.existing)
}

func (f *ProductForm) Files() []client.File {
	return slices.Clone(f.files)
}

// ImageCount is retained plus selected images.
func (f *ProductForm) ImageCount() int {
	return len(f.existing) + len(f.files)
}

// AddFiles selects more files. A selection that would exceed MaxImages is rejected whole.
func (f *ProductForm) AddFiles(files ...client.File) error {
	if f.ImageCount()+len(files) > MaxImages {
		return errors.New(storage.MaxFilesMessage(MaxImages))
	}
	f.files = append(f.files, files...)
	return nil
}

// RemoveExisting drops a retained image by index.
func (f *ProductForm) RemoveExisting(i int) {
	if i < 0 || i >= len(f.existing) {
		return
	}
	f.existing = slices.Delete(f.existing, i, i+1)
}

// RemoveFile drops a selected file by index.
func (f *ProductForm) RemoveFile(i int) {
	if i < 0 || i >= len(f.files) {
		return
	}
	f.files = slices.Delete(f.files, i, i+1)
}

// Previews lists retained images first, then selected files.
func (f *ProductForm) Previews() []Preview {
	out := make([]Preview, 0, f.ImageCount())
	for _, ref := range f.existing {
		out = append(out, Preview{Source: storage.ResolveURL(f.assetsURL, ref)})
	}
	for _, file := range f.files {
		out = append(out, Preview{Source: file.Name, Local: true})
	}
	return out
}

// Validate returns nil when the form can be submitted.
func (f *ProductForm) Validate() FieldErrors {
	fields := formFields{
		SKU:   strings.TrimSpace(f.SKU),
		Name:  strings.TrimSpace(f.Name),
		Price: strings.TrimSpace(f.Price),
	}

	errs := FieldErrors{}
	if err := formValidator.Struct(fields); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				errs[strings.ToLower(fe.Field())] = requiredMessages[fe.Field()]
			}
		}
	}

	if _, missing := errs["price"]; !missing {
		price, err := decimal.NewFromString(fields.Price)
		switch {
		case err != nil:
			errs["price"] = "Price must be a number"
		case !price.IsPositive():
			errs["price"] = "Price must be greater than zero"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Payload builds the request body. The price is sent as typed, trimmed.
func (f *ProductForm) Payload() client.ProductPayload {
	return client.ProductPayload{
		SKU:            strings.TrimSpace(f.SKU),
		Name:           strings.TrimSpace(f.Name),
		Price:          strings.TrimSpace(f.Price),
		ExistingImages: f.Existing(),
		Files:          f.Files(),
	}
}

// PriceLabel formats a price for display.
func PriceLabel(p decimal.Decimal) string {
	return "$" + p.StringFixed(2)
}

// PageLabel is the pager caption.
func PageLabel(s State) string {
	return "Page " + strconv.Itoa(s.CurrentPage) + " of " + strconv.Itoa(max(s.TotalPages, 1))
}
