package protocol

import (
	"math"
	"net/url"
	"strings"
	"time"
)

// Item is a product of the storefront catalog.
type Item struct {
	ID          ObjectID  `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Brand       string    `json:"brand,omitempty"`
	ImageURL    string    `json:"imageUrl"`
	Stock       int       `json:"stock"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ItemSummary is the presentation of an Item within a Cart line.
// It omits the Item description.
type ItemSummary struct {
	ID        ObjectID  `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	Brand     string    `json:"brand,omitempty"`
	ImageURL  string    `json:"imageUrl"`
	Stock     int       `json:"stock"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary returns the ItemSummary of the Item.
func (m *Item) Summary() ItemSummary {
	return ItemSummary{
		ID:        m.ID,
		Name:      m.Name,
		Price:     m.Price,
		Category:  m.Category,
		Brand:     m.Brand,
		ImageURL:  m.ImageURL,
		Stock:     m.Stock,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// ItemFields are the client-settable fields of an Item. A nil field is
// absent from the request.
type ItemFields struct {
	Name        *string  `json:"name,omitempty" yaml:"name,omitempty"`
	Description *string  `json:"description,omitempty" yaml:"description,omitempty"`
	Price       *float64 `json:"price,omitempty" yaml:"price,omitempty"`
	Category    *string  `json:"category,omitempty" yaml:"category,omitempty"`
	Brand       *string  `json:"brand,omitempty" yaml:"brand,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	Stock       *int     `json:"stock,omitempty" yaml:"stock,omitempty"`
	IsActive    *bool    `json:"isActive,omitempty" yaml:"isActive,omitempty"`
}

// Normalize trims present string fields, and lower-cases the Category.
func (m *ItemFields) Normalize() {
	for _, s := range []*string{m.Name, m.Description, m.Brand, m.ImageURL} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	if m.Category != nil {
		*m.Category = strings.ToLower(strings.TrimSpace(*m.Category))
	}
}

// Validate returns an error if a present field is not well-formed.
// All fields are optional.
func (m *ItemFields) Validate() error { return m.validate(false) }

func (m *ItemFields) validate(requireAll bool) error {
	var errs ValidationErrors

	var required = func(field string, present bool) bool {
		if !present && requireAll {
			errs.Addf(field, errRequired)
		}
		return present
	}

	if required("name", m.Name != nil) {
		errs.Add("name", ValidateLength(*m.Name, "Name", 2, 120))
	}
	if m.Description != nil {
		errs.Add("description", ValidateLength(*m.Description, "Description", 0, 2000))
	}
	if required("price", m.Price != nil) {
		if math.IsNaN(*m.Price) || math.IsInf(*m.Price, 0) {
			errs.Addf("price", "Price must be a finite number")
		} else if *m.Price <= 0 {
			errs.Addf("price", "Price must be greater than 0")
		}
	}
	if required("category", m.Category != nil) {
		errs.Add("category", ValidateLength(*m.Category, "Category", 2, 60))
	}
	if m.Brand != nil {
		errs.Add("brand", ValidateLength(*m.Brand, "Brand", 0, 60))
	}
	if required("imageUrl", m.ImageURL != nil) {
		errs.Add("imageUrl", ValidateURL(*m.ImageURL, "imageUrl", 2048))
	}
	if m.Stock != nil && *m.Stock < 0 {
		errs.Addf("stock", "Stock must be at least 0")
	}
	return errs.OrNil()
}

// CreateItemRequest is the body of POST /api/items.
type CreateItemRequest struct {
	ItemFields `yaml:",inline"`
}

// Validate returns an error if the CreateItemRequest is not well-formed.
// Name, Price, Category, and ImageURL are required.
func (m *CreateItemRequest) Validate() error { return m.validate(true) }

// Item returns a new Item of the validated CreateItemRequest, applying
// defaults for absent optional fields (zero Stock, and active).
func (m *CreateItemRequest) Item() Item {
	var item = Item{
		Name:     *m.Name,
		Price:    *m.Price,
		Category: *m.Category,
		ImageURL: *m.ImageURL,
		IsActive: true,
	}
	if m.Description != nil {
		item.Description = *m.Description
	}
	if m.Brand != nil {
		item.Brand = *m.Brand
	}
	if m.Stock != nil {
		item.Stock = *m.Stock
	}
	if m.IsActive != nil {
		item.IsActive = *m.IsActive
	}
	return item
}

// UpdateItemRequest is the body of PATCH /api/items/{id}.
// Every field is optional, and only present fields are updated.
type UpdateItemRequest struct {
	ItemFields `yaml:",inline"`
}

// Apply the present fields of the ItemFields to |item|.
func (m *ItemFields) Apply(item *Item) {
	if m.Name != nil {
		item.Name = *m.Name
	}
	if m.Description != nil {
		item.Description = *m.Description
	}
	if m.Price != nil {
		item.Price = *m.Price
	}
	if m.Category != nil {
		item.Category = *m.Category
	}
	if m.Brand != nil {
		item.Brand = *m.Brand
	}
	if m.ImageURL != nil {
		item.ImageURL = *m.ImageURL
	}
	if m.Stock != nil {
		item.Stock = *m.Stock
	}
	if m.IsActive != nil {
		item.IsActive = *m.IsActive
	}
}

// ValidateURL returns an error if |s| is not an absolute URL having a
// scheme and host, or is longer than |max| bytes.
func ValidateURL(s, label string, max int) error {
	if len(s) > max {
		return NewValidationError("%s must be at most %d characters", label, max)
	}
	var u, err = url.Parse(s)
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return NewValidationError("%s must be a valid URL", label)
	}
	return nil
}
