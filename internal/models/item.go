package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Item представляет позицию складского учета.
// Поля повторяют то, что сервер возвращает в /inventory.
type Item struct {
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku"`
	Barcode     string    `json:"barcode,omitempty"`
	Unit        string    `json:"unit"`
	Category    string    `json:"category"`
	Location    string    `json:"location"`
	Quantity    int       `json:"quantity"`
	MinQuantity int       `json:"minQuantity"`
}

// Validate проверяет, что ответ сервера похож на позицию склада.
func (i Item) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.ID, validation.Required),
		validation.Field(&i.Name, validation.Required),
		validation.Field(&i.SKU, validation.Required, validation.Length(1, 64)),
		validation.Field(&i.Quantity, validation.Min(0)),
		validation.Field(&i.MinQuantity, validation.Min(0)),
	)
}

// IsLowStock сообщает, опустился ли остаток до минимального порога.
func (i Item) IsLowStock() bool {
	return i.Quantity > 0 && i.Quantity <= i.MinQuantity
}

// ItemList список позиций, возвращаемый GET /inventory.
type ItemList []Item

// Validate проверяет каждую позицию списка.
func (l ItemList) Validate() error {
	for idx := range l {
		if err := l[idx].Validate(); err != nil {
			return validation.Errors{"items": err}
		}
	}
	return nil
}

// ItemDraft содержит поля для создания или частичного обновления позиции.
// Nil-поля при PATCH не отправляются.
type ItemDraft struct {
	Name        *string `json:"name,omitempty"`
	SKU         *string `json:"sku,omitempty"`
	Unit        *string `json:"unit,omitempty"`
	Category    *string `json:"category,omitempty"`
	Location    *string `json:"location,omitempty"`
	Quantity    *int    `json:"quantity,omitempty"`
	MinQuantity *int    `json:"minQuantity,omitempty"`
}

// Apply накладывает непустые поля черновика на копию позиции.
func (d ItemDraft) Apply(item Item) Item {
	if d.Name != nil {
		item.Name = *d.Name
	}
	if d.SKU != nil {
		item.SKU = *d.SKU
	}
	if d.Unit != nil {
		item.Unit = *d.Unit
	}
	if d.Category != nil {
		item.Category = *d.Category
	}
	if d.Location != nil {
		item.Location = *d.Location
	}
	if d.Quantity != nil {
		item.Quantity = *d.Quantity
	}
	if d.MinQuantity != nil {
		item.MinQuantity = *d.MinQuantity
	}
	return item
}

// ValidateCreate проверяет черновик перед POST /inventory.
func (d ItemDraft) ValidateCreate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Name, validation.Required),
		validation.Field(&d.SKU, validation.Required, validation.Length(1, 64)),
		validation.Field(&d.Quantity, validation.Min(0)),
		validation.Field(&d.MinQuantity, validation.Min(0)),
	)
}
