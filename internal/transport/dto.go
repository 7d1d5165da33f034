package transport

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateUserRequest struct {
	FullName    *string `json:"full_name"`
	Password    *string `json:"password"`
	Gender      *string `json:"gender"`
	Street      *string `json:"street"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	Zip         *string `json:"zip"`
	AddressType *string `json:"address_type"`
}

func (r UpdateUserRequest) HasAddress() bool {
	return r.Street != nil || r.City != nil || r.State != nil || r.Zip != nil || r.AddressType != nil
}

type Category struct {
	Main string `json:"main"`
	Sub  string `json:"sub"`
}

type CategoryPatch struct {
	Main *string `json:"main"`
	Sub  *string `json:"sub"`
}

type CreateProductRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Category     Category        `json:"category"`
	Colours      []string        `json:"colours"`
	Sizes        []SizeToken     `json:"sizes"`
	Availability *int            `json:"availability"`
	Images       []string        `json:"images"`
}

// PatchProductRequest leaves a field untouched when it is absent; list fields
// are replaced whole when present.
type PatchProductRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	Category     *CategoryPatch   `json:"category"`
	Colours      []string         `json:"colours"`
	Sizes        []SizeToken      `json:"sizes"`
	Availability *int             `json:"availability"`
	Images       []string         `json:"images"`
}

type AddToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type CreateOrderRequest struct {
	ProductID    string    `json:"product_id"`
	Quantity     int       `json:"quantity"`
	Colour       string    `json:"colour"`
	Size         SizeToken `json:"size"`
	ShippingType string    `json:"shipping_type"`
	Status       string    `json:"status"`
}

// UpdateOrderRequest addresses one line; ItemID defaults to the first line.
type UpdateOrderRequest struct {
	ItemID       string     `json:"item_id"`
	ProductID    *string    `json:"product_id"`
	Quantity     *int       `json:"quantity"`
	Colour       *string    `json:"colour"`
	Size         *SizeToken `json:"size"`
	Status       *string    `json:"status"`
	ShippingType *string    `json:"shipping_type"`
}

type FavouriteRequest struct {
	ProductID string `json:"product_id"`
}

// SizeToken accepts either a letter size ("XL") or a numeric size (42).
type SizeToken string

func (s *SizeToken) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = SizeToken(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("size must be a string or a number")
	}
	*s = SizeToken(n.String())
	return nil
}
