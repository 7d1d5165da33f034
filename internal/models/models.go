package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string     `gorm:"primaryKey;type:varchar(36)"             json:"id"`
	Email        string     `gorm:"uniqueIndex;not null"                    json:"email"`
	PasswordHash string     `gorm:"not null"                                json:"-"`
	FullName     string     `gorm:"not null"                                json:"full_name"`
	Gender       string     `gorm:"type:varchar(1)"                         json:"gender,omitempty"`
	Role         string     `gorm:"not null;default:user"                   json:"role"`
	Addresses    []Address  `gorm:"serializer:json;type:text"               json:"addresses"`
	Favourites   StringList `                                               json:"favourites"`
	Orders       StringList `                                               json:"orders"`
	CreatedAt    time.Time  `                                               json:"created_at"`
	UpdatedAt    time.Time  `                                               json:"updated_at"`
}

type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
	Type   string `json:"type,omitempty"`
}

const (
	AddressMain  = "main"
	AddressOther = "other"
)

type Category struct {
	Main string `gorm:"column:main;not null" json:"main"`
	Sub  string `gorm:"column:sub"           json:"sub,omitempty"`
}

type Product struct {
	ID           string          `gorm:"primaryKey;type:varchar(36)"              json:"id"`
	Name         string          `gorm:"not null;index"                           json:"name"`
	Description  string          `gorm:"not null"                                 json:"description"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null"              json:"price"`
	Category     Category        `gorm:"embedded;embeddedPrefix:category_"        json:"category"`
	Colours      StringList      `                                                json:"colours"`
	Sizes        StringList      `                                                json:"sizes"`
	Availability int             `gorm:"not null;check:availability >= 0"         json:"availability"`
	Images       StringList      `                                                json:"images"`
	CreatedAt    time.Time       `                                                json:"created_at"`
	UpdatedAt    time.Time       `                                                json:"updated_at"`
}

// HasColour and HasSize expect normalized input.
func (p *Product) HasColour(colour string) bool { return p.Colours.Contains(colour) }

func (p *Product) HasSize(size string) bool { return p.Sizes.Contains(size) }

type Cart struct {
	ID         string          `gorm:"primaryKey;type:varchar(36)"                    json:"id"`
	UserID     string          `gorm:"uniqueIndex;type:varchar(36);not null"          json:"user_id"`
	Items      []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"  json:"items"`
	GrandTotal decimal.Decimal `gorm:"type:numeric(14,2);not null"                    json:"grand_total"`
	Version    int64           `gorm:"not null"                                       json:"version"`
	CreatedAt  time.Time       `                                                      json:"created_at"`
	UpdatedAt  time.Time       `                                                      json:"updated_at"`
}

type CartItem struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)"       json:"id"`
	CartID    string          `gorm:"index;type:varchar(36);not null"   json:"-"`
	ProductID string          `gorm:"type:varchar(36);not null"         json:"product_id"`
	Quantity  int             `gorm:"not null"                          json:"quantity"`
	Total     decimal.Decimal `gorm:"type:numeric(14,2);not null"       json:"total"`
	Position  int             `gorm:"not null"                          json:"-"`
}

// Item returns the line for productID, or nil.
func (c *Cart) Item(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Recalculate sets GrandTotal to the sum of line totals.
func (c *Cart) Recalculate() {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.Total)
	}
	c.GrandTotal = sum
}

const (
	StatusPending   = "pending"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"

	ShippingInStore  = "in_store"
	ShippingStandard = "standard"
	ShippingExpress  = "express"
)

var (
	OrderStatuses = []string{StatusPending, StatusShipped, StatusDelivered, StatusCancelled}
	ShippingTypes = []string{ShippingInStore, ShippingStandard, ShippingExpress}
)

type Order struct {
	ID        string      `gorm:"primaryKey;type:varchar(36)"                    json:"id"`
	UserID    string      `gorm:"uniqueIndex;type:varchar(36);not null"          json:"user_id"`
	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Version   int64       `gorm:"not null"                                       json:"version"`
	CreatedAt time.Time   `                                                      json:"created_at"`
	UpdatedAt time.Time   `                                                      json:"updated_at"`
}

type OrderItem struct {
	ID           string          `gorm:"primaryKey;type:varchar(36)"      json:"id"`
	OrderID      string          `gorm:"index;type:varchar(36);not null"  json:"-"`
	ProductID    string          `gorm:"type:varchar(36);not null"        json:"product_id"`
	Quantity     int             `gorm:"not null"                         json:"quantity"`
	Colour       string          `gorm:"not null"                         json:"colour"`
	Size         string          `gorm:"not null"                         json:"size"`
	Total        decimal.Decimal `gorm:"type:numeric(14,2);not null"      json:"total"`
	Status       string          `gorm:"not null;default:pending"         json:"status"`
	ShippingType string          `gorm:"not null;default:in_store"        json:"shipping_type"`
	Position     int             `gorm:"not null"                         json:"-"`
}

// Item returns the line with itemID, or the first line when itemID is empty.
func (o *Order) Item(itemID string) *OrderItem {
	if itemID == "" {
		if len(o.Items) == 0 {
			return nil
		}
		return &o.Items[0]
	}
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// PendingMatch finds a pending line for the same product, colour and size.
func (o *Order) PendingMatch(productID, colour, size string) *OrderItem {
	for i := range o.Items {
		it := &o.Items[i]
		if it.Status == StatusPending && it.ProductID == productID && it.Colour == colour && it.Size == size {
			return it
		}
	}
	return nil
}

type RefreshToken struct {
	JTI       string    `gorm:"primaryKey;type:varchar(36)" json:"jti"`
	TokenHash string    `gorm:"uniqueIndex;not null"        json:"-"`
	UserID    string    `gorm:"index;not null"              json:"user_id"`
	Role      string    `gorm:"not null"                    json:"role"`
	ExpiresAt time.Time `gorm:"not null"                    json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false"      json:"revoked"`
	CreatedAt time.Time `                                   json:"created_at"`
}

func NewID() string { return uuid.NewString() }

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = NewID()
	}
	return nil
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = NewID()
	}
	return nil
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = NewID()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = NewID()
	}
	return nil
}
