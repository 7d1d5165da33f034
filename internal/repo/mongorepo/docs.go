package mongorepo

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Skotchmaster/storefront/internal/models"
)

type addressDoc struct {
	Street string `bson:"street,omitempty"`
	City   string `bson:"city,omitempty"`
	State  string `bson:"state,omitempty"`
	Zip    string `bson:"zip,omitempty"`
	Type   string `bson:"type,omitempty"`
}

type userDoc struct {
	ID           string       `bson:"_id"`
	Email        string       `bson:"email"`
	PasswordHash string       `bson:"password_hash"`
	FullName     string       `bson:"full_name"`
	Gender       string       `bson:"gender,omitempty"`
	Role         string       `bson:"role"`
	Addresses    []addressDoc `bson:"addresses"`
	Favourites   []string     `bson:"favourites"`
	Orders       []string     `bson:"orders"`
	CreatedAt    time.Time    `bson:"created_at"`
	UpdatedAt    time.Time    `bson:"updated_at"`
}

type categoryDoc struct {
	Main string `bson:"main"`
	Sub  string `bson:"sub,omitempty"`
}

type productDoc struct {
	ID           string               `bson:"_id"`
	Name         string               `bson:"name"`
	Description  string               `bson:"description"`
	Price        primitive.Decimal128 `bson:"price"`
	Category     categoryDoc          `bson:"category"`
	Colours      []string             `bson:"colours"`
	Sizes        []string             `bson:"sizes"`
	Availability int                  `bson:"availability"`
	Images       []string             `bson:"images"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
}

type cartItemDoc struct {
	ID        string               `bson:"_id"`
	ProductID string               `bson:"product_id"`
	Quantity  int                  `bson:"quantity"`
	Total     primitive.Decimal128 `bson:"total"`
}

type cartDoc struct {
	ID         string               `bson:"_id"`
	UserID     string               `bson:"user_id"`
	Items      []cartItemDoc        `bson:"items"`
	GrandTotal primitive.Decimal128 `bson:"grand_total"`
	Version    int64                `bson:"version"`
	CreatedAt  time.Time            `bson:"created_at"`
	UpdatedAt  time.Time            `bson:"updated_at"`
}

type orderItemDoc struct {
	ID           string               `bson:"_id"`
	ProductID    string               `bson:"product_id"`
	Quantity     int                  `bson:"quantity"`
	Colour       string               `bson:"colour"`
	Size         string               `bson:"size"`
	Total        primitive.Decimal128 `bson:"total"`
	Status       string               `bson:"status"`
	ShippingType string               `bson:"shipping_type"`
}

type orderDoc struct {
	ID        string         `bson:"_id"`
	UserID    string         `bson:"user_id"`
	Items     []orderItemDoc `bson:"items"`
	Version   int64          `bson:"version"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

type tokenDoc struct {
	JTI       string    `bson:"_id"`
	TokenHash string    `bson:"token_hash"`
	UserID    string    `bson:"user_id"`
	Role      string    `bson:"role"`
	ExpiresAt time.Time `bson:"expires_at"`
	Revoked   bool      `bson:"revoked"`
	CreatedAt time.Time `bson:"created_at"`
}

func toDecimal128(d decimal.Decimal) primitive.Decimal128 {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.NewDecimal128(0, 0)
	}
	return v
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func newUserDoc(u *models.User) userDoc {
	addrs := make([]addressDoc, len(u.Addresses))
	for i, a := range u.Addresses {
		addrs[i] = addressDoc(a)
	}
	return userDoc{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		FullName:     u.FullName,
		Gender:       u.Gender,
		Role:         u.Role,
		Addresses:    addrs,
		Favourites:   nonNil(u.Favourites),
		Orders:       nonNil(u.Orders),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) model() models.User {
	addrs := make([]models.Address, len(d.Addresses))
	for i, a := range d.Addresses {
		addrs[i] = models.Address(a)
	}
	return models.User{
		ID:           d.ID,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		FullName:     d.FullName,
		Gender:       d.Gender,
		Role:         d.Role,
		Addresses:    addrs,
		Favourites:   models.StringList(nonNil(d.Favourites)),
		Orders:       models.StringList(nonNil(d.Orders)),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func newProductDoc(p *models.Product) productDoc {
	return productDoc{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        toDecimal128(p.Price),
		Category:     categoryDoc(p.Category),
		Colours:      nonNil(p.Colours),
		Sizes:        nonNil(p.Sizes),
		Availability: p.Availability,
		Images:       nonNil(p.Images),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func (d productDoc) model() models.Product {
	return models.Product{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		Price:        fromDecimal128(d.Price),
		Category:     models.Category(d.Category),
		Colours:      models.StringList(d.Colours),
		Sizes:        models.StringList(d.Sizes),
		Availability: d.Availability,
		Images:       models.StringList(d.Images),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func newCartItemDoc(it models.CartItem) cartItemDoc {
	if it.ID == "" {
		it.ID = models.NewID()
	}
	return cartItemDoc{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity, Total: toDecimal128(it.Total)}
}

func cartItemDocs(items []models.CartItem) []cartItemDoc {
	out := make([]cartItemDoc, len(items))
	for i, it := range items {
		out[i] = newCartItemDoc(it)
	}
	return out
}

func (d cartDoc) model() models.Cart {
	items := make([]models.CartItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = models.CartItem{
			ID:        it.ID,
			CartID:    d.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Total:     fromDecimal128(it.Total),
			Position:  i,
		}
	}
	return models.Cart{
		ID:         d.ID,
		UserID:     d.UserID,
		Items:      items,
		GrandTotal: fromDecimal128(d.GrandTotal),
		Version:    d.Version,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

func orderItemDocs(items []models.OrderItem) []orderItemDoc {
	out := make([]orderItemDoc, len(items))
	for i, it := range items {
		if it.ID == "" {
			it.ID = models.NewID()
		}
		out[i] = orderItemDoc{
			ID:           it.ID,
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			Colour:       it.Colour,
			Size:         it.Size,
			Total:        toDecimal128(it.Total),
			Status:       it.Status,
			ShippingType: it.ShippingType,
		}
	}
	return out
}

func (d orderDoc) model() models.Order {
	items := make([]models.OrderItem, len(d.Items))
	for i, it := range d.Items {
		items[i] = models.OrderItem{
			ID:           it.ID,
			OrderID:      d.ID,
			ProductID:    it.ProductID,
			Quantity:     it.Quantity,
			Colour:       it.Colour,
			Size:         it.Size,
			Total:        fromDecimal128(it.Total),
			Status:       it.Status,
			ShippingType: it.ShippingType,
			Position:     i,
		}
	}
	return models.Order{
		ID:        d.ID,
		UserID:    d.UserID,
		Items:     items,
		Version:   d.Version,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
