package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TableUsers         = "users"
	TableProducts      = "products"
	TableAnimals       = "animals"
	TableCartItems     = "cart_items"
	TableAdoptionForms = "adoption_forms"
	TableLogos         = "logos"
	TableSessions      = "session_entries"
	TableSchemaMeta    = "schema_meta"
)

type Category string

const (
	CategoryFood        Category = "Alimento"
	CategoryToys        Category = "Juguetes"
	CategoryAccessories Category = "Accesorios"
	CategoryHygiene     Category = "Higiene"
	CategoryHealth      Category = "Salud"
)

var Categories = []Category{CategoryFood, CategoryToys, CategoryAccessories, CategoryHygiene, CategoryHealth}

func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

type AdoptionStatus string

const (
	StatusPending  AdoptionStatus = "Pendiente"
	StatusApproved AdoptionStatus = "Aprobado"
	StatusRejected AdoptionStatus = "Rechazado"
)

func (s AdoptionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"  json:"id"`
	Name         string `gorm:"not null"                  json:"name"`
	Email        string `gorm:"uniqueIndex;not null"      json:"email"`
	Phone        string `gorm:"not null"                  json:"phone"`
	PasswordHash string `gorm:"not null"                  json:"-"`
	IsAdmin      bool   `gorm:"not null;default:false"    json:"is_admin"`
}

func (User) TableName() string { return TableUsers }

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"       json:"id"`
	Name        string          `gorm:"not null;index"                 json:"name"`
	Description string          `gorm:"not null"                       json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"    json:"price"`
	Stock       *uint           `                                      json:"stock,omitempty"`
	Category    Category        `gorm:"not null;index"                 json:"category"`
	ImageURL    *string         `                                      json:"image_url,omitempty"`
}

func (Product) TableName() string { return TableProducts }

type Animal struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"       json:"id"`
	Name        string  `gorm:"not null;index"                 json:"name"`
	Species     string  `gorm:"not null"                       json:"species"`
	Breed       string  `gorm:"not null"                       json:"breed"`
	Age         int     `gorm:"not null;check:age>=0"          json:"age"`
	Description string  `gorm:"not null"                       json:"description"`
	ImageURL    *string `                                      json:"image_url,omitempty"`
	IsAdopted   bool    `gorm:"not null;default:false;index"   json:"is_adopted"`
}

func (Animal) TableName() string { return TableAnimals }

// CartItem is one product line of a user's cart. Name, price and image are
// copied from the product when the line is created and are not refreshed
// afterwards.
type CartItem struct {
	ID           uint            `gorm:"primaryKey;autoIncrement"                json:"id"`
	UserID       uint            `gorm:"uniqueIndex:idx_user_product;not null"   json:"user_id"`
	ProductID    uint            `gorm:"uniqueIndex:idx_user_product;not null"   json:"product_id"`
	ProductName  string          `gorm:"not null"                                json:"product_name"`
	ProductPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"             json:"product_price"`
	Quantity     int             `gorm:"not null;check:quantity>0"               json:"quantity"`
	ImageURL     *string         `                                               json:"image_url,omitempty"`
}

func (CartItem) TableName() string { return TableCartItems }

func (c CartItem) Subtotal() decimal.Decimal {
	return c.ProductPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

type AdoptionForm struct {
	ID               uint           `gorm:"primaryKey;autoIncrement"   json:"id"`
	UserID           uint           `gorm:"index;not null"             json:"user_id"`
	AnimalID         uint           `gorm:"index;not null"             json:"animal_id"`
	AnimalName       string         `gorm:"not null"                   json:"animal_name"`
	UserName         string         `gorm:"not null"                   json:"user_name"`
	UserEmail        string         `gorm:"not null"                   json:"user_email"`
	UserPhone        string         `gorm:"not null"                   json:"user_phone"`
	Reason           string         `gorm:"not null"                   json:"reason"`
	HasBalconyNets   bool           `gorm:"not null"                   json:"has_balcony_nets"`
	LivesInApartment bool           `gorm:"not null"                   json:"lives_in_apartment"`
	PhotoURI         *string        `                                  json:"photo_uri,omitempty"`
	SubmittedAt      time.Time      `gorm:"not null;index"             json:"submitted_at"`
	Status           AdoptionStatus `gorm:"not null;default:'Pendiente'" json:"status"`
}

func (AdoptionForm) TableName() string { return TableAdoptionForms }

func (f *AdoptionForm) BeforeCreate(tx *gorm.DB) error {
	if f.Status == "" {
		f.Status = StatusPending
	}
	if f.SubmittedAt.IsZero() {
		f.SubmittedAt = tx.NowFunc()
	}
	return nil
}

type Logo struct {
	ID    uint   `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"uniqueIndex;not null"`
	Image []byte `gorm:"not null"`
}

func (Logo) TableName() string { return TableLogos }

type SessionEntry struct {
	SessionID string `gorm:"primaryKey;size:64"`
	Key       string `gorm:"primaryKey;size:32"`
	Value     string `gorm:"not null"`
}

func (SessionEntry) TableName() string { return TableSessions }

type SchemaMeta struct {
	ID      uint `gorm:"primaryKey"`
	Version int  `gorm:"not null"`
}

func (SchemaMeta) TableName() string { return TableSchemaMeta }

// All lists every table model in creation order.
func All() []any {
	return []any{
		&User{}, &Product{}, &Animal{}, &CartItem{}, &AdoptionForm{},
		&Logo{}, &SessionEntry{}, &SchemaMeta{},
	}
}
