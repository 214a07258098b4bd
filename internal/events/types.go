package events

import "github.com/shopspring/decimal"

type UserRegistered struct {
	Type   string `json:"type"`
	UserID uint   `json:"userID"`
	Email  string `json:"email"`
}

type UserDeleted struct {
	Type   string `json:"type"`
	UserID uint   `json:"userID"`
}

type ProductChanged struct {
	Type      string          `json:"type"`
	ProductID uint            `json:"productID"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
}

type CartChanged struct {
	Type      string `json:"type"`
	UserID    uint   `json:"userID"`
	ProductID uint   `json:"productID,omitempty"`
	Quantity  int    `json:"quantity"`
}

type CartCheckedOut struct {
	Type   string          `json:"type"`
	UserID uint            `json:"userID"`
	Items  int             `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

type AnimalChanged struct {
	Type     string `json:"type"`
	AnimalID uint   `json:"animalID"`
	Name     string `json:"name,omitempty"`
}

type AdoptionChanged struct {
	Type     string `json:"type"`
	FormID   uint   `json:"formID"`
	UserID   uint   `json:"userID"`
	AnimalID uint   `json:"animalID"`
	Status   string `json:"status"`
}

const (
	TypeUserRegistered        = "user_registered"
	TypeUserDeleted           = "user_deleted"
	TypeProductCreated        = "product_created"
	TypeProductUpdated        = "product_updated"
	TypeProductDeleted        = "product_deleted"
	TypeItemAdded             = "item_added"
	TypeItemUpdated           = "item_updated"
	TypeItemRemoved           = "item_removed"
	TypeCartCleared           = "cart_cleared"
	TypeCartCheckedOut        = "cart_checked_out"
	TypeAnimalCreated         = "animal_created"
	TypeAnimalUpdated         = "animal_updated"
	TypeAnimalDeleted         = "animal_deleted"
	TypeAnimalAdopted         = "animal_adopted"
	TypeAdoptionSubmitted     = "adoption_submitted"
	TypeAdoptionStatusChanged = "adoption_status_changed"
)
