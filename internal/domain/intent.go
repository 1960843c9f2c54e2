package domain

import "time"

// PurchaseIntent is a customer's pre-payment declaration of interest in a
// product. It is created before any key is touched and is later linked to at
// most one redeemed key (the key row carries the intent id, not the reverse).
type PurchaseIntent struct {
	ID           string    `json:"id" db:"id"`
	ProductID    string    `json:"product_id" db:"product_id"`
	ProductTitle string    `json:"product_title" db:"product_title"`
	Email        string    `json:"email" db:"email"`
	PhoneNumber  string    `json:"phone_number" db:"phone_number"`
	Country      string    `json:"country" db:"country"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
