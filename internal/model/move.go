package model

import "time"

// Move records a cloth being relocated from one bag to another.
type Move struct {
	ID        int64     `json:"id"`
	ClothID   string    `json:"clothId"`
	FromBagID string    `json:"fromBagId"`
	ToBagID   string    `json:"toBagId"`
	OwnerID   string    `json:"ownerId"`
	MovedAt   time.Time `json:"movedAt"`

	// Joined fields (not always populated).
	FromBagName string `json:"fromBagName,omitempty"`
	ToBagName   string `json:"toBagName,omitempty"`
}
