package model

import "time"

// Bag is a physical storage container holding clothes.
type Bag struct {
	BagID        string    `json:"bagId"`
	Name         string    `json:"name"`
	BarcodeValue string    `json:"barcodeValue"`
	OwnerID      string    `json:"ownerId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BagWithCount is a bag decorated with the number of clothes it holds.
type BagWithCount struct {
	Bag
	ClothCount int `json:"clothCount"`
}

// BagOption is the short form of a bag used in filter pickers.
type BagOption struct {
	BagID string `json:"bagId"`
	Name  string `json:"name"`
}
