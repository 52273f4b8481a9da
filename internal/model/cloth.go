package model

import "time"

// ImageRef points at a stored cloth image. Key is the handle used to delete it.
type ImageRef struct {
	URL      string `json:"imageUrl"`
	Key      string `json:"imageKey"`
	BlurHash string `json:"imageBlurHash,omitempty"`
}

// Cloth is a clothing item contained in exactly one bag.
type Cloth struct {
	ClothID  string `json:"clothId"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	Owner    string `json:"owner"`
	Category string `json:"category"`
	Notes    string `json:"notes"`
	ImageRef
	ContainerBagID     string    `json:"containerBagId"`
	Favorite           bool      `json:"favorite"`
	LastMovedTimestamp time.Time `json:"lastMovedTimestamp"`
	OwnerID            string    `json:"ownerId"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`

	// Joined field (not always populated).
	BagName string `json:"bagName,omitempty"`
}

// UnknownBagName is shown for clothes whose bag could not be resolved.
const UnknownBagName = "Unknown Bag"

// ClothPatch is a partial update. Nil fields are left unchanged; a non-nil
// pointer to an empty string is an explicit empty value.
type ClothPatch struct {
	Name           *string `json:"name" validate:"omitnil,max=200"`
	Color          *string `json:"color" validate:"omitnil,max=100"`
	Owner          *string `json:"owner" validate:"omitnil,max=100"`
	Category       *string `json:"category" validate:"omitnil,max=100"`
	Notes          *string `json:"notes" validate:"omitnil,max=2000"`
	ContainerBagID *string `json:"containerBagId"`
	Favorite       *bool   `json:"favorite"`
	ImageBase64    *string `json:"imageBase64"`
}

// ClothQuery holds the filters and ordering for listing clothes.
// Empty strings and a nil Favorite are not applied.
type ClothQuery struct {
	Color     string
	Owner     string
	Category  string
	BagID     string
	Favorite  *bool
	Search    string
	SortBy    string
	SortOrder string
}

// FilterOptions lists the distinct attribute values a user has in use.
type FilterOptions struct {
	Colors     []string    `json:"colors"`
	Owners     []string    `json:"owners"`
	Categories []string    `json:"categories"`
	Bags       []BagOption `json:"bags"`
}
