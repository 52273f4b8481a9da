// Package ident generates and parses the identifiers used for bags, clothes
// and accounts.
package ident

import (
	"fmt"
	"regexp"
	"strconv"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for generated identifiers.
const (
	BagBarcodePrefix = "BAG"
	ClothPrefix      = "C"
	UserPrefix       = "u"
)

// hexAlphabet yields uppercase hex characters.
const hexAlphabet = "0123456789ABCDEF"

// codeLength is the number of random characters in a barcode or cloth id.
const codeLength = 8

var bagNumberPattern = regexp.MustCompile(`B(\d+)`)

// Code returns "<prefix>-" followed by 8 random uppercase hex characters.
// The randomness is not a security boundary; uniqueness is enforced by the
// database and callers retry on collision.
func Code(prefix string) (string, error) {
	id, err := gonanoid.Generate(hexAlphabet, codeLength)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return prefix + "-" + id, nil
}

// BagBarcode returns a new bag barcode value, e.g. "BAG-3F9A01C2".
func BagBarcode() (string, error) {
	return Code(BagBarcodePrefix)
}

// ClothID returns a new cloth id, e.g. "C-0B12FFA9".
func ClothID() (string, error) {
	return Code(ClothPrefix)
}

// UserID returns a new opaque account id using the default nanoid alphabet.
func UserID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return UserPrefix + "-" + id, nil
}

// BagID formats a bag sequence number, e.g. 3 -> "B3".
func BagID(n int) string {
	return "B" + strconv.Itoa(n)
}

// BagNumber extracts the sequence number from a bag id. ok is false if the
// id has no B<digits> part or the number does not fit an int.
func BagNumber(bagID string) (n int, ok bool) {
	m := bagNumberPattern.FindStringSubmatch(bagID)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// NextBagID returns the id following the given previous bag id. It starts at
// B1 when there is no previous id or it cannot be parsed.
func NextBagID(previous string) string {
	n, ok := BagNumber(previous)
	if !ok {
		return BagID(1)
	}
	return BagID(n + 1)
}
