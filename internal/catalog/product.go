// Package catalog talks to the remote product catalog and defines the
// read-only Product snapshot the rest of the storefront copies around.
package catalog

import "strconv"

// Product mirrors the catalog's product document. The storefront never
// mutates one; cart and favorites keep copies.
type Product struct {
	ID                 int64    `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Price              float64  `json:"price"`
	DiscountPercentage float64  `json:"discountPercentage,omitempty"`
	Rating             float64  `json:"rating"`
	Stock              int      `json:"stock"`
	Category           string   `json:"category"`
	Brand              string   `json:"brand,omitempty"`
	Thumbnail          string   `json:"thumbnail"`
	Images             []string `json:"images"`
}

func ParseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
