// Package checkout is the simulated checkout: form validation, the price
// quote, and pending orders that clear the cart once confirmed. No payment
// is taken.
package checkout

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"Storefront/internal/cart"
)

const (
	ShippingCost = 9.99
	TaxRate      = 0.10

	minCardDigits = 16
	minCVVLen     = 3
)

type PaymentMethod string

const (
	PayCredit PaymentMethod = "credit"
	PayPal    PaymentMethod = "paypal"
	PayCrypto PaymentMethod = "crypto"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

var (
	ErrInvalid    = errors.New("invalid checkout form")
	ErrEmptyCart  = errors.New("cart is empty")
	ErrNotFound   = errors.New("order not found")
	ErrNotPending = errors.New("order is not pending")
)

type Form struct {
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	Address       string        `json:"address"`
	City          string        `json:"city"`
	ZipCode       string        `json:"zipCode"`
	Country       string        `json:"country"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CardNumber    string        `json:"cardNumber,omitempty"`
	ExpiryDate    string        `json:"expiryDate,omitempty"`
	CVV           string        `json:"cvv,omitempty"`
}

type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	return fmt.Sprintf("%s: %d field(s)", ErrInvalid, len(fe))
}

func (fe FieldErrors) Unwrap() error { return ErrInvalid }

var requiredFields = []struct {
	key   string
	label string
	value func(Form) string
}{
	{"firstName", "first name", func(f Form) string { return f.FirstName }},
	{"lastName", "last name", func(f Form) string { return f.LastName }},
	{"address", "address", func(f Form) string { return f.Address }},
	{"city", "city", func(f Form) string { return f.City }},
	{"zipCode", "zip code", func(f Form) string { return f.ZipCode }},
	{"country", "country", func(f Form) string { return f.Country }},
}

// Validate returns nil or a non-empty FieldErrors. An empty payment
// method means credit.
func (f Form) Validate() error {
	fe := FieldErrors{}

	for _, rf := range requiredFields {
		if strings.TrimSpace(rf.value(f)) == "" {
			fe[rf.key] = "Please fill in your " + rf.label
		}
	}

	switch f.method() {
	case PayCredit:
		switch {
		case f.CardNumber == "" || f.ExpiryDate == "" || f.CVV == "":
			fe["card"] = "Please enter your card details"
		case len(strings.ReplaceAll(f.CardNumber, " ", "")) < minCardDigits:
			fe["cardNumber"] = "Please enter a valid card number"
		case len(f.CVV) < minCVVLen:
			fe["cvv"] = "Please enter a valid CVV"
		}
	case PayPal, PayCrypto:
	default:
		fe["paymentMethod"] = "Please choose a payment method"
	}

	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (f Form) method() PaymentMethod {
	if f.PaymentMethod == "" {
		return PayCredit
	}
	return f.PaymentMethod
}

type Quote struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

// NewQuote prices a subtotal; amounts are rounded to cents.
func NewQuote(subtotal float64) Quote {
	tax := cents(subtotal * TaxRate)
	return Quote{
		Subtotal: cents(subtotal),
		Shipping: ShippingCost,
		Tax:      tax,
		Total:    cents(subtotal + ShippingCost + tax),
	}
}

func cents(v float64) float64 {
	return math.Round(v*100) / 100
}

type ShipTo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
}

type Item struct {
	ProductID int64   `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
}

type Order struct {
	ID            string        `json:"orderId"`
	UserID        string        `json:"userId,omitempty"`
	Status        Status        `json:"status"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	CardLast4     string        `json:"cardLast4,omitempty"`
	ShipTo        ShipTo        `json:"shipTo"`
	Items         []Item        `json:"items"`
	Quote         Quote         `json:"quote"`
	CreatedAt     time.Time     `json:"orderDate"`
}

func itemsFrom(st cart.State) []Item {
	out := make([]Item, 0, len(st.Entries))
	for _, e := range st.Entries {
		out = append(out, Item{
			ProductID: e.Product.ID,
			Title:     e.Product.Title,
			Price:     e.Product.Price,
			Qty:       e.Quantity,
		})
	}
	return out
}

func last4(card string) string {
	digits := strings.ReplaceAll(card, " ", "")
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}
