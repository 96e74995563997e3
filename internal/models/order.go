package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidOrderID indicates the order id is not a UUID
var ErrInvalidOrderID = errors.New("invalid order ID format")

// AccountID is the wallet account that pays for and owns orders
type AccountID string

func (a AccountID) String() string { return string(a) }
func (a AccountID) IsZero() bool   { return strings.TrimSpace(string(a)) == "" }

// OrderID identifies a placed order. It is assigned by the order store.
type OrderID string

// NewOrderID returns a random order id
func NewOrderID() OrderID {
	return OrderID(uuid.NewString())
}

// ParseOrderID validates s as an order id
func ParseOrderID(s string) (OrderID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", ErrInvalidOrderID
	}
	return OrderID(s), nil
}

func (id OrderID) String() string { return string(id) }

// OrderStatus is the outcome of a checkout shown to the customer
type OrderStatus int

const (
	StatusPending   OrderStatus = 0
	StatusConfirmed OrderStatus = 1
	StatusRejected  OrderStatus = 2
)

func (s OrderStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusConfirmed:
		return "confirmed"
	default:
		return "rejected"
	}
}

// User is the wallet session as seen by the storefront
type User struct {
	ID              AccountID `json:"account_id"`
	IsAuthenticated bool      `json:"is_authenticated"`
}

// OrderSnapshot is the immutable payload produced when a draft is finalized
type OrderSnapshot struct {
	Flavor      Flavor `json:"flavor"`
	Size        Size   `json:"size"`
	Crust       Crust  `json:"crust"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Location    string `json:"location"`
	Total       int64  `json:"total"`
	// Toppings are joined with ToppingSeparator in selection order
	Toppings string `json:"toppings"`
}

// ToppingSeparator joins toppings in a snapshot
const ToppingSeparator = ", "

// OrderRecord is a stored order as returned by the order query service
type OrderRecord struct {
	ID          OrderID `json:"id"`
	Flavor      string  `json:"flavor"`
	Size        string  `json:"size"`
	Crust       string  `json:"crust"`
	Toppings    string  `json:"toppings"`
	Name        string  `json:"name"`
	Location    string  `json:"location"`
	PhoneNumber string  `json:"phone_number"`
	// Total is formatted in tokens
	Total string `json:"total"`
	// Delivered is set once the customer confirms delivery
	Delivered bool `json:"status"`
}

// OrderSelection is the customer's form input. Fields are applied to a
// fresh draft through the builder setters.
type OrderSelection struct {
	Flavor      string   `json:"flavor"`
	Size        string   `json:"size"`
	Crust       string   `json:"crust"`
	Toppings    []string `json:"toppings"`
	Name        string   `json:"name"`
	PhoneNumber string   `json:"phone_number"`
	Location    string   `json:"location"`
}

// QuoteResponse reports the running total of a selection
type QuoteResponse struct {
	Total    int64    `json:"total"`
	Complete bool     `json:"complete"`
	Missing  []string `json:"missing"`
}

// Receipt is returned after a checkout attempt
type Receipt struct {
	OrderID OrderID     `json:"order_id,omitempty"`
	Status  OrderStatus `json:"status"`
	Message string      `json:"message"`
	Total   int64       `json:"total"`
	// Balance is the account balance after the order, empty if unknown
	Balance string `json:"balance,omitempty"`
}

// BalanceResponse is the balance of the signed-in account
type BalanceResponse struct {
	AccountID AccountID `json:"account_id"`
	Balance   string    `json:"balance"`
}
