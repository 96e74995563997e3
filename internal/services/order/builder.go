package order

import (
	"errors"
	"fmt"
	"strings"

	"pizzapap/internal/models"
)

var (
	// ErrInvalidInput is returned when a value is outside its catalog
	ErrInvalidInput = errors.New("invalid input")
	// ErrIncompleteOrder is returned by Finalize while required fields are empty
	ErrIncompleteOrder = errors.New("incomplete order")
)

// Builder holds one in-progress order draft. It is owned by a single form
// session and is not safe for concurrent use.
type Builder struct {
	flavor      models.Flavor
	size        models.Size
	crust       models.Crust
	toppings    []models.Topping
	name        string
	phoneNumber string
	location    string

	// total is derived; only recalculateTotal writes it
	total int64
}

// NewBuilder returns an empty draft with a total of 0
func NewBuilder() *Builder {
	return &Builder{}
}

// SetSize replaces the size. Unknown sizes are rejected and leave the draft unchanged.
func (b *Builder) SetSize(size models.Size) error {
	if !size.IsValid() {
		return fmt.Errorf("%w: unknown size %q", ErrInvalidInput, size)
	}
	b.size = size
	b.recalculateTotal()
	return nil
}

// SetCrust replaces the crust. Unknown crusts are rejected and leave the draft unchanged.
func (b *Builder) SetCrust(crust models.Crust) error {
	if !crust.IsValid() {
		return fmt.Errorf("%w: unknown crust %q", ErrInvalidInput, crust)
	}
	b.crust = crust
	b.recalculateTotal()
	return nil
}

// ToggleTopping adds the topping if absent, removes it if present
func (b *Builder) ToggleTopping(topping models.Topping) error {
	if !topping.IsValid() {
		return fmt.Errorf("%w: unknown topping %q", ErrInvalidInput, topping)
	}

	if i := b.toppingIndex(topping); i >= 0 {
		b.toppings = append(b.toppings[:i], b.toppings[i+1:]...)
	} else {
		b.toppings = append(b.toppings, topping)
	}
	b.recalculateTotal()
	return nil
}

// SetFlavor replaces the flavor. Flavors not on the menu are rejected.
func (b *Builder) SetFlavor(flavor models.Flavor) error {
	if !flavor.IsValid() {
		return fmt.Errorf("%w: unknown flavor %q", ErrInvalidInput, flavor)
	}
	b.flavor = flavor
	return nil
}

func (b *Builder) SetName(name string)         { b.name = name }
func (b *Builder) SetPhone(phoneNumber string) { b.phoneNumber = phoneNumber }
func (b *Builder) SetLocation(location string) { b.location = location }

// Total returns the current price of the draft
func (b *Builder) Total() int64 { return b.total }

// Toppings returns the selected toppings in selection order
func (b *Builder) Toppings() []models.Topping {
	out := make([]models.Topping, len(b.toppings))
	copy(out, b.toppings)
	return out
}

// HasTopping reports whether topping is selected
func (b *Builder) HasTopping(topping models.Topping) bool {
	return b.toppingIndex(topping) >= 0
}

// IsComplete reports whether every required field is filled. Toppings are optional.
func (b *Builder) IsComplete() bool {
	return len(b.Missing()) == 0
}

// Missing lists the required fields that are still empty
func (b *Builder) Missing() []string {
	var missing []string
	if b.name == "" {
		missing = append(missing, "name")
	}
	if b.flavor == models.FlavorUnset {
		missing = append(missing, "flavor")
	}
	if b.size == models.SizeUnset {
		missing = append(missing, "size")
	}
	if b.crust == models.CrustUnset {
		missing = append(missing, "crust")
	}
	if b.phoneNumber == "" {
		missing = append(missing, "phone_number")
	}
	if b.location == "" {
		missing = append(missing, "location")
	}
	return missing
}

// Finalize returns an immutable snapshot of a complete draft. The builder
// keeps no reference to the snapshot.
func (b *Builder) Finalize() (models.OrderSnapshot, error) {
	if missing := b.Missing(); len(missing) > 0 {
		return models.OrderSnapshot{}, fmt.Errorf("%w: missing %s", ErrIncompleteOrder, strings.Join(missing, ", "))
	}

	names := make([]string, len(b.toppings))
	for i, t := range b.toppings {
		names[i] = string(t)
	}

	return models.OrderSnapshot{
		Flavor:      b.flavor,
		Size:        b.size,
		Crust:       b.crust,
		Name:        b.name,
		PhoneNumber: b.phoneNumber,
		Location:    b.location,
		Total:       b.total,
		Toppings:    strings.Join(names, models.ToppingSeparator),
	}, nil
}

// Apply feeds a form selection through the setters in form order. Listed
// toppings are selected; repeats are ignored. It stops at the first rejected
// value, so callers should apply to a fresh builder.
func (b *Builder) Apply(sel models.OrderSelection) error {
	if err := b.SetFlavor(models.Flavor(sel.Flavor)); err != nil {
		return err
	}
	if err := b.SetSize(models.Size(sel.Size)); err != nil {
		return err
	}
	if err := b.SetCrust(models.Crust(sel.Crust)); err != nil {
		return err
	}
	for _, name := range sel.Toppings {
		t := models.Topping(name)
		if b.HasTopping(t) {
			continue
		}
		if err := b.ToggleTopping(t); err != nil {
			return err
		}
	}
	b.SetName(sel.Name)
	b.SetPhone(sel.PhoneNumber)
	b.SetLocation(sel.Location)
	return nil
}

// recalculateTotal derives the total from the current selections
func (b *Builder) recalculateTotal() {
	b.total = b.size.Price() + b.crust.Price() + models.ToppingUnitPrice*int64(len(b.toppings))
}

func (b *Builder) toppingIndex(topping models.Topping) int {
	for i, t := range b.toppings {
		if t == topping {
			return i
		}
	}
	return -1
}
