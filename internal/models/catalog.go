package models

// Size is the pizza size. The zero value means not chosen yet.
type Size string

const (
	SizeUnset  Size = ""
	SizeSmall  Size = "Small"
	SizeMedium Size = "Medium"
	SizeLarge  Size = "Large"
)

// Crust is the pizza crust. The zero value means not chosen yet.
type Crust string

const (
	CrustUnset      Crust = ""
	CrustCrispy     Crust = "Crispy"
	CrustStuffed    Crust = "Stuffed"
	CrustGlutenFree Crust = "Gluten-free"
)

// Topping is an optional extra priced at ToppingUnitPrice
type Topping string

const (
	ToppingSausage  Topping = "Sausage"
	ToppingBacon    Topping = "Bacon"
	ToppingMushroom Topping = "Mushroom"
)

// Flavor is the pizza on the menu. The zero value means not chosen yet.
type Flavor string

const (
	FlavorUnset                Flavor = ""
	FlavorChickenTikka         Flavor = "Chicken Tikka"
	FlavorPeriPeri             Flavor = "PeriPeri Pizza"
	FlavorRaspberryDessert     Flavor = "Raspberry Dessert Pizza"
	FlavorChickenAlfredo       Flavor = "Chicken Alfredo Pizza"
	FlavorSunchoke             Flavor = "Sunchoke Pizza"
	FlavorBuffaloChickenSticks Flavor = "Buffalo Chicken Sticks"
)

// ToppingUnitPrice is charged once per selected topping
const ToppingUnitPrice int64 = 1

var sizePrices = map[Size]int64{
	SizeLarge:  10,
	SizeMedium: 7,
	SizeSmall:  5,
}

var crustPrices = map[Crust]int64{
	CrustCrispy:     3,
	CrustStuffed:    3,
	CrustGlutenFree: 2,
}

// Sizes lists the selectable sizes, largest first
var Sizes = []Size{SizeLarge, SizeMedium, SizeSmall}

// Crusts lists the selectable crusts
var Crusts = []Crust{CrustCrispy, CrustStuffed, CrustGlutenFree}

// Toppings is the topping catalog in display order
var Toppings = []Topping{ToppingSausage, ToppingBacon, ToppingMushroom}

// Flavors is the menu in display order
var Flavors = []Flavor{
	FlavorChickenTikka,
	FlavorPeriPeri,
	FlavorRaspberryDessert,
	FlavorChickenAlfredo,
	FlavorSunchoke,
	FlavorBuffaloChickenSticks,
}

// Price returns the size price; unset prices at 0
func (s Size) Price() int64 { return sizePrices[s] }

// IsValid reports whether s is unset or in the catalog
func (s Size) IsValid() bool {
	_, ok := sizePrices[s]
	return ok || s == SizeUnset
}

func (s Size) String() string { return string(s) }

// Price returns the crust price; unset prices at 0
func (c Crust) Price() int64 { return crustPrices[c] }

// IsValid reports whether c is unset or in the catalog
func (c Crust) IsValid() bool {
	_, ok := crustPrices[c]
	return ok || c == CrustUnset
}

func (c Crust) String() string { return string(c) }

// IsValid reports whether t is in the topping catalog. There is no unset topping.
func (t Topping) IsValid() bool {
	for _, known := range Toppings {
		if t == known {
			return true
		}
	}
	return false
}

func (t Topping) String() string { return string(t) }

// IsValid reports whether f is unset or on the menu
func (f Flavor) IsValid() bool {
	if f == FlavorUnset {
		return true
	}
	for _, known := range Flavors {
		if f == known {
			return true
		}
	}
	return false
}

func (f Flavor) String() string { return string(f) }

// CatalogEntry is one priced option as shown to the customer
type CatalogEntry struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// CatalogResponse is the full menu served to clients
type CatalogResponse struct {
	Flavors          []string       `json:"flavors"`
	Sizes            []CatalogEntry `json:"sizes"`
	Crusts           []CatalogEntry `json:"crusts"`
	Toppings         []string       `json:"toppings"`
	ToppingUnitPrice int64          `json:"topping_unit_price"`
}

// Catalog builds the menu response from the fixed tables
func Catalog() CatalogResponse {
	resp := CatalogResponse{ToppingUnitPrice: ToppingUnitPrice}

	for _, f := range Flavors {
		resp.Flavors = append(resp.Flavors, string(f))
	}
	for _, s := range Sizes {
		resp.Sizes = append(resp.Sizes, CatalogEntry{Name: string(s), Price: s.Price()})
	}
	for _, c := range Crusts {
		resp.Crusts = append(resp.Crusts, CatalogEntry{Name: string(c), Price: c.Price()})
	}
	for _, t := range Toppings {
		resp.Toppings = append(resp.Toppings, string(t))
	}

	return resp
}
