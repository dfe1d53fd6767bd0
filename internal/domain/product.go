package domain

// Sizes lists the stock keys a product carries, in display order.
var Sizes = []string{"XS", "S", "M", "L", "XL", "XXL", "3XL", "4XL", "5XL", "6XL"}

// Product is a catalogue item. Image holds raw bytes; the backend encodes
// them as base64 in JSON.
type Product struct {
	ID          int            `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Quantity    int            `json:"quantity"`
	Image       []byte         `json:"image,omitempty"`
	CategoryIDs []int          `json:"categoryIds"`
	SizeStocks  map[string]int `json:"sizeStocks"`
}

// NormalizedStocks returns a stock map holding every known size, defaulting
// missing ones to zero. Unknown keys are kept.
func (p Product) NormalizedStocks() map[string]int {
	out := make(map[string]int, len(Sizes))
	for _, size := range Sizes {
		out[size] = 0
	}
	for size, qty := range p.SizeStocks {
		out[size] = qty
	}
	return out
}

// TotalStock sums all size stocks.
func (p Product) TotalStock() int {
	total := 0
	for _, qty := range p.SizeStocks {
		total += qty
	}
	return total
}
