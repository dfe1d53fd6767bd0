package domain

// Category groups products.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
