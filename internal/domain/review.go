package domain

// Review is a customer rating of a product.
type Review struct {
	ID        int     `json:"id"`
	Comment   string  `json:"comment"`
	Rating    float64 `json:"rating"`
	UserID    int     `json:"userId"`
	ProductID int     `json:"productId"`
}
