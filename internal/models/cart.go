package models

// CartLine is a line of a cart held by the caller.
type CartLine struct {
	MaterialID string `json:"material_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
}

// CartQuoteRequest asks for current prices of a store's cart.
type CartQuoteRequest struct {
	StoreID string     `json:"store_id" validate:"required"`
	Lines   []CartLine `json:"lines" validate:"required,min=1,dive"`
}

// CartLineQuote is the refreshed price of a cart line.
type CartLineQuote struct {
	MaterialID string     `json:"material_id"`
	Quantity   int        `json:"quantity"`
	Quote      PriceQuote `json:"quote"`
}
