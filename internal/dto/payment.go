package dto

// StartCheckoutResponse carries the hosted checkout session the client should
// redirect the owner to, plus the fee that was priced for the activation.
// Status "complete" means the pending session turned out to be already paid
// and was reconciled instead; there is nothing left to redirect to.
type StartCheckoutResponse struct {
	ListingID   string `json:"listingID"`
	SessionID   string `json:"sessionID"`
	CheckoutURL string `json:"checkoutURL,omitempty"`
	AmountPence int64  `json:"amountPence"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
}

// ReconcileCheckoutResponse reports whether this reconciliation call performed
// the activation. Applied is false both for replays (the listing was already
// Active) and for confirmations that did not match the listing's pending
// session; the listing's current state says which.
type ReconcileCheckoutResponse struct {
	Applied bool             `json:"applied"`
	Listing *ListingResponse `json:"listing,omitempty"`
}
