package request

type SetQuantity struct {
	Quantity *int `validate:"required" json:"quantity"`
}

type SetLoading struct {
	Loading *bool `validate:"required" json:"loading"`
}

// SetError carries the message shown by the basket page; an empty message
// clears it.
type SetError struct {
	Message string `json:"message"`
}
