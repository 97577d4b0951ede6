package constants

const (
	AppHomeZone   = "home-zone"
	AppCartZone   = "cart-zone"
	AppStorefront = "storefront"
)
