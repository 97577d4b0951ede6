package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
	KeyProcess            = "process"
	KeyTag                = "tag"
	KeyRequest            = "request"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyPathValues         = "pathValues"
	KeyConfig             = "config"
	KeyOrigin             = "origin"
	KeyStorageKey         = "storageKey"
	KeyStorageDriver      = "storageDriver"
	KeyPreviousWriter     = "previousWriter"
	KeyTransport          = "transport"
	KeyChannel            = "channel"
	KeyGroupID            = "groupId"
	KeyProductID          = "productId"
	KeyQuantity           = "quantity"
	KeyCartItems          = "cartItems"
	KeyCartItemsCount     = "cartItemsCount"
	KeyCartTotalItems     = "cartTotalItems"
	KeyCartTotalPrice     = "cartTotalPrice"
	KeyEvent              = "event"
	KeySubscribers        = "subscribers"
	KeyHandoffURL         = "handoffURL"
	KeyRequestProcessedAt = "requestProcessedAt"
)
