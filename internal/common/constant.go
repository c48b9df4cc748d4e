package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultCurrency is the currency assigned to detected expenses.
const DefaultCurrency = "INR"
