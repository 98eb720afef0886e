package domain

// RefusalCode identifies why the admission pipeline (or a verification flow)
// turned a request away. Codes are part of the API contract.
type RefusalCode string

const (
	CodeAuthenticationRequired  RefusalCode = "AUTHENTICATION_REQUIRED"
	CodeAccountNotActive        RefusalCode = "ACCOUNT_DISABLED_OR_UNACTIVATED"
	CodeInsufficientRole        RefusalCode = "INSUFFICIENT_ROLE"
	CodeOutOfGeofence           RefusalCode = "OUT_OF_GEOFENCE"
	CodeServiceUnderMaintenance RefusalCode = "SERVICE_UNDER_MAINTENANCE"
	CodeInvalidOrExpiredCode    RefusalCode = "INVALID_OR_EXPIRED_CODE"
	CodeInvalidOrExpiredToken   RefusalCode = "INVALID_OR_EXPIRED_TOKEN"
	CodeResendCooldownActive    RefusalCode = "RESEND_COOLDOWN_ACTIVE"
)

// SuggestedStatus maps a refusal code to the HTTP status clients rely on
func (c RefusalCode) SuggestedStatus() int {
	switch c {
	case CodeAuthenticationRequired:
		return 401
	case CodeAccountNotActive, CodeInsufficientRole, CodeOutOfGeofence:
		return 403
	case CodeServiceUnderMaintenance:
		return 503
	case CodeInvalidOrExpiredCode, CodeInvalidOrExpiredToken:
		return 400
	case CodeResendCooldownActive:
		return 429
	default:
		return 403
	}
}

// Refusal is the structured outcome of a failed admission check. It
// marshals as the refusal response body the API contract promises.
type Refusal struct {
	Code    RefusalCode `json:"error_code"`
	Message string      `json:"message"`
	Path    string      `json:"path"`
}

// NewRefusal builds a refusal for the given code, message and request path
func NewRefusal(code RefusalCode, message, path string) *Refusal {
	return &Refusal{Code: code, Message: message, Path: path}
}
