package middleware

import (
	"strconv"
	"strings"

	"campushub/internal/core/domain"
	"campushub/internal/pkg/geofence"
	"campushub/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// GPS coordinate headers (decimal degrees)
const (
	HeaderLatitude  = "X-Latitude"
	HeaderLongitude = "X-Longitude"
)

// ipHeaderChain is the client-IP discovery order. Header names are part of
// the deployment contract with the reverse proxies in front of the portal.
var ipHeaderChain = []string{
	"X-Forwarded-For",
	"Proxy-Client-IP",
	"WL-Proxy-Client-IP",
	"HTTP_CLIENT_IP",
	"HTTP_X_FORWARDED_FOR",
	"X-Real-IP",
}

// GeoFenceFilter is the geofence stage of the admission pipeline. A
// whitelisted path short-circuits the whole check; otherwise the request
// passes if its client IP is whitelisted, or it carries GPS coordinates
// that fall inside the fence. Everything else is refused.
func GeoFenceFilter(eval *geofence.Evaluator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !eval.Enabled() {
			return c.Next()
		}

		if eval.IsPathWhitelisted(c.Path()) {
			return c.Next()
		}

		if eval.IsIPWhitelisted(ClientIP(c)) {
			return c.Next()
		}

		if lat, lng, ok := gpsCoordinates(c); ok && eval.IsWithinFence(lat, lng) {
			return c.Next()
		}

		return response.Refuse(c, domain.CodeOutOfGeofence,
			"Access restricted to the campus network or premises")
	}
}

// ClientIP discovers the client address from the forwarding headers in
// order, falling back to the connection address. Multi-value headers
// contribute their first comma-separated entry.
func ClientIP(c *fiber.Ctx) string {
	for _, header := range ipHeaderChain {
		value := c.Get(header)
		if value == "" || strings.EqualFold(value, "unknown") {
			continue
		}
		if i := strings.Index(value, ","); i >= 0 {
			value = value[:i]
		}
		return strings.TrimSpace(value)
	}
	return c.IP()
}

// gpsCoordinates reads the GPS headers. Missing or malformed values are
// treated as "no coordinates supplied", never as an error.
func gpsCoordinates(c *fiber.Ctx) (float64, float64, bool) {
	latStr := c.Get(HeaderLatitude)
	lngStr := c.Get(HeaderLongitude)
	if latStr == "" || lngStr == "" {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, false
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return 0, 0, false
	}

	return lat, lng, true
}
