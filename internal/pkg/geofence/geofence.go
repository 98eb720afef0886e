package geofence

import (
	"math"
	"strconv"
	"strings"
)

// EarthRadiusMeters is the mean Earth radius used by the Haversine formula
const EarthRadiusMeters = 6371000.0

// Config holds the geofence configuration snapshot.
// Loaded once at startup and treated as read-only afterwards.
type Config struct {
	Enabled      bool
	CenterLat    float64
	CenterLng    float64
	RadiusMeters float64
	IPWhitelist  []string // exact IPv4/IPv6 addresses or IPv4 CIDR blocks
	PathPrefixes []string // whitelisted path prefixes
}

// Evaluator answers distance, IP-whitelist and path-whitelist questions
// against an immutable configuration snapshot. Safe for concurrent use.
type Evaluator struct {
	cfg Config
}

// NewEvaluator creates an evaluator over the given configuration
func NewEvaluator(cfg Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Enabled reports whether the fence is active
func (e *Evaluator) Enabled() bool {
	return e.cfg.Enabled
}

// DistanceMeters computes the great-circle distance between two points
// using the Haversine formula
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// IsWithinFence reports whether a point lies inside the configured radius.
// A disabled fence admits every point.
func (e *Evaluator) IsWithinFence(lat, lng float64) bool {
	if !e.cfg.Enabled {
		return true
	}
	return DistanceMeters(e.cfg.CenterLat, e.cfg.CenterLng, lat, lng) <= e.cfg.RadiusMeters
}

// IsIPWhitelisted reports whether an IP matches any configured pattern,
// either exactly or by IPv4 CIDR containment. A disabled fence admits
// every address.
func (e *Evaluator) IsIPWhitelisted(ip string) bool {
	if !e.cfg.Enabled {
		return true
	}
	for _, pattern := range e.cfg.IPWhitelist {
		if pattern == ip {
			return true
		}
		if strings.Contains(pattern, "/") && IsIPInCIDR(ip, pattern) {
			return true
		}
	}
	return false
}

// IsPathWhitelisted reports whether a request path equals or starts with
// any whitelisted prefix. A disabled fence admits every path.
func (e *Evaluator) IsPathWhitelisted(path string) bool {
	if !e.cfg.Enabled {
		return true
	}
	for _, prefix := range e.cfg.PathPrefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// IsIPInCIDR reports whether an IPv4 address falls inside an IPv4 CIDR block.
// IPv6 addresses and IPv6 CIDR patterns always report false here; IPv6
// whitelisting works through exact match only.
func IsIPInCIDR(ip, cidr string) bool {
	parts := strings.SplitN(cidr, "/", 2)
	if len(parts) != 2 {
		return false
	}

	prefixLen, err := strconv.Atoi(parts[1])
	if err != nil || prefixLen < 0 || prefixLen > 32 {
		return false
	}

	ipInt, ok := ipv4ToUint32(ip)
	if !ok {
		return false
	}
	netInt, ok := ipv4ToUint32(parts[0])
	if !ok {
		return false
	}

	var mask uint32
	if prefixLen > 0 {
		mask = ^uint32(0) << (32 - prefixLen)
	}
	return ipInt&mask == netInt&mask
}

// ipv4ToUint32 converts a dotted-quad IPv4 address to its big-endian
// 32-bit integer form
func ipv4ToUint32(ip string) (uint32, bool) {
	octets := strings.Split(ip, ".")
	if len(octets) != 4 {
		return 0, false
	}
	var result uint32
	for _, o := range octets {
		n, err := strconv.Atoi(o)
		if err != nil || n < 0 || n > 255 {
			return 0, false
		}
		result = result<<8 | uint32(n)
	}
	return result, true
}
