package config

type SecurityLevel int

const (
	SecurityPublic SecurityLevel = iota // No authentication
	SecurityRead                        // token with read or write scope
	SecurityWrite                       // token with write scope
)

const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

// EndpointSecurityConfig maps HTTP route names and gRPC full method names
// to their required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	"health":                       SecurityPublic,
	"/grpc.health.v1.Health/Check": SecurityPublic,
	"/grpc.health.v1.Health/Watch": SecurityPublic,
	"/grpc.health.v1.Health/List":  SecurityPublic,

	// Read-only engine queries
	"availability":     SecurityRead,
	"calendar":         SecurityRead,
	"suggestions":      SecurityRead,
	"reduced_quantity": SecurityRead,
	"quote":            SecurityRead,

	"/rental.engine.v1.Engine/CheckAvailability":      SecurityRead,
	"/rental.engine.v1.Engine/SuggestDates":           SecurityRead,
	"/rental.engine.v1.Engine/SuggestReducedQuantity": SecurityRead,
	"/rental.engine.v1.Engine/Quote":                  SecurityRead,

	// Ledger writes and billing recomputes
	"place_hold":   SecurityWrite,
	"early_return": SecurityWrite,
	"extension":    SecurityWrite,
	"replacement":  SecurityWrite,

	"/rental.engine.v1.Engine/PlaceHold": SecurityWrite,
}

// GetSecurityLevel returns the security level for a given route
func GetSecurityLevel(route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityWrite
}

// Allows reports whether a token scope satisfies the level.
func (l SecurityLevel) Allows(scope string) bool {
	switch l {
	case SecurityPublic:
		return true
	case SecurityRead:
		return scope == ScopeRead || scope == ScopeWrite
	default:
		return scope == ScopeWrite
	}
}
