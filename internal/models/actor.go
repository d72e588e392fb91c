package models

// Actor is the authenticated caller of a case-management operation.
type Actor struct {
	UserID   string
	Username string
	FullName string
	Role     UserRole
	IP       string
	Agent    string
}

// ActorFromClaims builds an Actor from validated token claims.
func ActorFromClaims(claims *JWTClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{UserID: claims.UserID, Username: claims.Username, FullName: claims.FullName, Role: claims.Role}
}

// DisplayName is the name recorded as author of sessions and history rows.
func (a Actor) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Username
}
