package domain

// Role of an account in the marketplace.
type Role string

const (
	RoleAdvertiser Role = "advertiser"
	RoleClipper    Role = "clipper"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdvertiser || r == RoleClipper
}

// Actor is the authenticated caller of an operation. ID is the subject
// issued by the identity provider and doubles as the account id.
type Actor struct {
	ID   string
	Role Role
}
