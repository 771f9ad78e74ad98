package domain

// Role IDs match the seeded outsized_roles rows
const (
	RoleIDAdmin    uint = 1
	RoleIDCustomer uint = 2
)

// Role names
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// DefaultRole is assigned when a role cannot be resolved.
// A missing or unknown role assignment downgrades to CUSTOMER
// instead of blocking authentication.
const DefaultRole = RoleCustomer

var roleNames = map[uint]string{
	RoleIDAdmin:    RoleAdmin,
	RoleIDCustomer: RoleCustomer,
}

var roleIDs = map[string]uint{
	RoleAdmin:    RoleIDAdmin,
	RoleCustomer: RoleIDCustomer,
}

// RoleName resolves a role ID to its symbolic name.
// Unknown IDs resolve to DefaultRole.
func RoleName(id uint) string {
	if name, ok := roleNames[id]; ok {
		return name
	}
	return DefaultRole
}

// RoleID resolves a symbolic role name to its ID.
// Unknown names resolve to the CUSTOMER role ID.
func RoleID(name string) uint {
	if id, ok := roleIDs[name]; ok {
		return id
	}
	return RoleIDCustomer
}

// IsKnownRole reports whether name is part of the role catalog.
func IsKnownRole(name string) bool {
	_, ok := roleIDs[name]
	return ok
}
