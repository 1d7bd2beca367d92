package auth

import (
	"fmt"
	"strings"
)

// Role is the closed set of permission tiers an identity can hold. Guards
// match on the enum exhaustively; unknown values fail closed.
type Role string

const (
	// RoleSuperAdmin operates the platform itself across all tenants.
	RoleSuperAdmin Role = "super_admin"
	// RoleAgencyAdmin administers a single tenant.
	RoleAgencyAdmin Role = "agency_admin"
	// RoleTeamMember is tenant staff without administrative rights.
	RoleTeamMember Role = "team_member"
	// RoleCustomer is an external customer with portal-only access.
	RoleCustomer Role = "customer"
)

// ParseRole normalizes and validates a raw role value.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleSuperAdmin:
		return RoleSuperAdmin, nil
	case RoleAgencyAdmin:
		return RoleAgencyAdmin, nil
	case RoleTeamMember:
		return RoleTeamMember, nil
	case RoleCustomer:
		return RoleCustomer, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
}

// Valid reports whether the role is one of the known tiers.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAgencyAdmin, RoleTeamMember, RoleCustomer:
		return true
	}
	return false
}

// ManagesPlatform reports whether the role may operate SaaS-admin surfaces.
func (r Role) ManagesPlatform() bool {
	return r == RoleSuperAdmin
}

// ManagesAgency reports whether the role may administer its tenant.
// The allow-set is a superset of ManagesPlatform.
func (r Role) ManagesAgency() bool {
	switch r {
	case RoleSuperAdmin, RoleAgencyAdmin:
		return true
	}
	return false
}

// TeamAccess reports whether the role belongs to tenant staff in the widest
// sense. The allow-set is a superset of ManagesAgency.
func (r Role) TeamAccess() bool {
	switch r {
	case RoleSuperAdmin, RoleAgencyAdmin, RoleTeamMember:
		return true
	}
	return false
}

// IsCustomer reports whether the role is the external customer tier.
func (r Role) IsCustomer() bool {
	return r == RoleCustomer
}
