package domain

import (
	"fmt"
	"strings"
)

// Permission is a capability an account may hold.
type Permission uint8

const (
	// PermissionSend allows spending on behalf of the account.
	PermissionSend Permission = 1 << iota
	// PermissionReceive marks the account as able to receive. Address issuance
	// is not gated by it.
	PermissionReceive
)

var permissionNames = map[Permission]string{
	PermissionSend:    "send",
	PermissionReceive: "receive",
}

func (p Permission) String() string {
	if name, ok := permissionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("permission(%d)", uint8(p))
}

// ParsePermission converts a permission name into its Permission value.
func ParsePermission(s string) (Permission, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "send":
		return PermissionSend, nil
	case "receive":
		return PermissionReceive, nil
	default:
		return 0, fmt.Errorf("unknown permission %q", s)
	}
}

// PermissionSet is an immutable set of permissions. The zero value grants
// nothing.
type PermissionSet struct {
	mask Permission
}

// NewPermissionSet returns the set made of the given permissions.
func NewPermissionSet(perms ...Permission) PermissionSet {
	var mask Permission
	for _, p := range perms {
		mask |= p
	}
	return PermissionSet{mask}
}

// FullPermissions returns the set holding every known permission.
func FullPermissions() PermissionSet {
	return NewPermissionSet(PermissionSend, PermissionReceive)
}

// ParsePermissionSet builds a set from a list of permission names.
func ParsePermissionSet(names []string) (PermissionSet, error) {
	perms := make([]Permission, 0, len(names))
	for _, n := range names {
		p, err := ParsePermission(n)
		if err != nil {
			return PermissionSet{}, err
		}
		perms = append(perms, p)
	}
	return NewPermissionSet(perms...), nil
}

// Has returns whether p belongs to the set.
func (s PermissionSet) Has(p Permission) bool {
	return p != 0 && s.mask&p == p
}

// Strings returns the names of the permissions in the set.
func (s PermissionSet) Strings() []string {
	names := make([]string, 0, 2)
	for _, p := range []Permission{PermissionSend, PermissionReceive} {
		if s.Has(p) {
			names = append(names, p.String())
		}
	}
	return names
}

func (s PermissionSet) String() string {
	return "{" + strings.Join(s.Strings(), ",") + "}"
}
