package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleCashier Role = "cashier"
	RoleVendor  Role = "vendor"
)

// Roles lists every role in display order.
var Roles = []Role{RoleAdmin, RoleOwner, RoleManager, RoleCashier, RoleVendor}

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%q: %w", s, ErrInvalidRole)
}

func (r Role) String() string { return string(r) }

type ProfileStatus string

const (
	StatusActive   ProfileStatus = "active"
	StatusInactive ProfileStatus = "inactive"
)

// Profile is the business profile row attached to an auth account.
// Exactly one of VendorBusinessName and BusinessName is set, chosen by IsVendor.
type Profile struct {
	ID                 uuid.UUID     `json:"id"`
	UserID             uuid.UUID     `json:"user_id"`
	Email              string        `json:"email"`
	FullName           string        `json:"full_name"`
	Role               Role          `json:"role"`
	IsVendor           bool          `json:"is_vendor"`
	VendorBusinessName *string       `json:"vendor_business_name,omitempty"`
	BusinessName       *string       `json:"business_name,omitempty"`
	BusinessCode       string        `json:"business_code"`
	Phone              *string       `json:"phone,omitempty"`
	Branch             *string       `json:"branch,omitempty"`
	Status             ProfileStatus `json:"status"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// DisplayBusiness returns whichever business name the profile carries.
func (p Profile) DisplayBusiness() string {
	if p.IsVendor {
		return Deref(p.VendorBusinessName)
	}
	return Deref(p.BusinessName)
}

// SetBusinessName stores name in the column selected by the vendor flag and
// clears the other one.
func (p *Profile) SetBusinessName(isVendor bool, name string) {
	p.IsVendor = isVendor
	if isVendor {
		p.VendorBusinessName = OptionalString(name)
		p.BusinessName = nil
		return
	}
	p.BusinessName = OptionalString(name)
	p.VendorBusinessName = nil
}

// Validate checks the vendor/business name invariant.
func (p Profile) Validate() error {
	if p.IsVendor {
		if p.VendorBusinessName == nil || p.BusinessName != nil {
			return ErrVendorName
		}
		return nil
	}
	if p.BusinessName == nil || p.VendorBusinessName != nil {
		return ErrBusinessName
	}
	return nil
}

// UpdateProfileParams carries the admin-editable fields.
type UpdateProfileParams struct {
	FullName     string
	Role         Role
	IsVendor     bool
	BusinessName string
	Phone        string
	Branch       string
	Status       ProfileStatus
}

// OptionalString maps blank input to nil.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
