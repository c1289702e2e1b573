package provisioning

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/FACorreiaa/pos-templui/internal/app/models"
)

const minPasswordLength = 6

// Form is the new-user form as submitted by an admin.
type Form struct {
	Email        string
	Password     string
	FullName     string
	Role         string
	IsVendor     bool
	BusinessName string
	BusinessCode string
	Phone        string
	BranchID     string
}

// Normalize trims free-text fields and lower-cases the email.
func (f Form) Normalize() Form {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.FullName = strings.TrimSpace(f.FullName)
	f.BusinessName = strings.TrimSpace(f.BusinessName)
	f.BusinessCode = strings.TrimSpace(f.BusinessCode)
	f.Phone = strings.TrimSpace(f.Phone)
	f.BranchID = strings.TrimSpace(f.BranchID)
	return f
}

// Validate reports every problem with the form, joined, wrapping ErrValidation.
func (f Form) Validate() error {
	var problems []error
	if f.Email == "" {
		problems = append(problems, errors.New("email is required"))
	} else if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		problems = append(problems, errors.New("email is not valid"))
	}
	if len(f.Password) < minPasswordLength {
		problems = append(problems, fmt.Errorf("password must be at least %d characters", minPasswordLength))
	}
	if f.FullName == "" {
		problems = append(problems, errors.New("full name is required"))
	}
	if _, err := models.ParseRole(f.Role); err != nil {
		problems = append(problems, errors.New("role must be one of admin, owner, manager, cashier, vendor"))
	}
	if f.BusinessName == "" {
		if f.IsVendor {
			problems = append(problems, models.ErrVendorName)
		} else {
			problems = append(problems, models.ErrBusinessName)
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", models.ErrValidation, errors.Join(problems...))
}

// Metadata is stored on the remote account at sign-up.
func (f Form) Metadata() map[string]any {
	return map[string]any{"role": strings.ToLower(strings.TrimSpace(f.Role)), "full_name": f.FullName}
}
