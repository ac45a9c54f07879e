package services

import (
	"fmt"
	"unicode"

	"github.com/agrienergy/agri-produce/internal/config"
)

type PasswordPolicy struct {
	MinLength              int
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
	RequireNonAlphanumeric bool
}

func NewPasswordPolicy(cfg config.PasswordConfig) PasswordPolicy {
	return PasswordPolicy{
		MinLength:              cfg.MinLength,
		RequireDigit:           cfg.RequireDigit,
		RequireLowercase:       cfg.RequireLowercase,
		RequireUppercase:       cfg.RequireUppercase,
		RequireNonAlphanumeric: cfg.RequireNonAlphanumeric,
	}
}

// DefaultPasswordPolicy: six characters, one digit, one lowercase letter.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 6, RequireDigit: true, RequireLowercase: true}
}

func (p PasswordPolicy) Validate(password string) ValidationErrors {
	var errs ValidationErrors

	if len([]rune(password)) < p.MinLength {
		errs.Add("Password", fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength))
	}

	var hasDigit, hasLower, hasUpper, hasOther bool
	for _, char := range password {
		switch {
		case unicode.IsDigit(char):
			hasDigit = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsUpper(char):
			hasUpper = true
		case !unicode.IsLetter(char):
			hasOther = true
		}
	}

	if p.RequireDigit && !hasDigit {
		errs.Add("Password", "Passwords must have at least one digit ('0'-'9').")
	}
	if p.RequireLowercase && !hasLower {
		errs.Add("Password", "Passwords must have at least one lowercase ('a'-'z').")
	}
	if p.RequireUppercase && !hasUpper {
		errs.Add("Password", "Passwords must have at least one uppercase ('A'-'Z').")
	}
	if p.RequireNonAlphanumeric && !hasOther {
		errs.Add("Password", "Passwords must have at least one non alphanumeric character.")
	}
	return errs
}
