// Package validation provides custom validation rules for the application.
package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	validation "github.com/jellydator/validation"
)

// emailRegex accepts local@domain.tld; used for the git commit identity.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Email validates an email address.
var Email = validation.NewStringRuleWithError(
	func(s string) bool {
		return emailRegex.MatchString(s)
	},
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NoWhitespace rejects values with leading or trailing whitespace, a common
// copy-paste mistake in .env files.
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// HasPrefix validates that a non-empty string starts with prefix.
// Credential shape checks use it, so the message never echoes the value.
func HasPrefix(prefix, message string) validation.Rule {
	return validation.NewStringRuleWithError(
		func(s string) bool {
			return strings.HasPrefix(s, prefix)
		},
		validation.NewError("validation_prefix", message),
	)
}

// URL validates that a non-empty string is an absolute URL with a host and one of
// the given schemes.
func URL(schemes ...string) validation.Rule {
	return validation.NewStringRuleWithError(
		func(s string) bool {
			u, err := url.Parse(s)
			if err != nil || u.Host == "" {
				return false
			}
			return slices.Contains(schemes, strings.ToLower(u.Scheme))
		},
		validation.NewError(
			"validation_url",
			fmt.Sprintf("must be a valid URL (%s)", strings.Join(schemes, ", ")),
		),
	)
}

// IntRange validates that an int lies in [lo, hi].
// Unlike validation.Min, zero is not treated as an empty value and is checked too.
func IntRange(lo, hi int) validation.Rule {
	return validation.By(func(value interface{}) error {
		n, ok := value.(int)
		if !ok {
			return validation.NewError("validation_int_type", "must be an integer")
		}
		if n < lo || n > hi {
			return validation.NewError(
				"validation_int_range",
				fmt.Sprintf("must be between %d and %d", lo, hi),
			)
		}
		return nil
	})
}

// IntMin validates that an int is at least lo.
func IntMin(lo int) validation.Rule {
	return validation.By(func(value interface{}) error {
		n, ok := value.(int)
		if !ok {
			return validation.NewError("validation_int_type", "must be an integer")
		}
		if n < lo {
			return validation.NewError("validation_int_min", fmt.Sprintf("must be at least %d", lo))
		}
		return nil
	})
}
