// Package validation provides centralized input validation for upload
// requests. Inputs are checked before any network activity so a bad slug
// or username never costs a credential round-trip.
package validation

import (
	"regexp"
	"strings"

	"github.com/yurivangeffen/mapbox-utils/errors"
)

// maxSlugLength mirrors the service-side limit on tileset name components.
const maxSlugLength = 64

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateSlug validates the caller-chosen tileset name component. The slug
// is joined to the username with a dot, so it must not contain one itself.
func ValidateSlug(slug string) error {
	if slug == "" {
		return errors.NewError("validateSlug", errors.ErrInvalidInput).
			WithMessage("slug cannot be empty")
	}
	if len(slug) > maxSlugLength {
		return errors.NewError("validateSlug", errors.ErrInvalidInput).
			WithMessage("slug cannot exceed 64 characters")
	}
	if !slugPattern.MatchString(slug) {
		return errors.NewError("validateSlug", errors.ErrInvalidInput).
			WithMessage("slug may only contain letters, digits, hyphens and underscores")
	}
	return nil
}

// ValidateUsername validates the account name half of the tileset identifier.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.NewError("validateUsername", errors.ErrInvalidInput).
			WithMessage("username cannot be empty")
	}
	if strings.ContainsAny(username, "./ ") {
		return errors.NewError("validateUsername", errors.ErrInvalidInput).
			WithMessage("username cannot contain dots, slashes or spaces")
	}
	return nil
}

// ValidateToken checks that an access token is present. Token validity is
// the service's call; only absence is caught locally.
func ValidateToken(token string) error {
	if token == "" {
		return errors.NewError("validateToken", errors.ErrInvalidInput).
			WithMessage("access token cannot be empty")
	}
	return nil
}
