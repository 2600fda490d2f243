// Package validation checks user-supplied selection input before it reaches
// the query engine.
//
// A site that is well formed but unknown is not an error here: it selects no
// launches. Only input that could never name a site is rejected.
package validation

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xtxerr/launchboard/internal/errors"
	"github.com/xtxerr/launchboard/internal/launch"
)

// =============================================================================
// Site Names
// =============================================================================

// SiteRules defines the validation rules for site names.
type SiteRules struct {
	MinLength int
	MaxLength int
}

// DefaultSiteRules returns the rules applied to requested sites.
func DefaultSiteRules() SiteRules {
	return SiteRules{
		MinLength: 1,
		MaxLength: 128,
	}
}

// ValidateSite validates a site name according to the given rules.
// The returned error wraps errors.ErrInvalidRequest.
func ValidateSite(site string, rules SiteRules) error {
	if !utf8.ValidString(site) {
		return errors.Wrap(errors.ErrInvalidRequest, "site is not valid UTF-8")
	}

	n := utf8.RuneCountInString(site)
	if n < rules.MinLength {
		return errors.Wrapf(errors.ErrInvalidRequest, "site too short: minimum %d characters required", rules.MinLength)
	}
	if n > rules.MaxLength {
		return errors.Wrapf(errors.ErrInvalidRequest, "site too long: maximum %d characters allowed", rules.MaxLength)
	}

	if strings.TrimSpace(site) != site {
		return errors.Wrap(errors.ErrInvalidRequest, "site cannot start or end with whitespace")
	}

	pos := 0
	for _, r := range site {
		if unicode.IsControl(r) {
			return errors.Wrapf(errors.ErrInvalidRequest, "site cannot contain control characters at position %d", pos)
		}
		pos++
	}
	return nil
}

// NormalizeSite maps the case-insensitive spelling of the all-sites value to
// launch.AllSites, trims surrounding whitespace and validates the result.
// An empty site means all sites.
func NormalizeSite(site string) (string, error) {
	site = strings.TrimSpace(site)
	if site == "" || strings.EqualFold(site, launch.AllSites) {
		return launch.AllSites, nil
	}
	if err := ValidateSite(site, DefaultSiteRules()); err != nil {
		return "", err
	}
	return site, nil
}
