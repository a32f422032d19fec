// AngelaMos | 2026
// lifecycle.go

package account

import (
	"math"
	"strings"
	"time"

	"github.com/ristan-marine/catalog-api/internal/identity"
)

const (
	SelfServiceTrialDays = 30
	OAuthTrialMonths     = 3
	MaxTrialDays         = 3650

	fallbackName    = "User"
	fallbackCompany = "Unknown"
)

// All expiry arithmetic adds calendar components, so month and year
// rollovers follow the calendar rather than fixed 24h steps.

func TrialExpiry(createdAt time.Time, days int) time.Time {
	return createdAt.AddDate(0, 0, days)
}

func OAuthTrialExpiry(createdAt time.Time) time.Time {
	return createdAt.AddDate(0, OAuthTrialMonths, 0)
}

// Extend adds days to whichever is later of the current expiry and now, so an
// expired account never inherits its stale expiry.
func Extend(current, now time.Time, days int) time.Time {
	base := current
	if now.After(base) {
		base = now
	}
	return base.AddDate(0, 0, days)
}

// IsUsable reports whether the profile grants catalog access at now. An
// expiry equal to now is already expired.
func IsUsable(p *Profile, now time.Time) bool {
	return p != nil && p.IsActive && p.ExpiresAt.After(now)
}

// DaysLeft rounds the remaining time up to whole days, never below zero.
func DaysLeft(expiresAt, now time.Time) int {
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

// DeriveOAuthProfile picks display fields for a first OAuth login from what
// the provider supplied.
func DeriveOAuthProfile(id *identity.Identity) (fullName, company string) {
	local, domain, hasDomain := strings.Cut(id.Email, "@")

	fullName = firstNonEmpty(
		id.Metadata.FullName,
		id.Metadata.Name,
		local,
		fallbackName,
	)

	var domainLabel string
	if hasDomain {
		domainLabel, _, _ = strings.Cut(domain, ".")
	}
	company = firstNonEmpty(id.Metadata.HostedDomain, domainLabel, fallbackCompany)

	return fullName, company
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
