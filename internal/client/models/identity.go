// Package models defines the client-side data models: the cached identity,
// the backend profile, sessions and their classification results.
package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/skincare/internal/common"
)

// Identity is the locally cached notion of the signed-in principal.
type Identity struct {
	// UID is the canonical user id; it never changes for a cached identity.
	UID string

	// DisplayName is the provider-supplied name, possibly empty.
	DisplayName string

	// ResolvedAt is the wall-clock time the identity was last resolved.
	ResolvedAt time.Time
}

// FreshAt reports whether the identity is younger than ttl at now.
// Only the age counts; revocation on the provider side is not observed.
// An entry stamped after now is treated as expired.
func (i *Identity) FreshAt(now time.Time, ttl time.Duration) bool {
	if i == nil || i.UID == "" {
		return false
	}
	age := now.Sub(i.ResolvedAt)
	return age >= 0 && age < ttl
}

// Profile mirrors the backend user record.
type Profile struct {
	UID  string
	Name string
}

// NeedsName reports whether the backend has no usable name for the user:
// empty, blank, or the "unknown" placeholder in any case.
func (p Profile) NeedsName() bool {
	name := strings.TrimSpace(p.Name)
	return name == "" || strings.EqualFold(name, common.NameUnknown)
}
