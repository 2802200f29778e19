// Package upgrade merges newer factory-default menu content into a user's
// persisted menus. It operates on JSON documents and performs no I/O.
package upgrade

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedVersion indicates a version string that is not four
// dot-separated non-negative integers.
var ErrMalformedVersion = errors.New("upgrade: malformed version")

// Version is a four component dotted version, most significant first.
type Version [4]uint64

// String formats v as "a.b.c.d".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
}

// ParseVersion parses "a.b.c.d".
func ParseVersion(s string) (Version, error) {
	var v Version
	parts := strings.Split(s, ".")
	if len(parts) != len(v) {
		return v, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
	}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
		}
		v[i] = n
	}
	return v, nil
}

// Compare returns -1, 0 or 1 as v is older than, equal to or newer than o.
func (v Version) Compare(o Version) int {
	for i := range v {
		if v[i] > o[i] {
			return 1
		}
		if v[i] < o[i] {
			return -1
		}
	}
	return 0
}

// CompareVersions compares two version strings.
func CompareVersions(a, b string) (int, error) {
	va, err := ParseVersion(a)
	if err != nil {
		return 0, err
	}
	vb, err := ParseVersion(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// NeedsUpgrade reports whether the bundled version is strictly newer than
// the profile version. A malformed bundled version is an error; a
// malformed profile version always needs an upgrade.
func NeedsUpgrade(bundled, profile string) (bool, error) {
	vb, err := ParseVersion(bundled)
	if err != nil {
		return false, fmt.Errorf("bundled version: %w", err)
	}
	vp, err := ParseVersion(profile)
	if err != nil {
		return true, nil
	}
	return vb.Compare(vp) > 0, nil
}
