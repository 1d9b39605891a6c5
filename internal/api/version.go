package api

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pbelskiy/helix-swarm/internal/apierrors"
)

var versionPattern = regexp.MustCompile(`.+(/api/v(\d+(?:\.\d+)?))`)

// Version is the API version negotiated at construction time. The string is
// kept verbatim for URL building; comparisons use its numeric value.
type Version struct {
	raw   string
	value float64
}

// ParseVersion parses a version such as "9" or "1.2".
func ParseVersion(s string) (Version, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return Version{}, apierrors.Errorf("invalid API version %q", s)
	}
	return Version{raw: s, value: v}, nil
}

// String returns the version as it appears in URLs.
func (v Version) String() string {
	return v.raw
}

// Float returns the numeric value of the version.
func (v Version) Float() float64 {
	return v.value
}

// AtLeast reports whether v >= min.
func (v Version) AtLeast(min float64) bool {
	return v.value >= min
}

// Require returns a *CompatibilityError when v is older than min.
func (v Version) Require(min float64) error {
	if v.AtLeast(min) {
		return nil
	}
	return &apierrors.CompatibilityError{Have: v.raw, Need: min}
}

// ParseURL splits a connection URL such as "https://swarm.example.com/api/v9"
// into the host (without trailing slash) and API version.
func ParseURL(rawURL string) (host string, version Version, err error) {
	m := versionPattern.FindStringSubmatchIndex(rawURL)
	if m == nil {
		return "", Version{}, &apierrors.Error{Err: apierrors.ErrMissingVersion}
	}

	host = strings.Trim(rawURL[:m[2]], "/")
	version, err = ParseVersion(rawURL[m[4]:m[5]])
	if err != nil {
		return "", Version{}, err
	}
	return host, version, nil
}
