package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Principal is the set of identity attributes asserted by the identity
// provider for one authentication event. It lives for a single request.
type Principal struct {
	Username    string
	DisplayName string
	Email       string
	GroupClaim  string
}

// ExtractPrincipal derives a normalized Principal from the transport
// attribute bag. It is a pure function of the bag and the attribute
// configuration; it returns ErrMissingPrincipal when the username
// attribute is absent or empty.
func ExtractPrincipal(attrs map[string]string, cfg AttributeConfig) (Principal, error) {
	username := attrs[cfg.Username]
	if username == "" {
		return Principal{}, ErrMissingPrincipal
	}

	p := Principal{
		Username:   username,
		Email:      attrs[cfg.Email],
		GroupClaim: attrs[cfg.Groups],
	}

	// Display name: a single common-name attribute wins; otherwise
	// synthesize from given name + surname, each lower-cased then
	// first-letter-capitalized. Both parts are required for the fallback;
	// no default name is fabricated.
	if cn := attrs[cfg.CommonName]; cn != "" {
		p.DisplayName = cn
	} else if given, sur := attrs[cfg.GivenName], attrs[cfg.Surname]; given != "" && sur != "" {
		p.DisplayName = capitalize(strings.ToLower(given)) + " " + capitalize(strings.ToLower(sur))
	}

	return p, nil
}

// CanonicalUsername applies the host title-capitalization rule: the first
// rune is upper-cased, the remainder is left as supplied. This is the
// account store's identity key, distinct from the raw asserted value.
// The transformation is idempotent.
func CanonicalUsername(username string) string {
	return capitalize(username)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	upper := unicode.ToUpper(r)
	if upper == r {
		return s
	}
	return string(upper) + s[size:]
}
