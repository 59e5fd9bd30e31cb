package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPrincipal(t *testing.T) {
	cfg := testConfig().Attributes

	t.Run("fails without username attribute", func(t *testing.T) {
		attrs := map[string]string{
			"mail":       "j@x.org",
			"commonName": "Jane Doe",
		}

		_, err := ExtractPrincipal(attrs, cfg)
		require.ErrorIs(t, err, ErrMissingPrincipal)
	})

	t.Run("fails on empty attribute map", func(t *testing.T) {
		_, err := ExtractPrincipal(map[string]string{}, cfg)
		require.ErrorIs(t, err, ErrMissingPrincipal)
	})

	t.Run("extracts full principal", func(t *testing.T) {
		attrs := map[string]string{
			"eppn":       "jdoe@example.org",
			"commonName": "Jane Doe",
			"mail":       "j@x.org",
			"isMemberOf": "pfx:editors;pfx:admins",
		}

		p, err := ExtractPrincipal(attrs, cfg)
		require.NoError(t, err)
		assert.Equal(t, "jdoe@example.org", p.Username)
		assert.Equal(t, "Jane Doe", p.DisplayName)
		assert.Equal(t, "j@x.org", p.Email)
		assert.Equal(t, "pfx:editors;pfx:admins", p.GroupClaim)
	})

	t.Run("common name wins over given name and surname", func(t *testing.T) {
		attrs := map[string]string{
			"eppn":       "jdoe",
			"commonName": "Jane Doe",
			"givenName":  "JANET",
			"surname":    "DOLOR",
		}

		p, err := ExtractPrincipal(attrs, cfg)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", p.DisplayName)
	})

	t.Run("synthesizes display name from given name and surname", func(t *testing.T) {
		attrs := map[string]string{
			"eppn":      "jdoe",
			"givenName": "JANE",
			"surname":   "doe",
		}

		p, err := ExtractPrincipal(attrs, cfg)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", p.DisplayName)
	})

	t.Run("no display name without both name parts", func(t *testing.T) {
		for name, attrs := range map[string]map[string]string{
			"given name only": {"eppn": "jdoe", "givenName": "Jane"},
			"surname only":    {"eppn": "jdoe", "surname": "Doe"},
			"neither":         {"eppn": "jdoe"},
		} {
			p, err := ExtractPrincipal(attrs, cfg)
			require.NoError(t, err, name)
			assert.Empty(t, p.DisplayName, name)
		}
	})

	t.Run("email passes through verbatim", func(t *testing.T) {
		attrs := map[string]string{
			"eppn": "jdoe",
			"mail": "MiXeD@CaSe.Org",
		}

		p, err := ExtractPrincipal(attrs, cfg)
		require.NoError(t, err)
		assert.Equal(t, "MiXeD@CaSe.Org", p.Email)
	})
}

func TestCanonicalUsername(t *testing.T) {
	t.Run("uppercases first letter only", func(t *testing.T) {
		assert.Equal(t, "Jdoe", CanonicalUsername("jdoe"))
		assert.Equal(t, "JDoe", CanonicalUsername("jDoe"))
		assert.Equal(t, "Jdoe@example.org", CanonicalUsername("jdoe@example.org"))
	})

	t.Run("is idempotent", func(t *testing.T) {
		for _, u := range []string{"jdoe", "Jdoe", "jDOE", "über", "", "1jdoe", "äbc"} {
			once := CanonicalUsername(u)
			assert.Equal(t, once, CanonicalUsername(once), "input %q", u)
		}
	})

	t.Run("handles unicode first rune", func(t *testing.T) {
		assert.Equal(t, "Über", CanonicalUsername("über"))
	})

	t.Run("empty string stays empty", func(t *testing.T) {
		assert.Equal(t, "", CanonicalUsername(""))
	})
}
