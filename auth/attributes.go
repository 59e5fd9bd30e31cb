package auth

import "net/http"

// AttributesFromRequest builds the read-only attribute bag the Principal
// Extractor consumes. mod_shib exports SP-asserted attributes as request
// headers; each configured attribute key is looked up, optionally under a
// namespacing header prefix, and only present values are carried.
//
// The bag is keyed by the configured attribute names (not the wire header
// names) so the extractor stays independent of the transport layout.
func AttributesFromRequest(r *http.Request, cfg AttributeConfig) map[string]string {
	keys := []string{
		cfg.Username,
		cfg.CommonName,
		cfg.GivenName,
		cfg.Surname,
		cfg.Email,
		cfg.Groups,
	}

	attrs := make(map[string]string, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if value := r.Header.Get(cfg.HeaderPrefix + key); value != "" {
			attrs[key] = value
		}
	}

	return attrs
}
