package confirmation

import (
	"net/url"
	"strings"
)

// Link holds the parameters carried in a confirmation link's fragment.
type Link struct {
	AccessToken string
	Type        string
	// ErrorDescription is set when the backend redirected with an error instead of a token.
	ErrorDescription string
}

// ParseFragment reads the query-string encoded fragment of a confirmation link. It accepts the
// bare fragment ("access_token=..&type=signup"), the fragment with its leading '#', or a whole
// URL. Pairs that fail to decode are skipped; the remaining ones are kept.
func ParseFragment(raw string) Link {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[i+1:]
	} else if strings.Contains(raw, "://") {
		// a URL without a fragment carries no confirmation parameters
		return Link{}
	}
	// ParseQuery keeps every pair it could decode even when it reports an error.
	values, _ := url.ParseQuery(raw)
	return Link{
		AccessToken:      values.Get("access_token"),
		Type:             values.Get("type"),
		ErrorDescription: values.Get("error_description"),
	}
}
