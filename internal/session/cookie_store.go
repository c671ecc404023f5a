package session

import (
	"net/http"
	"time"
)

// CookieOptions are the attributes applied to every cookie the store writes.
type CookieOptions struct {
	Domain   string
	Secure   bool
	HTTPOnly bool
}

// CookieStore is a request-scoped Store. Reads come from the incoming cookie set; writes become
// Set-Cookie headers and are also visible to later reads within the same request.
// Expiry is left to the browser.
type CookieStore struct {
	w       http.ResponseWriter
	opts    CookieOptions
	values  map[string]string
	deleted map[string]bool
}

// NewCookieStore snapshots the cookies of r. w may be nil for read-only use.
func NewCookieStore(w http.ResponseWriter, r *http.Request, opts CookieOptions) *CookieStore {
	cs := &CookieStore{
		w:       w,
		opts:    opts,
		values:  make(map[string]string),
		deleted: make(map[string]bool),
	}
	for _, c := range r.Cookies() {
		if c.Value != "" {
			cs.values[c.Name] = c.Value
		}
	}
	return cs
}

func (cs *CookieStore) Get(key string) (string, bool) {
	if cs.deleted[key] {
		return "", false
	}
	v, ok := cs.values[key]
	return v, ok
}

func (cs *CookieStore) Put(key, value string, expires time.Time) {
	delete(cs.deleted, key)
	cs.values[key] = value
	maxAge := int(time.Until(expires).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	cs.write(&http.Cookie{Name: key, Value: value, Expires: expires.UTC(), MaxAge: maxAge})
}

func (cs *CookieStore) Delete(key string) {
	delete(cs.values, key)
	cs.deleted[key] = true
	cs.write(&http.Cookie{Name: key, Value: "", Expires: time.Unix(0, 0).UTC(), MaxAge: -1})
}

func (cs *CookieStore) write(c *http.Cookie) {
	if cs.w == nil {
		return
	}
	c.Path = "/"
	c.Domain = cs.opts.Domain
	c.Secure = cs.opts.Secure
	c.HttpOnly = cs.opts.HTTPOnly
	c.SameSite = http.SameSiteLaxMode
	http.SetCookie(cs.w, c)
}
