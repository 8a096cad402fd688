package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/envelope/internal/api/shared"
)

// CookieSpec describes a cookie a view wants to set.
type CookieSpec struct {
	Name     string `validate:"required,printascii,excludesall=; "`
	Value    string `validate:"excludesall=; "`
	MaxAge   int    `validate:"gte=0"`
	Expires  time.Time
	Path     string `validate:"omitempty,startswith=/"`
	Domain   string `validate:"omitempty,hostname"`
	Secure   bool   `validate:"required_if=SameSite none"`
	HTTPOnly bool
	SameSite string `validate:"omitempty,oneof=lax strict none"`
}

// httpCookie converts the spec; an empty path means "/".
func (c CookieSpec) httpCookie() *http.Cookie {
	path := c.Path
	if path == "" {
		path = "/"
	}
	return &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		MaxAge:   c.MaxAge,
		Expires:  c.Expires,
		Path:     path,
		Domain:   c.Domain,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
		SameSite: sameSite(c.SameSite),
	}
}

func sameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "lax":
		return http.SameSiteLaxMode
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}

// SetCookie validates spec and queues the cookie on the response.
func (c *Context) SetCookie(spec CookieSpec) error {
	if err := shared.ValidateRequest(spec); err != nil {
		return fmt.Errorf("invalid cookie %q: %w", spec.Name, err)
	}
	c.st.SetCookie(spec.httpCookie())
	return nil
}

// DeleteCookie queues an expiring cookie named name.
func (c *Context) DeleteCookie(name string) {
	c.st.DeleteCookie(name)
}

// Cookie returns the value of the request cookie name.
func (c *Context) Cookie(name string) (string, bool) {
	ck, err := c.r.Cookie(name)
	if err != nil {
		return "", false
	}
	return ck.Value, true
}
