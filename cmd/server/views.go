package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/envelope/internal/api"
	"github.com/phrazzld/envelope/internal/api/shared"
	"github.com/phrazzld/envelope/internal/apierror"
	"github.com/phrazzld/envelope/internal/message"
)

const (
	defaultPageSize = 20
	sessionCookie   = "session"
	tokenTTL        = time.Hour
)

// errDemoFailure is returned by the failure view to show how unexpected
// errors are reported.
var errDemoFailure = errors.New("demo failure: downstream service unavailable")

// itemView renders it for the response, restricted to fields when given.
func itemView(c *api.Context, it item, fields []string) map[string]any {
	out := map[string]any{
		"id":         it.ID,
		"name":       it.Name,
		"image":      c.LocalMediaURL(it.Image),
		"created_at": it.CreatedAt.Format(time.RFC3339),
	}
	if len(fields) == 0 {
		return out
	}

	projected := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := out[f]; ok {
			projected[f] = v
		}
	}
	return projected
}

func (app *application) listItems(c *api.Context) (any, error) {
	fields := c.QueryFields()
	items := app.items.list()

	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, itemView(c, it, fields))
	}

	q := c.Request().URL.Query()
	if !q.Has("page") && !q.Has("page_size") {
		return out, nil
	}
	size, page, err := c.PageParams(defaultPageSize)
	if err != nil {
		return nil, err
	}
	return api.Paginate(out, size, page)
}

func (app *application) getItem(c *api.Context) (any, error) {
	it, ok := app.items.get(chi.URLParam(c.Request(), "id"))
	if !ok {
		return nil, apierror.NotFound("")
	}
	return itemView(c, it, c.QueryFields()), nil
}

func (app *application) createItem(c *api.Context) (any, error) {
	var req createItemRequest
	if err := shared.BindJSON(c.Request(), &req); err != nil {
		return nil, err
	}

	it := app.items.create(req.Name, req.Image)
	c.SetStatus(http.StatusCreated)
	c.SetHeader("Location", c.AbsoluteURL("/api/items/"+strconv.Itoa(it.ID)))
	c.AddSuccess("The item was created.", "item_created")
	return itemView(c, it, nil), nil
}

func (app *application) notices(c *api.Context) (any, error) {
	c.AddWarning("Some notices are only visible to developers.", "partial_notices")
	return map[string]any{
		"motd":        "Welcome back.",
		"maintenance": message.WarningString("maintenance", "Maintenance window tonight at 02:00 UTC."),
	}, nil
}

func (app *application) greeting(c *api.Context) (any, error) {
	name := c.Request().URL.Query().Get("name")
	if name == "" {
		return nil, apierror.EnduserFail("name_required", "Tell us your name first.")
	}
	return "Hello, " + name + ".", nil
}

func (app *application) failure(*api.Context) (any, error) {
	return nil, errDemoFailure
}

func (app *application) status(c *api.Context) (any, error) {
	return map[string]any{
		"status": "ok",
		"host":   c.Host(),
		"client": c.Value("client_ip"),
	}, nil
}

type sessionRequest struct {
	Value string `json:"value" validate:"required,alphanum,max=64"`
}

func (app *application) openSession(c *api.Context) (any, error) {
	var req sessionRequest
	if err := shared.BindJSON(c.Request(), &req); err != nil {
		return nil, err
	}
	if err := c.SetCookie(api.CookieSpec{
		Name:     sessionCookie,
		Value:    req.Value,
		MaxAge:   int(tokenTTL.Seconds()),
		HTTPOnly: true,
		SameSite: "lax",
	}); err != nil {
		return nil, err
	}
	c.SetStatus(http.StatusCreated)
	return nil, nil
}

func (app *application) closeSession(c *api.Context) (any, error) {
	if _, ok := c.Cookie(sessionCookie); !ok {
		return nil, apierror.NotFound("No session is open.")
	}
	c.DeleteCookie(sessionCookie)
	return nil, nil
}

func (app *application) profile(c *api.Context) (any, error) {
	id, _ := c.UserID()
	return map[string]any{"user_id": id}, nil
}

type tokenRequest struct {
	Subject string `json:"subject" validate:"required,max=64"`
}

func (app *application) issueToken(c *api.Context) (any, error) {
	var req tokenRequest
	if err := shared.BindJSON(c.Request(), &req); err != nil {
		return nil, err
	}
	token, err := app.auth.IssueToken(req.Subject, tokenTTL)
	if err != nil {
		return nil, err
	}
	c.SetStatus(http.StatusCreated)
	return map[string]any{
		"token":      token,
		"expires_in": int(tokenTTL.Seconds()),
	}, nil
}
