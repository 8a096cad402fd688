package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/envelope/internal/api/shared"
	"github.com/phrazzld/envelope/internal/apierror"
	"github.com/phrazzld/envelope/internal/envelope"
	"github.com/phrazzld/envelope/internal/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(target string) *Context {
	return &Context{
		r:        httptest.NewRequest(http.MethodGet, target, nil),
		st:       envelope.NewState(nil),
		mediaURL: "/media/",
	}
}

func TestContextURLs(t *testing.T) {
	c := newContext("http://api.test/items")

	assert.Equal(t, "http://api.test", c.Host())
	assert.Equal(t, "http://api.test/items/1", c.AbsoluteURL("/items/1"))
	assert.Equal(t, "/media/avatars/a.png", c.MediaURL("avatars/a.png"))
	assert.Equal(t, "http://api.test/media/avatars/a.png", c.LocalMediaURL("avatars/a.png"))
	assert.Empty(t, c.MediaURL(""))
	assert.Empty(t, c.LocalMediaURL(""))

	c.r.Header.Set("X-Forwarded-Proto", "https")
	assert.Equal(t, "https://api.test", c.Host())
}

func TestContextQueryFields(t *testing.T) {
	tests := []struct {
		target string
		want   []string
	}{
		{"/items", nil},
		{"/items?fields=id,name", []string{"id", "name"}},
		{"/items?fields=id", []string{"id"}},
		{"/items?fields=", []string{""}},
	}

	for _, tc := range tests {
		t.Run(tc.target, func(t *testing.T) {
			assert.Equal(t, tc.want, newContext(tc.target).QueryFields())
		})
	}
}

func TestContextPageParams(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		wantSize int
		wantPage int
		wantErr  *apierror.APIError
	}{
		{name: "defaults", target: "/items", wantSize: 10, wantPage: 1},
		{name: "explicit", target: "/items?page_size=5&page=3", wantSize: 5, wantPage: 3},
		{name: "leading zero is decimal", target: "/items?page=010", wantSize: 10, wantPage: 10},
		{name: "leading zero with eight", target: "/items?page=08&page_size=09", wantSize: 9, wantPage: 8},
		{name: "surrounding spaces", target: "/items?page=%202%20", wantSize: 10, wantPage: 2},
		{name: "zero size", target: "/items?page_size=0", wantErr: apierror.ErrInvalidPageSize},
		{name: "negative size", target: "/items?page_size=-4", wantErr: apierror.ErrInvalidPageSize},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			size, page, err := newContext(tc.target).PageParams(10)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantSize, size)
			assert.Equal(t, tc.wantPage, page)
		})
	}
}

func TestContextPageParamsRejectsNonIntegers(t *testing.T) {
	tests := []struct {
		target string
		field  string
	}{
		{"/items?page=last", "page"},
		{"/items?page=0x10", "page"},
		{"/items?page=1.5", "page"},
		{"/items?page_size=0b11", "page_size"},
		{"/items?page_size=1_000", "page_size"},
	}

	for _, tc := range tests {
		t.Run(tc.target, func(t *testing.T) {
			_, _, err := newContext(tc.target).PageParams(10)

			apiErr := apierror.Translate(err)
			require.NotNil(t, apiErr)
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Contains(t, apiErr.Detail, tc.field)
		})
	}
}

func TestContextMessages(t *testing.T) {
	c := newContext("/")

	c.Log("l", "log text")
	c.Info("i", "info text")
	c.Warn("w", "warning text")
	c.Error("e", "error text")
	c.Exception("x", "exception text")
	c.AddWarning("Heads up.", "heads_up")
	c.AddSuccess("Saved.", 201)

	assert.Equal(t, "log text", c.st.Messages(message.SeverityLog)[0].Text)
	assert.Equal(t, "i", c.st.Messages(message.SeverityInfo)[0].Code)
	assert.Len(t, c.st.Messages(message.SeverityWarning), 1)
	assert.Len(t, c.st.Messages(message.SeverityError), 1)
	assert.Len(t, c.st.Messages(message.SeverityException), 1)
	assert.Equal(t, []message.Entry{
		{Type: message.EntryWarning, Code: "heads_up", Message: "Heads up."},
		{Type: message.EntrySuccess, Code: 201, Message: "Saved."},
	}, c.st.Messenger())
	assert.True(t, c.st.HasWarning())

	c.AddFail("Nope.", "nope")
	assert.True(t, c.st.Success(), "2xx stays successful")

	c.SetStatus(http.StatusConflict)
	assert.False(t, c.st.Success())
}

func TestContextUserID(t *testing.T) {
	c := newContext("/")
	_, ok := c.UserID()
	assert.False(t, ok)

	c.r = c.r.WithContext(shared.WithUserID(c.r.Context(), "user-7"))
	id, ok := c.UserID()
	assert.True(t, ok)
	assert.Equal(t, "user-7", id)
}
