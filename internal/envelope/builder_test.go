package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/envelope/internal/apierror"
	"github.com/phrazzld/envelope/internal/config"
	"github.com/phrazzld/envelope/internal/hooks"
	"github.com/phrazzld/envelope/internal/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func devBuilder(monitor ...hooks.Binding) *Builder {
	cfg := config.ResponseConfig{Debug: true, DevelopmentState: true}
	return NewBuilder(cfg, monitor, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

func request(headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "http://api.test/items?page=1", nil)
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

var v2 = map[string]string{HeaderSchemaVersion: SchemaV2}

func TestBuildNilDataInjectsDefaults(t *testing.T) {
	tests := []struct {
		status   int
		key      string
		severity message.Severity
		entry    *message.Entry
	}{
		{102, "status_code_1xx", message.SeverityWarning, &message.Entry{Type: message.EntryFail, Code: 100, Message: "please wait..."}},
		{200, "status_code_2xx", message.SeverityInfo, &message.Entry{Type: message.EntrySuccess, Code: 200, Message: "Your request has been successfully registered."}},
		{201, "status_code_2xx", message.SeverityInfo, &message.Entry{Type: message.EntrySuccess, Code: 201, Message: "The desired object was created correctly."}},
		{302, "status_code_3xx", message.SeverityError, &message.Entry{Type: message.EntryFail, Code: 300, Message: "The requirements for your request are not available."}},
		{404, "status_code_4xx", message.SeverityError, &message.Entry{Type: message.EntryFail, Code: 404, Message: "There is no information about your request."}},
		{418, "status_code_4xx", message.SeverityError, &message.Entry{Type: message.EntryFail, Code: 400, Message: "Bad Request..."}},
		{421, "status_code_4xx", message.SeverityError, &message.Entry{Type: message.EntryFail, Code: 421, Message: message.UnexpectedError}},
		{503, "status_code_5xx", message.SeverityError, &message.Entry{Type: message.EntryFail, Code: 500, Message: "The server is unable to respond to your request."}},
		{700, "status_code_xxx", message.SeverityError, nil},
	}

	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			st := NewState(nil)
			st.SetStatus(tc.status)

			env, err := devBuilder().Build(request(nil), st, nil, BuildOptions{})
			require.NoError(t, err)

			assert.Equal(t, map[string]any{"result": nil}, env["data"])
			assert.Equal(t, tc.status, env["status_code"])

			msgs := st.Messages(tc.severity)
			require.Len(t, msgs, 1)
			assert.Equal(t, tc.key, msgs[0].Code)

			if tc.entry == nil {
				assert.Empty(t, st.Messenger())
				return
			}
			require.Len(t, st.Messenger(), 1)
			assert.Equal(t, *tc.entry, st.Messenger()[0])
		})
	}
}

func TestBuildDefaultEntryUsesAPIErrorDetail(t *testing.T) {
	st := NewState(nil)
	st.SetStatus(http.StatusNotFound)
	st.SetErr(apierror.NotFound("No such card."))

	_, err := devBuilder().Build(request(nil), st, nil, BuildOptions{})
	require.NoError(t, err)

	require.Len(t, st.Messenger(), 1)
	assert.Equal(t, message.Entry{
		Type:    message.EntryFail,
		Code:    apierror.CodeNotFound,
		Message: "No such card.",
	}, st.Messenger()[0])
}

func TestBuildV1Envelope(t *testing.T) {
	st := NewState(nil)

	env, err := devBuilder().Build(request(nil), st, []int{1, 2, 3}, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"success":     true,
		"status_code": 200,
		"has_warning": false,
		"monitor":     nil,
		"messenger":   []any{},
		"many":        true,
		"data": map[string]any{
			"count":    3,
			"next":     nil,
			"previous": nil,
			"results":  []any{1, 2, 3},
		},
		"development_messages": map[string]any{
			"info":      []any{},
			"warning":   []any{},
			"error":     []any{},
			"log":       []any{},
			"exception": []any{},
		},
		"exception_status": false,
	}, env)
	assert.True(t, st.Many())
}

func TestBuildV2Envelope(t *testing.T) {
	t.Run("paginated list", func(t *testing.T) {
		env, err := devBuilder().Build(request(v2), NewState(nil), []int{1, 2, 3}, BuildOptions{})
		require.NoError(t, err)

		assert.Equal(t, 3, env["count"])
		assert.Equal(t, []any{1, 2, 3}, env["result"])
		assert.Contains(t, env, "next")
		assert.NotContains(t, env, "results")
		assert.NotContains(t, env, "data")
		assert.NotContains(t, env, "monitor")
		assert.NotContains(t, env, "many")
	})

	t.Run("pagination off", func(t *testing.T) {
		env, err := devBuilder().Build(request(v2), NewState(nil), []int{1, 2, 3},
			BuildOptions{DisablePagination: true})
		require.NoError(t, err)

		assert.Equal(t, []any{1, 2, 3}, env["result"])
		assert.NotContains(t, env, "count")
	})

	t.Run("already paginated map", func(t *testing.T) {
		data := map[string]any{"count": 1, "next": "n", "previous": nil, "results": []any{"a"}}
		st := NewState(nil)
		env, err := devBuilder().Build(request(v2), st, data, BuildOptions{})
		require.NoError(t, err)

		assert.Equal(t, "n", env["next"])
		assert.Equal(t, []any{"a"}, env["result"])
		assert.False(t, st.Many(), "v2 collections are recognized by result, not results")
	})

	t.Run("cursorless page", func(t *testing.T) {
		data := map[string]any{"count": 25, "page_size": 10, "page_number": 1, "result": []any{"a"}}
		env, err := devBuilder().Build(request(v2), NewState(nil), data, BuildOptions{})
		require.NoError(t, err)

		assert.Equal(t, 25, env["count"])
		assert.Equal(t, "http://api.test/items?page=2", env["next"])
		assert.Nil(t, env["previous"])
		assert.NotContains(t, env, "page_size")
	})

	t.Run("zero page size", func(t *testing.T) {
		data := map[string]any{"count": 25, "page_size": 0, "page_number": 1, "result": []any{}}
		_, err := devBuilder().Build(request(v2), NewState(nil), data, BuildOptions{})
		assert.ErrorIs(t, err, apierror.ErrInvalidPageSize)
	})

	t.Run("plain map", func(t *testing.T) {
		env, err := devBuilder().Build(request(v2), NewState(nil), map[string]any{"id": 1}, BuildOptions{})
		require.NoError(t, err)

		assert.Equal(t, map[string]any{"id": 1}, env["result"])
		assert.Equal(t, true, env["success"])
	})
}

func TestBuildShapes(t *testing.T) {
	type card struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	tests := []struct {
		name string
		data any
		want any
	}{
		{"string", "hello", map[string]any{"result": map[string]any{"string": "hello"}}},
		{"empty string", "", map[string]any{"result": nil}},
		{"map", map[string]string{"a": "b"}, map[string]any{"result": map[string]any{"a": "b"}}},
		{"struct", card{Name: "x", Count: 3}, map[string]any{"result": map[string]any{
			"name": "x", "count": json.Number("3"),
		}}},
		{"pointer to struct", &card{Name: "y"}, map[string]any{"result": map[string]any{
			"name": "y", "count": json.Number("0"),
		}}},
		{"number", 42, map[string]any{"result": nil}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env, err := devBuilder().Build(request(nil), NewState(nil), tc.data, BuildOptions{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, env["data"])
		})
	}
}

func TestBuildExtractsStringMessages(t *testing.T) {
	data := map[string]any{
		"a": message.InfoString("i1", "hello"),
		"b": []any{message.WarningString("w1", "careful"), 1},
		"c": apierror.Detail{Text: "bad", Code: "invalid"},
	}
	st := NewState(nil)

	env, err := devBuilder().Build(request(nil), st, data, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"result": map[string]any{
		"a": nil,
		"b": []any{nil, 1},
		"c": nil,
	}}, env["data"])

	dev := env["development_messages"].(map[string]any)
	assert.Equal(t, []any{map[string]any{"i1": "hello"}}, dev["info"])
	assert.Equal(t, []any{map[string]any{"w1": "careful"}}, dev["warning"])
	assert.Equal(t, []any{map[string]any{"invalid": "bad"}}, dev["error"])
}

func TestBuildTopLevelStringMessageInjectsDefaults(t *testing.T) {
	st := NewState(nil)

	env, err := devBuilder().Build(request(nil), st, message.ErrorString("e1", "oops"), BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"result": nil}, env["data"])
	assert.Len(t, st.Messages(message.SeverityError), 1)
	assert.Len(t, st.Messenger(), 1, "nil data gets the default messenger entry")
}

func TestBuildDevelopmentGating(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.ResponseConfig
		headers   map[string]string
		wantDev   bool
		wantExc   bool
		wantDebug bool
	}{
		{"production hides everything", config.ResponseConfig{Debug: true}, nil, false, false, false},
		{"development shows by default", config.ResponseConfig{DevelopmentState: true}, nil, true, true, false},
		{"debug adds log and exception", config.ResponseConfig{DevelopmentState: true, Debug: true}, nil, true, true, true},
		{
			name:    "headers switch fields off",
			cfg:     config.ResponseConfig{DevelopmentState: true},
			headers: map[string]string{HeaderDevelopmentMessages: "False", HeaderExceptionStatus: "false"},
		},
		{
			name:    "only exact True enables",
			cfg:     config.ResponseConfig{DevelopmentState: true},
			headers: map[string]string{HeaderDevelopmentMessages: "True", HeaderExceptionStatus: "true"},
			wantDev: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuilder(tc.cfg, nil, nil)
			env, err := b.Build(request(tc.headers), NewState(nil), map[string]any{"a": 1}, BuildOptions{})
			require.NoError(t, err)

			dev, hasDev := env["development_messages"].(map[string]any)
			assert.Equal(t, tc.wantDev, hasDev)
			_, hasExc := env["exception_status"]
			assert.Equal(t, tc.wantExc, hasExc)
			if hasDev {
				_, hasLog := dev["log"]
				assert.Equal(t, tc.wantDebug, hasLog)
			}
		})
	}
}

func TestBuildMonitor(t *testing.T) {
	bindings := []hooks.Binding{
		{Key: "broken", Hook: "broken", Fn: func(*http.Request) (any, error) { return nil, errors.New("boom") }},
		{Key: "region", Hook: "region", Fn: func(*http.Request) (any, error) { return "eu", nil }},
		{Key: "user", Hook: "user", Fn: func(*http.Request) (any, error) { return nil, hooks.Skip("anonymous") }},
	}
	st := NewState([]string{"view_key", "region"})
	st.SetMonitor("view_key", 1)
	st.SetMonitor("region", "overwritten")

	env, err := devBuilder(bindings...).Build(request(nil), st, map[string]any{"a": 1}, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"view_key": 1,
		"region":   "eu",
		"user":     nil,
		"broken":   nil,
	}, env["monitor"])

	logs := st.Messages(message.SeverityLog)
	require.Len(t, logs, 1)
	assert.Equal(t, "pass", logs[0].Code)
	assert.Contains(t, logs[0].Text, "anonymous")
}

func TestBuildHasWarning(t *testing.T) {
	st := NewState(nil)
	st.AddMessage(message.SeverityWarning, "w", "careful")
	st.AddEntry(message.EntryWarning, "w", "careful")

	env, err := devBuilder().Build(request(nil), st, map[string]any{"a": 1}, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, true, env["has_warning"])
	assert.Equal(t, []any{map[string]any{"type": "WARNING", "code": "w", "message": "careful"}}, env["messenger"])
}

func TestBuildUnsupportedType(t *testing.T) {
	_, err := devBuilder().Build(request(nil), NewState(nil), make(chan int), BuildOptions{})
	assert.Error(t, err)
}

func TestManyPredicates(t *testing.T) {
	v1Page := map[string]any{"count": 1, "next": nil, "previous": nil, "results": []any{}}
	v2Page := map[string]any{"count": 1, "next": nil, "previous": nil, "result": []any{}}

	tests := []struct {
		name   string
		tree   any
		wantV1 bool
		wantV2 bool
	}{
		{"list", []any{1}, true, true},
		{"v1 page", v1Page, true, false},
		{"v2 page", v2Page, false, true},
		{"plain map", map[string]any{"count": 1}, false, false},
		{"scalar", "x", false, false},
		{"nil", nil, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantV1, ManyV1(tc.tree))
			assert.Equal(t, tc.wantV2, ManyV2(tc.tree))
		})
	}
}
