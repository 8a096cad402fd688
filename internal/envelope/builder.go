package envelope

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/envelope/internal/apierror"
	"github.com/phrazzld/envelope/internal/config"
	"github.com/phrazzld/envelope/internal/hooks"
	"github.com/phrazzld/envelope/internal/message"
	"github.com/phrazzld/envelope/internal/platform/logger"
)

// Request headers read by the builder.
const (
	HeaderSchemaVersion       = "Response-Schema-Version"
	HeaderDevelopmentMessages = "Development-Messages-Display"
	HeaderExceptionStatus     = "Exception-Status-Display"
)

// SchemaV2 selects the flat v2 envelope. Any other version yields v1.
const SchemaV2 = "2.0.0"

// BuildOptions are per-view build settings.
type BuildOptions struct {
	// DisablePagination drops count/next/previous from v2 collections.
	DisablePagination bool
}

// Builder renders response envelopes. It is safe for concurrent use.
type Builder struct {
	debug            bool
	developmentState bool
	monitor          []hooks.Binding
	log              *slog.Logger
}

// NewBuilder creates a builder. The monitor bindings run on every v1
// envelope.
func NewBuilder(cfg config.ResponseConfig, monitor []hooks.Binding, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{
		debug:            cfg.Debug,
		developmentState: cfg.DevelopmentState,
		monitor:          monitor,
		log:              log,
	}
}

// Build renders data as the envelope requested by r and sanitizes it.
// It fails with apierror.ErrInvalidPageSize or apierror.ErrInvalidPagination
// for malformed cursorless pages; callers classify that error and build
// again with nil data.
func (b *Builder) Build(r *http.Request, st *State, data any, opts BuildOptions) (map[string]any, error) {
	tree, err := normalize(st, data)
	if err != nil {
		return nil, err
	}

	var env map[string]any
	if r.Header.Get(HeaderSchemaVersion) == SchemaV2 {
		env, err = b.buildV2(r, st, tree, opts)
	} else {
		env, err = b.buildV1(r, st, tree)
	}
	if err != nil {
		return nil, err
	}

	out, _ := Sanitize(env).(map[string]any)
	return out, nil
}

func (b *Builder) buildV1(r *http.Request, st *State, tree any) (map[string]any, error) {
	data := b.shapeV1(st, tree)
	st.many = ManyV1(tree)
	monitor := b.runMonitor(r, st)

	env := map[string]any{
		"success":     st.Success(),
		"status_code": st.Status(),
		"has_warning": st.HasWarning(),
		"monitor":     monitor,
		"messenger":   messengerTree(st),
		"many":        st.many,
		"data":        data,
	}
	b.addDevelopmentFields(r, st, env)
	return env, nil
}

func (b *Builder) shapeV1(st *State, tree any) map[string]any {
	switch x := tree.(type) {
	case nil:
		b.setDefaultMessage(st)
		return map[string]any{"result": map[string]any{}}
	case string:
		return map[string]any{"result": stringResult(x)}
	case []any:
		return map[string]any{
			"count":    len(x),
			"next":     nil,
			"previous": nil,
			"results":  x,
		}
	case map[string]any:
		return map[string]any{"result": x}
	default:
		return map[string]any{"result": map[string]any{}}
	}
}

func (b *Builder) buildV2(r *http.Request, st *State, tree any, opts BuildOptions) (map[string]any, error) {
	data, err := b.shapeV2(r, st, tree, !opts.DisablePagination)
	if err != nil {
		return nil, err
	}
	st.many = ManyV2(tree)

	env := map[string]any{
		"success":     st.Success(),
		"status_code": st.Status(),
		"messenger":   messengerTree(st),
	}
	for k, v := range data {
		env[k] = v
	}
	b.addDevelopmentFields(r, st, env)
	return env, nil
}

func (b *Builder) shapeV2(r *http.Request, st *State, tree any, paginate bool) (map[string]any, error) {
	switch x := tree.(type) {
	case nil:
		b.setDefaultMessage(st)
		return map[string]any{"result": map[string]any{}}, nil
	case string:
		return map[string]any{"result": stringResult(x)}, nil
	case []any:
		if !paginate {
			return map[string]any{"result": x}, nil
		}
		return map[string]any{
			"count":    len(x),
			"next":     nil,
			"previous": nil,
			"result":   x,
		}, nil
	case map[string]any:
		switch {
		case hasKeys(x, "count", "next", "previous", "results"):
			if !paginate {
				return map[string]any{"result": x["results"]}, nil
			}
			return map[string]any{
				"count":    x["count"],
				"next":     x["next"],
				"previous": x["previous"],
				"result":   x["results"],
			}, nil
		case hasKeys(x, "count", "page_size", "page_number", "result"):
			next, previous, err := pageURLs(RequestPath(r), x["count"], x["page_size"], x["page_number"])
			if err != nil {
				return nil, err
			}
			if !paginate {
				return map[string]any{"result": x["result"]}, nil
			}
			return map[string]any{
				"count":    x["count"],
				"next":     next,
				"previous": previous,
				"result":   x["result"],
			}, nil
		default:
			return map[string]any{"result": x}, nil
		}
	default:
		return map[string]any{"result": map[string]any{}}, nil
	}
}

func stringResult(s string) map[string]any {
	if s == "" {
		return map[string]any{}
	}
	return map[string]any{"string": s}
}

// ManyV1 reports whether normalized view output is a collection in the v1
// sense: a list, or a page holding count, next, previous and results.
func ManyV1(tree any) bool {
	switch x := tree.(type) {
	case []any:
		return true
	case map[string]any:
		return hasKeys(x, "count", "next", "previous", "results")
	default:
		return false
	}
}

// ManyV2 is the v2 counterpart of ManyV1; pages carry result instead of
// results.
func ManyV2(tree any) bool {
	switch x := tree.(type) {
	case []any:
		return true
	case map[string]any:
		return hasKeys(x, "count", "next", "previous", "result")
	default:
		return false
	}
}

func hasKeys(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return false
		}
	}
	return true
}

// runMonitor merges the values set by the view with the configured monitor
// hooks. Hook results overwrite view values of the same key.
func (b *Builder) runMonitor(r *http.Request, st *State) map[string]any {
	out := make(map[string]any, len(st.Monitor())+len(b.monitor))
	for k, v := range st.Monitor() {
		out[k] = v
	}
	for _, binding := range b.monitor {
		v, err := binding.Fn(r)
		switch {
		case err == nil:
			out[binding.Key] = v
		case errors.Is(err, hooks.ErrSkip):
			st.AddMessage(message.SeverityLog, hooks.PassKey, hooks.PassText(binding.Hook, err))
			out[binding.Key] = nil
		default:
			logger.FromContextOrDefault(r.Context(), b.log).Warn("monitor hook failed",
				"hook", binding.Hook,
				"key", binding.Key,
				"error", err)
			out[binding.Key] = nil
		}
	}
	return out
}

// setDefaultMessage injects the status-band messenger entry and developer
// message. The entry reuses the detail and code of a classified API error.
func (b *Builder) setDefaultMessage(st *State) {
	band := message.ForStatus(st.Status())

	if band.Entry != nil {
		var msg, code any = band.Entry.Message, band.Entry.Code
		if apiErr := apierror.Translate(st.Err()); apiErr != nil {
			msg = apiErr.MessageDetail()
			if apiErr.Code != "" {
				code = apiErr.Code
			}
		}
		st.AddEntry(band.Entry.Type, code, msg)
	}
	st.AddMessage(band.Severity, band.Key, band.Text)
}

func (b *Builder) addDevelopmentFields(r *http.Request, st *State, env map[string]any) {
	if b.display(r, HeaderDevelopmentMessages) {
		env["development_messages"] = b.developmentMessages(st)
	}
	if b.display(r, HeaderExceptionStatus) {
		env["exception_status"] = st.Exception()
	}
}

// display reports whether a development-only field is shown. Outside the
// development state it never is; inside, the header defaults to "True".
func (b *Builder) display(r *http.Request, header string) bool {
	if !b.developmentState {
		return false
	}
	values := r.Header.Values(header)
	if len(values) == 0 {
		return true
	}
	return values[0] == "True"
}

func (b *Builder) developmentMessages(st *State) map[string]any {
	out := map[string]any{
		"info":    messageTree(st.Messages(message.SeverityInfo)),
		"warning": messageTree(st.Messages(message.SeverityWarning)),
		"error":   messageTree(st.Messages(message.SeverityError)),
	}
	if b.debug {
		out["log"] = messageTree(st.Messages(message.SeverityLog))
		out["exception"] = messageTree(st.Messages(message.SeverityException))
	}
	return out
}

func messageTree(msgs []message.Message) []any {
	out := make([]any, len(msgs))
	for i, m := range msgs {
		out[i] = m.Map()
	}
	return out
}

func messengerTree(st *State) []any {
	entries := st.Messenger()
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = e.Map()
	}
	return out
}
