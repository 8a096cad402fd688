package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/envelope/internal/api/shared"
	"github.com/phrazzld/envelope/internal/apierror"
	"github.com/phrazzld/envelope/internal/config"
	"github.com/phrazzld/envelope/internal/envelope"
	"github.com/phrazzld/envelope/internal/hooks"
	"github.com/phrazzld/envelope/internal/message"
	"github.com/phrazzld/envelope/internal/metrics"
	"github.com/phrazzld/envelope/internal/platform/logger"
	"github.com/phrazzld/envelope/internal/redact"
)

// ViewFunc produces the data of a response. Returned errors are classified
// into the envelope.
type ViewFunc func(c *Context) (any, error)

// Dispatcher turns ViewFuncs into http.Handlers that answer with a response
// envelope.
type Dispatcher struct {
	cfg        config.ResponseConfig
	hooks      *hooks.Resolved
	builder    *envelope.Builder
	classifier *envelope.Classifier
	rec        metrics.Recorder
	logger     *slog.Logger
	mediaURL   string
	uncaught   UncaughtHandler
}

// NewDispatcher creates a dispatcher. A nil hook table, recorder or logger
// falls back to no hooks, no metrics and slog.Default respectively.
func NewDispatcher(
	cfg config.ResponseConfig,
	hk *hooks.Resolved,
	rec metrics.Recorder,
	log *slog.Logger,
	opts ...DispatcherOption,
) *Dispatcher {
	if hk == nil {
		hk = &hooks.Resolved{}
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if log == nil {
		log = slog.Default()
	}

	d := &Dispatcher{
		cfg:        cfg,
		hooks:      hk,
		builder:    envelope.NewBuilder(cfg, hk.Monitor, log),
		classifier: envelope.NewClassifier(cfg),
		rec:        rec,
		logger:     log,
		uncaught:   DefaultUncaughtHandler,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// View wraps fn in a handler.
func (d *Dispatcher) View(fn ViewFunc, opts ...ViewOption) http.Handler {
	var o viewOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.uncaught == nil {
		o.uncaught = d.uncaught
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.serve(w, r, fn, o)
	})
}

func (d *Dispatcher) serve(w http.ResponseWriter, r *http.Request, fn ViewFunc, o viewOptions) {
	if o.mock.On && o.mock.Handler != nil && r.Header.Get(HeaderMockServerStatus) != "" {
		o.mock.Handler.ServeHTTP(w, r)
		return
	}

	start := time.Now()
	st := envelope.NewState(d.cfg.MonitorKeys)
	challenge := ""
	if o.auth != nil {
		challenge = o.auth.Challenge()
	}

	r, data, err := d.run(r, st, fn, o)
	if err != nil {
		if err := d.classify(r, st, err, challenge); err != nil {
			o.uncaught(w, r, err)
			return
		}
		data = nil
	}

	buildOpts := envelope.BuildOptions{DisablePagination: o.noPagination}
	env, err := d.builder.Build(r, st, data, buildOpts)
	if err != nil {
		if err := d.classify(r, st, err, challenge); err != nil {
			o.uncaught(w, r, err)
			return
		}
		if env, err = d.builder.Build(r, st, nil, buildOpts); err != nil {
			o.uncaught(w, r, err)
			return
		}
	}

	d.write(w, r, st, env)

	schema := schemaLabel(r)
	d.rec.IncEnvelope(schema, st.Status(), st.Success(), st.Many())
	d.rec.ObserveViewDuration(schema, time.Since(start))
}

// run executes the pre-request hooks, authentication, the owner check and
// the view. It returns the request as seen by the view.
func (d *Dispatcher) run(
	r *http.Request,
	st *envelope.State,
	fn ViewFunc,
	o viewOptions,
) (*http.Request, any, error) {
	log := logger.FromContextOrDefault(r.Context(), d.logger)

	for _, b := range d.hooks.PreRequest {
		v, err := b.Fn(r)
		switch {
		case err == nil:
			if v != nil {
				r = r.WithContext(context.WithValue(r.Context(), hookValueKey(b.Key), v))
			}
		case errors.Is(err, hooks.ErrSkip):
			log.Debug("pre-request hook skipped", "hook", b.Hook, "key", b.Key)
			st.AddMessage(message.SeverityLog, hooks.PassKey, hooks.PassText(b.Hook, err))
		default:
			return r, nil, fmt.Errorf("pre-request hook %q failed: %w", b.Hook, err)
		}
	}

	if o.auth != nil {
		subject, err := o.auth.Authenticate(r)
		if err != nil {
			return r, nil, err
		}
		r = r.WithContext(shared.WithUserID(r.Context(), subject))
	}

	if o.ownerParam != "" {
		subject, ok := shared.GetUserID(r.Context())
		if !ok || chi.URLParam(r, o.ownerParam) != subject {
			log.Debug("owner check failed", "param", o.ownerParam)
			return r, nil, apierror.PermissionDenied("")
		}
	}

	c := &Context{r: r, st: st, mediaURL: d.mediaURL}
	data, err := fn(c)
	return c.r, data, err
}

// classify records err on st and reports it to metrics and logs. A non-nil
// result is an unrecognized error left for the uncaught handler.
func (d *Dispatcher) classify(r *http.Request, st *envelope.State, err error, challenge string) error {
	log := logger.FromContextOrDefault(r.Context(), d.logger)
	category := envelope.Category(err)
	d.rec.IncClassifiedError(category)

	if category == envelope.CategoryUnexpected {
		log.Error("view returned an unexpected error",
			"error", redact.Error(err),
			"path", r.URL.Path,
			"trace_id", shared.GetTraceID(r.Context()))
	} else {
		log.Debug("view error classified",
			"category", category,
			"error", redact.Error(err))
	}

	return d.classifier.Classify(st, err, challenge)
}

// write flushes headers and cookies from st and encodes env. Deletions are
// written before new cookies so a view can replace a cookie it deletes.
func (d *Dispatcher) write(w http.ResponseWriter, r *http.Request, st *envelope.State, env map[string]any) {
	h := w.Header()
	for k, vs := range st.Header() {
		for _, v := range vs {
			h.Add(k, v)
		}
	}
	for _, name := range st.DeletedCookies() {
		http.SetCookie(w, &http.Cookie{Name: name, Path: "/", MaxAge: -1})
	}
	for _, c := range st.Cookies() {
		http.SetCookie(w, c)
	}

	shared.RespondWithContentType(w, r, st.Status(), st.ContentType(), env)
}

func schemaLabel(r *http.Request) string {
	if r.Header.Get(envelope.HeaderSchemaVersion) == envelope.SchemaV2 {
		return "v2"
	}
	return "v1"
}
