package envelope

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/phrazzld/envelope/internal/apierror"
	"github.com/phrazzld/envelope/internal/config"
	"github.com/phrazzld/envelope/internal/message"
	"github.com/phrazzld/envelope/internal/redact"
)

// Error categories reported by Category.
const (
	CategoryResponseMessage = "response_message"
	CategoryAPIError        = "api_error"
	CategoryUnexpected      = "unexpected"
)

const unexpectedKey = "unexpectedError"

// Classifier maps errors returned by views onto the response state.
// It is safe for concurrent use.
type Classifier struct {
	verbose        bool
	supportContact string
}

// NewClassifier creates a classifier. With cfg.ExceptionHandling off,
// unrecognized errors are handed back to the caller.
func NewClassifier(cfg config.ResponseConfig) *Classifier {
	return &Classifier{
		verbose:        cfg.ExceptionHandling,
		supportContact: cfg.SupportContact,
	}
}

// Category names the branch Classify takes for err.
func Category(err error) string {
	var rm *apierror.ResponseMessage
	if errors.As(err, &rm) {
		return CategoryResponseMessage
	}
	if apierror.Translate(err) != nil {
		return CategoryAPIError
	}
	return CategoryUnexpected
}

// Classify records err on st. It returns nil when the error was handled, or
// err itself when it is unrecognized and verbose handling is off.
// challenge is the WWW-Authenticate value of the view's authenticator; an
// empty challenge turns authentication errors into 403s.
func (c *Classifier) Classify(st *State, err error, challenge string) error {
	st.SetErr(err)

	var rm *apierror.ResponseMessage
	if errors.As(err, &rm) {
		c.responseMessage(st, rm)
		return nil
	}

	if apiErr := apierror.Translate(err); apiErr != nil {
		c.apiError(st, apiErr, challenge)
		return nil
	}

	if !c.verbose {
		return err
	}
	c.unexpected(st, err)
	return nil
}

func (c *Classifier) responseMessage(st *State, rm *apierror.ResponseMessage) {
	st.SetStatus(rm.StatusCode)
	st.SetException(true)

	switch rm.Audience {
	case apierror.Developer:
		switch rm.Kind {
		case apierror.KindError:
			st.AddMessage(message.SeverityError, rm.Code, rm.Message)
		case apierror.KindException:
			st.AddMessage(message.SeverityException, rm.Code, rm.Message)
		case apierror.KindWarning:
			st.AddMessage(message.SeverityWarning, rm.Code, rm.Message)
		}
	case apierror.Enduser:
		switch rm.Kind {
		case apierror.KindError:
			st.AddEntry(message.EntryError, rm.Code, rm.Message)
		case apierror.KindFail:
			st.AddEntry(message.EntryFail, rm.Code, rm.Message)
		case apierror.KindWarning:
			st.AddEntry(message.EntryWarning, rm.Code, rm.Message)
		}
	}
}

func (c *Classifier) apiError(st *State, apiErr *apierror.APIError, challenge string) {
	if apiErr.IsAuthentication() {
		if challenge != "" {
			st.Header().Set("WWW-Authenticate", challenge)
		} else {
			apiErr = apiErr.WithStatus(http.StatusForbidden)
		}
	}
	if apiErr.Wait > 0 {
		st.Header().Set("Retry-After", strconv.Itoa(apiErr.Wait))
	}

	flattenDetail(st, apiErr.Detail, "", apiErr.Code)
	st.ResolveStatus(apiErr.StatusCode)
	st.SetException(true)
}

// flattenDetail appends every leaf of an error detail to the error list.
// Leaves are keyed by their own code, else the error's code, else "e", and
// prefixed with the enclosing field name as "<field>__<code>".
func flattenDetail(st *State, detail any, baseKey, errCode string) {
	switch d := detail.(type) {
	case nil:
		return
	case []any:
		for _, item := range d {
			flattenDetail(st, item, baseKey, errCode)
		}
	case []string:
		for _, item := range d {
			flattenDetail(st, item, baseKey, errCode)
		}
	case map[string]any:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenDetail(st, d[k], k, errCode)
		}
	default:
		key := errCode
		if coded, ok := d.(message.Coded); ok {
			key = ""
			if c := coded.MessageCode(); c != nil {
				key = fmt.Sprint(c)
			}
		}
		if key == "" {
			key = "e"
		}
		if baseKey != "" {
			key = baseKey + "__" + key
		}
		st.AddMessage(message.SeverityError, key, leafText(d))
	}
}

func leafText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case message.MessageCarrier:
		return x.MessageText()
	default:
		return fmt.Sprint(x)
	}
}

func (c *Classifier) unexpected(st *State, err error) {
	st.AddMessage(message.SeverityException, unexpectedKey, redact.Error(err))
	st.AddMessage(message.SeverityError, unexpectedKey, message.UnexpectedError)
	st.AddMessage(message.SeverityWarning, unexpectedKey, "Please discuss this matter with software support.")
	if c.supportContact != "" {
		st.AddMessage(message.SeverityInfo, unexpectedKey, fmt.Sprintf(
			"Please share this problem with our technical experts at the Email address '%s'.",
			c.supportContact))
	}
	st.SetStatus(http.StatusMisdirectedRequest)
	st.SetException(true)
}
