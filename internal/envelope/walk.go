package envelope

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/phrazzld/envelope/internal/message"
)

// treeJSON turns values with their own JSON encoding into plain JSON trees.
// Numbers stay json.Number so that integer precision survives the round
// trip.
var treeJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// normalize walks view output and returns a tree made of nil, scalars,
// []any and map[string]any. String messages found anywhere in the tree are
// appended to st and replaced by nil.
func normalize(st *State, v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case message.StringMessage:
		st.AddMessage(x.Severity(), x.MessageCode(), x.MessageText())
		return nil, nil
	case string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return x, nil
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			n, err := normalize(st, item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			n, err := normalize(st, item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	}
	return normalizeValue(st, reflect.ValueOf(v))
}

func normalizeValue(st *State, rv reflect.Value) (any, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
	}
	if rv.Type().Implements(jsonMarshalerType) || rv.Type().Implements(textMarshalerType) {
		return viaJSON(st, rv.Interface())
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return normalize(st, rv.Elem().Interface())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.IsNil() {
				return nil, nil
			}
			return viaJSON(st, rv.Interface())
		}
		// A nil slice is still a list.
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			n, err := normalize(st, rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case reflect.Map:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Type().Key().Kind() != reflect.String {
			return viaJSON(st, rv.Interface())
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			n, err := normalize(st, iter.Value().Interface())
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = n
		}
		return out, nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Struct:
		if !walkable(rv.Type()) {
			return viaJSON(st, rv.Interface())
		}
		out := make(map[string]any, rv.NumField())
		if err := normalizeFields(st, rv, out); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported output type %s", rv.Type())
	}
}

// normalizeFields adds the exported fields of rv to out under their JSON
// names. Fields of embedded structs are promoted unless a shallower field
// already took the name.
func normalizeFields(st *State, rv reflect.Value, out map[string]any) error {
	t := rv.Type()
	var embedded []reflect.Value

	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		fv := rv.Field(i)

		if f.Anonymous && name == "" && indirectType(f.Type).Kind() == reflect.Struct {
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					continue
				}
				fv = fv.Elem()
			}
			embedded = append(embedded, fv)
			continue
		}
		if !f.IsExported() {
			continue
		}
		if name == "" {
			name = f.Name
		}
		if hasOption(opts, "omitempty") && isEmptyValue(fv) {
			continue
		}

		n, err := normalize(st, fv.Interface())
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		out[name] = n
	}

	for _, fv := range embedded {
		n, err := normalizeValue(st, fv)
		if err != nil {
			return err
		}
		promoted, _ := n.(map[string]any)
		for k, v := range promoted {
			if _, taken := out[k]; !taken {
				out[k] = v
			}
		}
	}
	return nil
}

// walkable reports whether normalizeFields can reproduce the JSON encoding
// of t. Quoted ",string" fields and unexported embedded structs are left to
// the encoder.
func walkable(t reflect.Type) bool {
	for i := range t.NumField() {
		f := t.Field(i)
		_, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if hasOption(opts, "string") {
			return false
		}
		if f.Anonymous && !f.IsExported() && indirectType(f.Type).Kind() == reflect.Struct {
			return false
		}
	}
	return true
}

func indirectType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == want {
			return true
		}
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	}
	return false
}

// viaJSON converts v to a plain tree by encoding and decoding it.
func viaJSON(st *State, v any) (any, error) {
	raw, err := treeJSON.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	var tree any
	if err := treeJSON.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("failed to decode %T: %w", v, err)
	}
	return normalize(st, tree)
}
