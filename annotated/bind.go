package annotated

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"time"

	"github.com/gorilla/schema"
)

// decoders hold one schema decoder per source, each keyed by that
// source's struct tag.
var decoders = map[source]*schema.Decoder{
	sourcePath:   newDecoder("path"),
	sourceQuery:  newDecoder("query"),
	sourceHeader: newDecoder("header"),
	sourceParam:  newDecoder("param"),
}

func newDecoder(tag string) *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag(tag)
	d.IgnoreUnknownKeys(true)
	d.RegisterConverter(time.Duration(0), func(s string) reflect.Value {
		v, err := time.ParseDuration(s)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(v)
	})
	d.RegisterConverter(time.Time{}, func(s string) reflect.Value {
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return reflect.Value{}
		}
		return reflect.ValueOf(v)
	})
	return d
}

// BindError reports a request that could not be bound to the handler's
// request type. It is answered with 400 Bad Request, or 413 when the body
// exceeded a size limit.
type BindError struct {
	Err error
}

func (e *BindError) Error() string { return "annotated: bad request: " + e.Err.Error() }

func (e *BindError) Unwrap() error { return e.Err }

// StatusCode implements StatusCoder.
func (e *BindError) StatusCode() int {
	var tooLarge *http.MaxBytesError
	if errors.As(e.Err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// request is the raw input of one call.
type request struct {
	r          *http.Request
	pathParams map[string]string
}

func (in *request) lookup(src source, name string) []string {
	switch src {
	case sourcePath:
		if v, ok := in.pathParams[name]; ok {
			return []string{v}
		}
	case sourceQuery:
		return in.r.URL.Query()[name]
	case sourceHeader:
		return in.r.Header.Values(name)
	case sourceParam:
		if v, ok := in.pathParams[name]; ok {
			return []string{v}
		}
		return in.r.URL.Query()[name]
	}
	return nil
}

// bind fills dst, an addressable struct, from the request.
func bind(dst reflect.Value, params []param, in *request) error {
	values := make(map[source]map[string][]string)
	for _, p := range params {
		switch p.src {
		case sourceBody:
			if err := bindBody(dst.Field(p.index), in.r); err != nil {
				return err
			}
			continue
		case sourceBean:
			fv := dst.Field(p.index)
			if fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					fv.Set(reflect.New(fv.Type().Elem()))
				}
				fv = fv.Elem()
			}
			if err := bind(fv, p.children, in); err != nil {
				return err
			}
			continue
		}

		vals := in.lookup(p.src, p.name)
		if len(vals) == 0 {
			switch {
			case p.hasDef:
				vals = []string{p.def}
			case p.optional():
				continue
			default:
				return &BindError{Err: fmt.Errorf("missing required parameter %q", p.name)}
			}
		}
		if values[p.src] == nil {
			values[p.src] = make(map[string][]string)
		}
		values[p.src][p.name] = vals
	}

	for _, src := range []source{sourcePath, sourceParam, sourceQuery, sourceHeader} {
		if len(values[src]) == 0 {
			continue
		}
		if err := decoders[src].Decode(dst.Addr().Interface(), values[src]); err != nil {
			return &BindError{Err: err}
		}
	}
	return nil
}

func bindBody(fv reflect.Value, r *http.Request) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return &BindError{Err: fmt.Errorf("read body: %w", err)}
	}
	if len(data) == 0 {
		return nil
	}

	target := fv.Addr().Interface()
	switch p := target.(type) {
	case *[]byte:
		*p = data
		return nil
	case *string:
		*p = string(data)
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return &BindError{Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}
