package hateoas

import (
	"fmt"
	"mime"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// HateoasJSON is the media type clients send in Accept to receive links.
const HateoasJSON = "application/vnd.habittracker.hateoas+json"

const (
	RelSelf          = "self"
	RelCreate        = "create"
	RelUpdate        = "update"
	RelPartialUpdate = "partial-update"
	RelDelete        = "delete"
	RelPreviousPage  = "previous-page"
	RelNextPage      = "next-page"
)

// Link is a fully resolved navigation descriptor.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// Values are route values; path parameters are substituted, the rest become
// the query string.
type Values map[string]any

// Clone copies v with overrides applied.
func (v Values) Clone(overrides Values) Values {
	out := make(Values, len(v)+len(overrides))
	for k, val := range v {
		out[k] = val
	}
	for k, val := range overrides {
		out[k] = val
	}
	return out
}

// Strings serializes v, dropping nil and empty values.
func (v Values) Strings() map[string]string {
	out := make(map[string]string, len(v))
	for k, val := range v {
		if s, ok := stringify(val); ok {
			out[k] = s
		}
	}
	return out
}

func stringify(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
		v = rv.Interface()
	}
	var s string
	switch {
	case rv.Kind() == reflect.String:
		s = rv.String()
	default:
		str, err := cast.ToStringE(v)
		if err != nil {
			str = fmt.Sprint(v)
		}
		s = str
	}
	return s, s != ""
}

// WantsLinks reports whether an Accept header asks for the HATEOAS media type.
func WantsLinks(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if strings.EqualFold(mediaType, HateoasJSON) {
			return true
		}
	}
	return false
}
