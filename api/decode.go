package api

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/Domenick1991/flightsearch/internal/domain"
)

const msgInvalidJSON = "Request body must be valid JSON"

// decodeFields unmarshals a JSON object into the struct behind dst one
// field at a time, so a badly typed field is reported without hiding the
// rest. Unknown fields are ignored and fields that failed are left unset.
func decodeFields(data []byte, dst any) *domain.ValidationError {
	verr := &domain.ValidationError{}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		verr.Add("", msgInvalidJSON)
		return verr
	}

	v := reflect.ValueOf(dst).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		value, ok := lookupField(raw, name)
		if !ok {
			continue
		}
		field := v.Field(i)
		if err := json.Unmarshal(value, field.Addr().Interface()); err != nil {
			field.Set(reflect.Zero(sf.Type))
			verr.Add(name, fmt.Sprintf("%q must be a %s", name, kindName(sf.Type)))
		}
	}
	return verr
}

// lookupField matches keys the way encoding/json does: exact first, then
// case-insensitively.
func lookupField(raw map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if value, ok := raw[name]; ok {
		return value, true
	}
	for key, value := range raw {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}
	return nil, false
}

func kindName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int32, reflect.Int64:
		return "number"
	default:
		return t.Kind().String()
	}
}
