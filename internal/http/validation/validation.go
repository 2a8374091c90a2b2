package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type FieldErrors map[string]string

// FromBindError converts a gin bind/validation error into a field→message
// map keyed by the struct's json tags.
func FromBindError(err error, dst any) FieldErrors {
	out := FieldErrors{}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			key := fieldKey(dst, fe.StructField())
			out[key] = messageForTag(fe.Tag(), fe.Param())
		}
		return out
	}

	// Diğer bind hataları (tip mismatch vs)
	out["_"] = "İstek gövdesi geçersiz."
	return out
}

func fieldKey(dst any, structField string) string {
	t := reflect.TypeOf(dst)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return strings.ToLower(structField)
	}

	f, ok := t.FieldByName(structField)
	if !ok {
		return strings.ToLower(structField)
	}
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return strings.ToLower(structField)
	}
	if i := strings.Index(tag, ","); i >= 0 {
		tag = tag[:i]
	}
	return tag
}

func messageForTag(tag, param string) string {
	switch tag {
	case "required":
		return "Bu alan zorunlu."
	case "oneof":
		return "Geçersiz değer. İzin verilenler: " + param
	case "min":
		return "En az " + param + " olmalı."
	case "max":
		return "En fazla " + param + " olabilir."
	case "uuid":
		return "Geçersiz kimlik."
	default:
		return "Geçersiz değer."
	}
}
