package mapper

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrMalformedBody signals a request body that is not valid JSON.
var ErrMalformedBody = errors.New("malformed JSON body")

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Normalize trims surrounding whitespace from every text field of the payload.
func (p *CreatePet) Normalize() {
	trim(p.Name)
	trim(p.Sex)
	if p.Group != nil {
		trim(p.Group.ScientificName)
	}
	for i := range p.Traits {
		trim(p.Traits[i].Name)
	}
}

// Normalize trims surrounding whitespace from every text field of the payload.
func (p *PatchPet) Normalize() {
	trim(p.Name)
	trim(p.Sex)
	if p.Group != nil {
		trim(p.Group.ScientificName)
	}
	for i := range p.Traits {
		trim(p.Traits[i].Name)
	}
}

func trim(value *string) {
	if value != nil {
		*value = strings.TrimSpace(*value)
	}
}

// Validate checks a payload against its validate tags and returns the rejected fields keyed by
// JSON path (for example "traits[0].name"). A nil map means the payload is valid.
func Validate(payload any) map[string]string {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"non_field_errors": err.Error()}
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := fieldPath(fe.Namespace())
		if _, exists := fields[path]; exists {
			continue
		}
		fields[path] = validationMessage(fe)
	}
	return fields
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "notblank":
		return "This field may not be blank."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}

// DecodeError classifies a JSON decoding failure. Type mismatches become field errors keyed
// like validation errors, with list indexes recovered from body; anything else is reported
// as ErrMalformedBody.
func DecodeError(err error, body []byte) (map[string]string, error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "non_field_errors"
		} else {
			field = indexedPath(body, field, typeErr.Value)
		}
		return map[string]string{field: typeMessage(typeErr)}, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
}

// indexedPath turns a dotted decoder path such as "traits.name" into "traits[1].name" by
// locating the first list element whose value has the offending JSON kind.
func indexedPath(body []byte, dotted, kind string) string {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return dotted
	}
	if path, ok := locate(doc, strings.Split(dotted, "."), kind); ok {
		return strings.TrimPrefix(path, ".")
	}
	return dotted
}

func locate(node any, segments []string, kind string) (string, bool) {
	if len(segments) == 0 {
		return "", strings.HasPrefix(kind, jsonKind(node))
	}
	object, ok := node.(map[string]any)
	if !ok {
		return "", false
	}
	key := segments[0]
	child, ok := object[key]
	if !ok {
		return "", false
	}
	if list, isList := child.([]any); isList && len(segments) > 1 {
		for i, item := range list {
			if rest, found := locate(item, segments[1:], kind); found {
				return fmt.Sprintf(".%s[%d]%s", key, i, rest), true
			}
		}
		return "", false
	}
	rest, found := locate(child, segments[1:], kind)
	if !found {
		return "", false
	}
	return "." + key + rest, true
}

func jsonKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	default:
		return "object"
	}
}

func typeMessage(err *json.UnmarshalTypeError) string {
	kind := err.Type.Kind()
	if kind == reflect.Pointer {
		kind = err.Type.Elem().Kind()
	}
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "A valid integer is required."
	case reflect.Float32, reflect.Float64:
		return "A valid number is required."
	case reflect.String:
		return "Not a valid string."
	case reflect.Slice, reflect.Array:
		return fmt.Sprintf("Expected a list of items but got type %q.", err.Value)
	case reflect.Struct, reflect.Map:
		return fmt.Sprintf("Invalid data. Expected a dictionary, but got %s.", err.Value)
	default:
		return "Invalid value."
	}
}
