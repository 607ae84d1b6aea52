// Package validate разбирает JSON тело запроса в структуру с полями-указателями
// и проверяет его правилами go-playground/validator.
//
// Отсутствующее поле даёт ошибку "Required", поле неверного типа даёт
// "Expected X, received Y", для остальных нарушений сообщение берётся из
// Messages() структуры по ключу "поле.тег". На каждое поле приходится не больше
// одной ошибки, порядок ошибок совпадает с порядком полей.
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/apperr"
)

// Коды ошибок.
const (
	CodeInvalidType       = "invalid_type"
	CodeUnrecognizedKeys  = "unrecognized_keys"
	CodeTooSmall          = "too_small"
	CodeTooBig            = "too_big"
	CodeInvalidString     = "invalid_string"
	CodeInvalidEnumValue  = "invalid_enum_value"
	CodeInvalidDate       = "invalid_date"
	CodeCustom            = "custom"
	malformedBodyMessage  = "Malformed JSON in request body"
	requiredMessage       = "Required"
	defaultInvalidMessage = "Invalid input"
)

// Issue одно нарушение схемы запроса.
type Issue struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Path     []string `json:"path"`
	Keys     []string `json:"keys,omitempty"`
	Expected string   `json:"expected,omitempty"`
	Received string   `json:"received,omitempty"`
}

// Details тело поля error в ответе 400.
type Details struct {
	Issues []Issue `json:"issues"`
}

// Messager реализуют схемы запросов, которым нужны свои тексты ошибок.
type Messager interface {
	Messages() map[string]string
}

var (
	validate = validator.New()
	timeType = reflect.TypeOf(time.Time{})
)

type field struct {
	name     string
	index    int
	rules    string
	optional bool
}

// Decode читает JSON объект из r в dst (указатель на структуру).
//
// Некорректный JSON возвращается как *apperr.HTTPError со статусом 400,
// нарушения схемы как *apperr.Error ValidationFailed с Details.
// При strict неизвестные ключи дают одну ошибку unrecognized_keys в конце списка.
func Decode(r io.Reader, dst any, strict bool) error {
	const op = "validate.Decode"

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%s: dst must be a pointer to struct, got %T", op, dst)
	}
	target := rv.Elem()

	body, err := io.ReadAll(r)
	if err != nil {
		return apperr.BadRequest(malformedBodyMessage, err)
	}

	keys, values, received, err := readObject(body)
	if err != nil {
		return apperr.BadRequest(malformedBodyMessage, err)
	}
	if received != "" {
		return apperr.ValidationFailed(Details{Issues: []Issue{{
			Code:     CodeInvalidType,
			Message:  "Expected object, received " + received,
			Path:     []string{},
			Expected: "object",
			Received: received,
		}}})
	}

	var messages map[string]string
	if m, ok := dst.(Messager); ok {
		messages = m.Messages()
	}

	fields := fieldsOf(target.Type())
	known := make(map[string]struct{}, len(fields))
	var issues []Issue
	for _, f := range fields {
		known[f.name] = struct{}{}
		if issue := decodeField(target.Field(f.index), f, values, messages); issue != nil {
			issues = append(issues, *issue)
		}
	}

	if strict {
		var unknown []string
		for _, k := range keys {
			if _, ok := known[k]; !ok {
				unknown = append(unknown, k)
			}
		}
		if len(unknown) > 0 {
			issues = append(issues, Issue{
				Code:    CodeUnrecognizedKeys,
				Keys:    unknown,
				Path:    []string{},
				Message: "Unrecognized key(s) in object: '" + strings.Join(unknown, "', '") + "'",
			})
		}
	}

	if len(issues) > 0 {
		return apperr.ValidationFailed(Details{Issues: issues})
	}
	return nil
}

// readObject разбирает верхний уровень тела, сохраняя порядок ключей.
// Для тела, которое не является объектом, возвращает его JSON тип в received.
// Пустое тело трактуется как пустой объект.
func readObject(body []byte) (keys []string, values map[string]json.RawMessage, received string, err error) {
	values = make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, values, "", nil
	}
	if !json.Valid(body) {
		return nil, nil, "", errors.New("invalid JSON")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, "", err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, kindOf(bytes.TrimSpace(body)), nil
	}

	for dec.More() {
		tok, err = dec.Token()
		if err != nil {
			return nil, nil, "", err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err = dec.Decode(&raw); err != nil {
			return nil, nil, "", err
		}
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = raw
	}
	return keys, values, "", nil
}

func fieldsOf(t reflect.Type) []field {
	fields := make([]field, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue
		}
		name := strings.SplitN(sf.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		rules := sf.Tag.Get("validate")
		optional := false
		if rules == "omitempty" || strings.HasPrefix(rules, "omitempty,") {
			optional = true
			rules = strings.TrimPrefix(strings.TrimPrefix(rules, "omitempty"), ",")
		}
		fields = append(fields, field{name: name, index: i, rules: rules, optional: optional})
	}
	return fields
}

func decodeField(fv reflect.Value, f field, values map[string]json.RawMessage, messages map[string]string) *Issue {
	raw, present := values[f.name]
	isNull := present && bytes.Equal(bytes.TrimSpace(raw), []byte("null"))

	expected := expectedKind(fv.Type())
	if !present || (isNull && f.optional) {
		if f.optional {
			return nil
		}
		return &Issue{
			Code:     CodeInvalidType,
			Message:  message(messages, f.name, "required", requiredMessage),
			Path:     []string{f.name},
			Expected: expected,
			Received: "undefined",
		}
	}

	ptr := reflect.New(fv.Type())
	if isNull || json.Unmarshal(raw, ptr.Interface()) != nil {
		got := kindOf(bytes.TrimSpace(raw))
		if expected == "date" && got == "string" {
			return &Issue{
				Code:    CodeInvalidDate,
				Message: message(messages, f.name, "date", "Invalid date"),
				Path:    []string{f.name},
			}
		}
		return &Issue{
			Code:     CodeInvalidType,
			Message:  fmt.Sprintf("Expected %s, received %s", expected, got),
			Path:     []string{f.name},
			Expected: expected,
			Received: got,
		}
	}
	fv.Set(ptr.Elem())

	if f.rules == "" {
		return nil
	}
	value := fv
	for value.Kind() == reflect.Ptr {
		if value.IsNil() {
			return nil
		}
		value = value.Elem()
	}
	err := validate.Var(value.Interface(), f.rules)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &Issue{Code: CodeCustom, Message: defaultInvalidMessage, Path: []string{f.name}}
	}
	tag := verrs[0].Tag()
	return &Issue{
		Code:    codeFor(tag),
		Message: message(messages, f.name, tag, defaultInvalidMessage),
		Path:    []string{f.name},
	}
}

func message(messages map[string]string, name, tag, fallback string) string {
	if msg, ok := messages[name+"."+tag]; ok {
		return msg
	}
	return fallback
}

func codeFor(tag string) string {
	switch tag {
	case "min", "gt", "gte":
		return CodeTooSmall
	case "max", "lt", "lte":
		return CodeTooBig
	case "email", "url", "uuid", "uuid4":
		return CodeInvalidString
	case "oneof":
		return CodeInvalidEnumValue
	default:
		return CodeCustom
	}
}

func expectedKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == timeType {
		return "date"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

func kindOf(raw []byte) string {
	if len(raw) == 0 {
		return "undefined"
	}
	switch raw[0] {
	case '"':
		return "string"
	case '{':
		return "object"
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
