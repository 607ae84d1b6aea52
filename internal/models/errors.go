package models

import (
	"encoding/json"
	"strings"
)

// FieldError нарушение правила одного поля модели.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError набор нарушений правил модели в порядке проверки полей.
type ValidationError struct {
	Fields []FieldError
}

// Add добавляет нарушение. Повторное нарушение того же поля игнорируется.
func (e *ValidationError) Add(path, message string) {
	for _, f := range e.Fields {
		if f.Path == path {
			return
		}
	}
	e.Fields = append(e.Fields, FieldError{Path: path, Message: message})
}

// Has сообщает, есть ли нарушение для поля.
func (e *ValidationError) Has(path string) bool {
	for _, f := range e.Fields {
		if f.Path == path {
			return true
		}
	}
	return false
}

// Message возвращает текст нарушения поля или пустую строку.
func (e *ValidationError) Message(path string) string {
	for _, f := range e.Fields {
		if f.Path == path {
			return f.Message
		}
	}
	return ""
}

// OrNil возвращает nil, если нарушений нет.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Path+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}

// MarshalJSON сериализует нарушения в объект {поле: {message, path}}
// с сохранением порядка полей.
func (e *ValidationError) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, f := range e.Fields {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(f.Path)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}
