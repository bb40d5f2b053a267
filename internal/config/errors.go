package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalid matches any ValidationError via errors.Is.
var ErrInvalid = errors.New("invalid configuration")

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every malformed field instead of stopping at the first.
type ValidationError struct {
	Items []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Items) == 0 {
		return "invalid configuration"
	}

	var b strings.Builder
	b.WriteString("invalid configuration:\n")
	for _, item := range e.Items {
		b.WriteString(" - ")
		b.WriteString(item.Error())
		b.WriteString("\n")
	}
	return b.String()
}

func (e *ValidationError) Add(field, msg string) {
	e.Items = append(e.Items, FieldError{Field: field, Message: msg})
}

func (e ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

func (e ValidationError) HasAny() bool {
	return len(e.Items) > 0
}

func (e *ValidationError) sort() {
	sort.SliceStable(e.Items, func(i, j int) bool { return e.Items[i].Field < e.Items[j].Field })
}
