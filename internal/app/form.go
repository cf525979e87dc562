package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ChoiceValue is a select field. Forms post it as text while JSON clients
// may send the option value as a number, so both decode to the same text.
// Other JSON values are kept as their raw text and fail choice validation.
type ChoiceValue string

func (v *ChoiceValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = ChoiceValue(s)
	default:
		*v = ChoiceValue(data)
	}
	return nil
}

// BindErrors turns a request decoding failure into field errors so the
// client sees which field could not be read.
func BindErrors(err error) ValidationErrors {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := typeErr.Field
		if i := strings.LastIndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		return ValidationErrors{field: "enter a valid value"}
	}
	return ValidationErrors{"__all__": "invalid request payload"}
}
