package app_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopher-classifieds/internal/app"
)

func TestChoiceValue_DecodesNumbersAndStrings(t *testing.T) {
	cases := []struct {
		body string
		want app.ChoiceValue
	}{
		{`{"type": 0}`, "0"},
		{`{"type": 1}`, "1"},
		{`{"type": "1"}`, "1"},
		{`{"type": "want"}`, "want"},
		{`{"type": null}`, ""},
		{`{"type": 2.5}`, "2.5"},
		{`{"type": {"v": 1}}`, `{"v": 1}`},
	}
	for _, tc := range cases {
		var input app.SubmitInput
		require.NoError(t, json.Unmarshal([]byte(tc.body), &input), tc.body)
		assert.Equal(t, tc.want, input.Type, tc.body)
	}
}

func TestBindErrors(t *testing.T) {
	var input app.SubmitInput
	err := json.Unmarshal([]byte(`{"title": 5, "type": 0}`), &input)
	require.Error(t, err)
	assert.Equal(t, app.ValidationErrors{"title": "enter a valid value"}, app.BindErrors(err))

	verrs := app.BindErrors(errors.New("unexpected EOF"))
	assert.Contains(t, verrs, "__all__")
}
