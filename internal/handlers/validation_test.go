package handlers

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidators(t *testing.T) {
	require.NoError(t, RegisterValidators())
	require.NoError(t, RegisterValidators(), "repeated calls report the first outcome")
}

func TestRegisterValidationsCustomTags(t *testing.T) {
	v := validator.New()
	require.NoError(t, registerValidations(v, customValidations))

	type payload struct {
		Categories []string `json:"categories" validate:"dive,combo_category"`
		Promotions []string `json:"promotions" validate:"dive,promotion"`
	}

	assert.NoError(t, v.Struct(payload{Categories: []string{"meal", "음료"}, Promotions: []string{"1+1", "none"}}))

	err := v.Struct(payload{Categories: []string{"household"}})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "combo_category", verrs[0].Tag())
	assert.Equal(t, "categories[0]", fieldPath(verrs[0]))

	assert.Error(t, v.Struct(payload{Promotions: []string{"buy one"}}))
}

func TestRegisterValidationsRejectsBadTag(t *testing.T) {
	err := registerValidations(validator.New(), map[string]validator.Func{
		"dive": func(validator.FieldLevel) bool { return true },
	})
	assert.ErrorContains(t, err, `register "dive" validation`)
}
