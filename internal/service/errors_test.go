package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{}
	assert.Equal(t, "The given data was invalid.", ve.Error())

	ve.Add("name", "The name field is required.")
	assert.Equal(t, "The name field is required.", ve.Error())

	ve.Add("price", "The price field is required.")
	assert.Equal(t, "The name field is required. (and 1 more error)", ve.Error())

	ve.Add("price", "The price field must be at least 0.")
	assert.Equal(t, "The name field is required. (and 2 more errors)", ve.Error())
	assert.Len(t, ve.Fields["price"], 2)
}

func TestValidateStruct_EqField(t *testing.T) {
	err := validateStruct(RegisterInput{
		Name:                 "Jane",
		Email:                "jane@example.com",
		Password:             "password123",
		PasswordConfirmation: "other",
	})
	ve, ok := err.(*ValidationError)
	if assert.True(t, ok) {
		assert.Equal(t, []string{"The password field confirmation does not match."}, ve.Fields["password"])
	}
}
