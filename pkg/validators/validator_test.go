package validators

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
)

func TestCommentTextMustNotBeBlank(t *testing.T) {
	v := NewValidator()

	assert.Error(t, v.Validate(models.CreateCommentRequest{Text: "   "}))
	assert.NoError(t, v.Validate(models.CreateCommentRequest{Text: "nice catch"}))
}

func TestUsernameTag(t *testing.T) {
	v := NewValidator()
	name := func(s string) models.UpdateProfileRequest { return models.UpdateProfileRequest{Username: &s} }

	assert.NoError(t, v.Validate(name("reel_king")))
	assert.Error(t, v.Validate(name("ab")))
	assert.Error(t, v.Validate(name("has space")))
	assert.NoError(t, v.Validate(models.UpdateProfileRequest{}))
}

func TestMustRegisterPanicsOnBadTag(t *testing.T) {
	assert.NotPanics(t, func() { New() })
	assert.Panics(t, func() {
		mustRegister(New(), "", func(validator.FieldLevel) bool { return true })
	})
}
