package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalildz/dalil/pkg/validation"
)

func TestForm_ValidateField(t *testing.T) {
	t.Parallel()

	form := validation.New().NewForm()
	assert.True(t, form.CanSubmit(), "empty form can be submitted")

	res := form.ValidateField(validation.TypeEmail, "user@tempmail.com", "email", "contact")
	assert.True(t, res.Valid)
	assert.True(t, form.CanSubmit(), "warnings do not block")

	form.ValidateField(validation.TypeString, "<script>x</script>", "title", "contact")
	assert.False(t, form.CanSubmit())

	cached, ok := form.Result("title")
	require.True(t, ok)
	assert.Equal(t, []string{validation.MsgScriptInjection}, cached.Errors)

	form.ValidateField(validation.TypeString, "Décret exécutif", "title", "contact")
	assert.True(t, form.CanSubmit(), "re-validation replaces the cached result")
}

func TestForm_ValidateForm(t *testing.T) {
	t.Parallel()

	form := validation.New().NewForm()
	form.ValidateField(validation.TypeString, "stale", "old", "")

	res := form.ValidateForm(
		validation.SchemaOf("email", validation.TypeEmail, "title", validation.TypeString),
		map[string]any{"email": "a@b.com", "title": "DROP"},
		"",
	)
	assert.False(t, res.Valid)

	results := form.Results()
	assert.Len(t, results, 2)
	assert.NotContains(t, results, "old", "whole-form validation replaces the cache")
	assert.False(t, form.CanSubmit())
}

func TestForm_Clear(t *testing.T) {
	t.Parallel()

	t.Run("single field", func(t *testing.T) {
		t.Parallel()
		form := validation.New().NewForm()
		form.ValidateField(validation.TypeString, "DROP", "a", "")
		form.ValidateField(validation.TypeString, "ok", "b", "")

		form.Clear("a")
		assert.True(t, form.CanSubmit())
		_, ok := form.Result("a")
		assert.False(t, ok)
		_, ok = form.Result("b")
		assert.True(t, ok)
	})

	t.Run("everything", func(t *testing.T) {
		t.Parallel()
		form := validation.New().NewForm()
		form.ValidateField(validation.TypeString, "DROP", "a", "")
		form.ValidateField(validation.TypeString, "ok", "b", "")

		form.Clear()
		assert.Empty(t, form.Results())
		assert.True(t, form.CanSubmit())
	})
}

func TestForm_ResultsIsSnapshot(t *testing.T) {
	t.Parallel()

	form := validation.New().NewForm()
	form.ValidateField(validation.TypeString, "ok", "a", "")

	snap := form.Results()
	delete(snap, "a")

	_, ok := form.Result("a")
	assert.True(t, ok)
}
