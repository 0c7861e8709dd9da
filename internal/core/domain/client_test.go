package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestIsEmail(t *testing.T) {
	valid := []string{"a@b.com", "first.last+tag@example.co.uk"}
	invalid := []string{"", "plain", "a@b", "Ann <a@b.com>", "a @b.com"}

	for _, s := range valid {
		assert.True(t, IsEmail(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsEmail(s), s)
	}
}

func TestClientInput_Validate(t *testing.T) {
	assert.NoError(t, ClientInput{Name: "Ann", Email: "a@b.com"}.Validate())

	err := ClientInput{Name: " ", Email: "nope"}.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name is required", verr.Fields["name"])
	assert.Equal(t, "invalid email address", verr.Fields["email"])
}

func TestClientPatch(t *testing.T) {
	t.Run("validates only present fields", func(t *testing.T) {
		assert.NoError(t, ClientPatch{}.Validate())
		assert.NoError(t, ClientPatch{Phone: strPtr("555")}.Validate())
		assert.Error(t, ClientPatch{Email: strPtr("bad")}.Validate())
		assert.Error(t, ClientPatch{Name: strPtr("")}.Validate())
	})

	t.Run("applies present fields", func(t *testing.T) {
		c := &Client{Name: "Ann", Email: "a@b.com", Notes: strPtr("vip")}
		ClientPatch{Email: strPtr("ann@b.com"), Phone: strPtr("555")}.Apply(c)

		assert.Equal(t, "Ann", c.Name)
		assert.Equal(t, "ann@b.com", c.Email)
		assert.Equal(t, "555", *c.Phone)
		assert.Equal(t, "vip", *c.Notes)
	})
}

func TestClient_Recipient(t *testing.T) {
	c := &Client{ID: "id-1", OwnerID: "o", Name: "Ann", Email: "a@b.com"}
	assert.Equal(t, Recipient{ID: "id-1", Name: "Ann", Email: "a@b.com"}, c.Recipient())
}

func TestTemplateInput_Validate(t *testing.T) {
	assert.NoError(t, TemplateInput{Name: "n", Subject: "s", Body: "b"}.Validate())

	err := TemplateInput{}.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)
}

func TestTemplatePatch_Apply(t *testing.T) {
	tmpl := &EmailTemplate{Name: "n", Subject: "s", Body: "b"}
	TemplatePatch{Subject: strPtr("s2")}.Apply(tmpl)

	assert.Equal(t, "n", tmpl.Name)
	assert.Equal(t, "s2", tmpl.Subject)
	assert.Error(t, TemplatePatch{Body: strPtr(" ")}.Validate())
}
