package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

func TestTemplateStore_CRUD(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	owner := createTestUser(t, store, "owner")
	other := createTestUser(t, store, "other")
	templates := store.TemplateStore()

	fixedClock(store, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.Second)

	welcome, err := templates.Create(ctx, domain.EmailTemplate{
		OwnerID: owner.ID, Name: "Welcome", Subject: "Hi {{client_name}}", Body: "<p>Hello</p>",
	})
	require.NoError(t, err)
	followUp, err := templates.Create(ctx, domain.EmailTemplate{
		OwnerID: owner.ID, Name: "Follow up", Subject: "Checking in", Body: "<p>How are you?</p>",
	})
	require.NoError(t, err)

	list, err := templates.List(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, followUp.ID, list[0].ID)
	assert.Equal(t, welcome.ID, list[1].ID)

	otherList, err := templates.List(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, otherList)

	_, err = templates.Get(ctx, welcome.ID, other.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	subject := "Welcome aboard {{client_name}}"
	updated, err := templates.Update(ctx, welcome.ID, owner.ID, domain.TemplatePatch{Subject: &subject})
	require.NoError(t, err)
	assert.Equal(t, subject, updated.Subject)
	assert.Equal(t, "Welcome", updated.Name)

	_, err = templates.Update(ctx, welcome.ID, other.ID, domain.TemplatePatch{Subject: &subject})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, templates.Delete(ctx, welcome.ID, owner.ID))
	assert.ErrorIs(t, templates.Delete(ctx, welcome.ID, owner.ID), domain.ErrNotFound)
}

func TestTemplateStore_Create_RequiresOwner(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.TemplateStore().Create(context.Background(), domain.EmailTemplate{Name: "n"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
