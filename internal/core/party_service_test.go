package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uniform-store/internal/core"
)

func TestParty_Schools(t *testing.T) {
	env := newTestEnv(t)

	s, err := env.parties.CreateSchool(env.ctx, core.SchoolInput{Name: " São Tadeu ", Address: "Praça da Liberdade, 789"})
	require.NoError(t, err)
	assert.Equal(t, "São Tadeu", s.Name)
	assert.True(t, s.IsActive)

	_, err = env.parties.CreateSchool(env.ctx, core.SchoolInput{Name: "São Tadeu"})
	assert.ErrorIs(t, err, core.ErrDuplicateSchool)

	_, err = env.parties.CreateSchool(env.ctx, core.SchoolInput{Name: ""})
	var ve *core.ValidationError
	assert.ErrorAs(t, err, &ve)

	other := env.school(t, "Municipal")
	require.NoError(t, env.parties.DeactivateSchool(env.ctx, other.ID))

	active, err := env.parties.ListSchools(env.ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, s.ID, active[0].ID)

	all, err := env.parties.ListSchools(env.ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = env.parties.GetSchool(env.ctx, 9999)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestParty_Clients(t *testing.T) {
	env := newTestEnv(t)
	birth := time.Date(2015, 3, 14, 0, 0, 0, 0, time.UTC)

	c, err := env.parties.CreateClient(env.ctx, core.ClientInput{
		Name: "Carla Lima", Phone: "(11) 91234-5678", Email: "carla@example.com", BirthDate: &birth,
	})
	require.NoError(t, err)
	assert.False(t, c.RegisteredAt.IsZero())

	got, err := env.parties.GetClient(env.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "carla@example.com", got.Email)
	require.NotNil(t, got.BirthDate)
	assert.Equal(t, "2015-03-14", got.BirthDate.Format("2006-01-02"))

	updated, err := env.parties.UpdateClient(env.ctx, c.ID, core.ClientInput{Name: "Carla M. Lima", Phone: "(11) 90000-0000"})
	require.NoError(t, err)
	assert.Equal(t, "Carla M. Lima", updated.Name)

	_, err = env.parties.CreateClient(env.ctx, core.ClientInput{Name: "  "})
	var ve *core.ValidationError
	assert.ErrorAs(t, err, &ve)

	clients, err := env.parties.ListClients(env.ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 1)
}

func TestParty_DeleteClient(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.client(t, "Ana")
	browser := env.client(t, "Bruno")
	shirt := env.product(t, "Camiseta", "29.90", 5)
	_, err := env.place(buyer.ID, item(shirt.ID, 1))
	require.NoError(t, err)

	assert.ErrorIs(t, env.parties.DeleteClient(env.ctx, buyer.ID), core.ErrHasOrders)
	require.NoError(t, env.parties.DeleteClient(env.ctx, browser.ID))
	assert.ErrorIs(t, env.parties.DeleteClient(env.ctx, browser.ID), core.ErrNotFound)
}
