package service

import (
	"context"
	"errors"
	"testing"

	"github.com/gm2211/hudson-dashboard/board"
	"github.com/stretchr/testify/require"
)

func TestCollectionService_CreateIgnoresIDAndMark(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	it, err := env.entities.Advisories().Create(ctx, board.AdvisoryItem{ID: 77, Label: "Heat", Message: "Boiler service", Active: true, MarkedForDeletion: true})
	require.NoError(t, err)
	require.Equal(t, uint64(1), it.ID)
	require.False(t, it.MarkedForDeletion)

	got, err := env.entities.Advisories().Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, it, got)
}

func TestCollectionService_Validation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.entities.Status().Create(ctx, board.StatusItem{Name: "Lift", Status: "Broken"})
	require.True(t, errors.Is(err, ErrValidation), "got %v", err)

	_, err = env.entities.Status().Create(ctx, board.StatusItem{Name: "  ", Status: board.StatusOperational})
	require.True(t, errors.Is(err, ErrValidation), "got %v", err)

	_, err = env.entities.Announcements().Create(ctx, board.AnnouncementItem{})
	require.True(t, errors.Is(err, ErrValidation), "got %v", err)

	_, err = env.entities.Advisories().Create(ctx, board.AdvisoryItem{Message: "no label"})
	require.True(t, errors.Is(err, ErrValidation), "got %v", err)
}

func TestCollectionService_UpdateWritesZeroValues(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	card, err := env.entities.Announcements().Create(ctx, board.AnnouncementItem{
		Title:        "Package room",
		Subtitle:     "New hours",
		Details:      []string{"Mon-Fri", "9-5"},
		ImageRef:     "/img/pkg.png",
		AccentColor:  "#0af",
		DisplayOrder: 3,
	})
	require.NoError(t, err)

	updated, err := env.entities.Announcements().Update(ctx, card.ID, board.AnnouncementItem{Title: "Package room"})
	require.NoError(t, err)
	require.Equal(t, card.ID, updated.ID)
	require.Equal(t, "", updated.Subtitle)
	require.Equal(t, []string{}, updated.Details)
	require.Equal(t, "", updated.ImageRef)
	require.Equal(t, 0, updated.DisplayOrder)

	adv, err := env.entities.Advisories().Create(ctx, board.AdvisoryItem{Label: "Water", Message: "Off", Active: true})
	require.NoError(t, err)
	adv.Active = false
	adv, err = env.entities.Advisories().Update(ctx, adv.ID, adv)
	require.NoError(t, err)
	require.False(t, adv.Active)
}

func TestCollectionService_UpdateDoesNotTouchMark(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	seeded := seedStatus(t, env, "Mailroom")

	require.NoError(t, env.entities.Status().MarkDeleted(ctx, seeded[0].ID))
	edit := seeded[0]
	edit.Notes = "moved"
	edit.MarkedForDeletion = false
	got, err := env.entities.Status().Update(ctx, edit.ID, edit)
	require.NoError(t, err)
	require.True(t, got.MarkedForDeletion)
	require.Equal(t, "moved", got.Notes)

	require.NoError(t, env.entities.Status().UnmarkDeleted(ctx, edit.ID))
	got, err = env.entities.Status().Get(ctx, edit.ID)
	require.NoError(t, err)
	require.False(t, got.MarkedForDeletion)
}

func TestCollectionService_NotFound(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.entities.Status().Get(ctx, 5)
	require.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	_, err = env.entities.Status().Update(ctx, 5, board.StatusItem{Name: "x", Status: board.StatusOutage})
	require.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	require.True(t, errors.Is(env.entities.Announcements().MarkDeleted(ctx, 5), ErrNotFound))
	require.True(t, errors.Is(env.entities.Advisories().UnmarkDeleted(ctx, 5), ErrNotFound))
}

func TestCollectionService_ListOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for _, in := range []board.StatusItem{
		{Name: "c", Status: board.StatusOperational, DisplayOrder: 2},
		{Name: "a", Status: board.StatusOperational, DisplayOrder: 1},
		{Name: "b", Status: board.StatusOperational, DisplayOrder: 1},
	} {
		_, err := env.entities.Status().Create(ctx, in)
		require.NoError(t, err)
	}

	rows, err := env.entities.Status().List(ctx)
	require.NoError(t, err)
	// display_order 相同按 id
	require.Equal(t, []uint64{2, 3, 1}, statusIDs(rows))
}

func TestEntityService_Config(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	cfg, err := env.entities.GetConfig(ctx)
	require.NoError(t, err)
	require.Nil(t, cfg)

	_, err = env.entities.SaveConfig(ctx, board.Config{StatusPageSeconds: -1})
	require.True(t, errors.Is(err, ErrValidation), "got %v", err)

	in := board.Config{BuildingNumber: "77", BuildingName: "Hudson", AnnouncementScrollSeconds: 30, AdvisoryTickerSeconds: 25, StatusPageSeconds: 8}
	saved, err := env.entities.SaveConfig(ctx, in)
	require.NoError(t, err)
	require.Equal(t, &in, saved)

	in.Subtitle = "Welcome home"
	in.StatusPageSeconds = 0
	_, err = env.entities.SaveConfig(ctx, in)
	require.NoError(t, err)

	var n int64
	require.NoError(t, env.db.Table("dash_config").Count(&n).Error)
	require.Equal(t, int64(1), n)

	st, err := NewProjectorService(env.entities.Service).Project(ctx)
	require.NoError(t, err)
	require.Equal(t, &in, st.Config)
	require.Equal(t, 0, st.StatusSection.Speed)
	require.Equal(t, 30, st.AnnouncementSection.Speed)
}

func TestProject_NoConfigUsesDefaultSpeeds(t *testing.T) {
	env := newTestEnv(t)

	st, err := NewProjectorService(env.entities.Service).Project(context.Background())
	require.NoError(t, err)
	require.Equal(t, board.EmptyState(), st)
}
