package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissions_GrantThenUpdateKeepsOneRow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d1 := e.create(t, owner, "Report", "report.pdf", 10)

	first, err := e.perms.Grant(ctx, owner, d1.ID, grantee.ID, models.AccessView)
	require.NoError(t, err)
	e.clock.Advance(time.Hour)

	_, err = e.perms.Update(ctx, owner, d1.ID, grantee.ID, models.AccessDownload)
	require.NoError(t, err)

	list, err := e.perms.List(ctx, owner, d1.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, grantee.ID, list[0].UserID)
	assert.Equal(t, models.AccessDownload, list[0].Level)

	// granting again is an update too, and keeps the original grant time
	again, err := e.perms.Grant(ctx, owner, d1.ID, grantee.ID, models.AccessEdit)
	require.NoError(t, err)
	assert.Equal(t, models.AccessEdit, again.Level)
	assert.Equal(t, first.GrantedAt, again.GrantedAt)

	list, err = e.perms.List(ctx, owner, d1.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestPermissions_RevokeRemovesFromShared(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d1 := e.create(t, owner, "Report", "report.pdf", 10)
	_, err := e.perms.Grant(ctx, owner, d1.ID, grantee.ID, models.AccessView)
	require.NoError(t, err)

	shared, err := e.sections.Shared(ctx, grantee)
	require.NoError(t, err)
	assert.Equal(t, []string{d1.ID}, ids(shared))

	require.NoError(t, e.perms.Revoke(ctx, owner, d1.ID, grantee.ID))

	shared, err = e.sections.Shared(ctx, grantee)
	require.NoError(t, err)
	assert.Empty(t, shared)

	// revoking again is a no-op
	require.NoError(t, e.perms.Revoke(ctx, owner, d1.ID, grantee.ID))
}

func TestPermissions_SharedExcludesInactiveDocuments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d1 := e.create(t, owner, "One", "one.pdf", 10)
	d2 := e.create(t, owner, "Two", "two.pdf", 10)
	for _, d := range []*models.Document{d1, d2} {
		_, err := e.perms.Grant(ctx, owner, d.ID, grantee.ID, models.AccessView)
		require.NoError(t, err)
	}

	e.trash(t, owner, d1.ID)

	docs, err := e.perms.ListSharedWith(ctx, grantee)
	require.NoError(t, err)
	assert.Equal(t, []string{d2.ID}, ids(docs))

	// revoke works on trashed documents
	require.NoError(t, e.perms.Revoke(ctx, owner, d1.ID, grantee.ID))
}

func TestPermissions_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d := e.create(t, owner, "Report", "report.pdf", 10)
	trashed := e.create(t, owner, "Old", "old.pdf", 10)
	e.trash(t, owner, trashed.ID)

	tests := []struct {
		name string
		call func() error
		kind error
	}{
		{"self grant", func() error {
			_, err := e.perms.Grant(ctx, owner, d.ID, owner.ID, models.AccessView)
			return err
		}, common.ErrValidation},
		{"bad level", func() error {
			_, err := e.perms.Grant(ctx, owner, d.ID, grantee.ID, "OWNER")
			return err
		}, common.ErrValidation},
		{"missing target", func() error {
			_, err := e.perms.Grant(ctx, owner, d.ID, "", models.AccessView)
			return err
		}, common.ErrValidation},
		{"unknown user", func() error {
			_, err := e.perms.Grant(ctx, owner, d.ID, "ghost", models.AccessView)
			return err
		}, common.ErrNotFound},
		{"unknown document", func() error {
			_, err := e.perms.Grant(ctx, owner, "missing", grantee.ID, models.AccessView)
			return err
		}, common.ErrNotFound},
		{"non-owner grant", func() error {
			_, err := e.perms.Grant(ctx, stranger, d.ID, grantee.ID, models.AccessView)
			return err
		}, common.ErrUnauthorized},
		{"grant on trashed", func() error {
			_, err := e.perms.Grant(ctx, owner, trashed.ID, grantee.ID, models.AccessView)
			return err
		}, common.ErrInvalidState},
		{"update without grant", func() error {
			_, err := e.perms.Update(ctx, owner, d.ID, grantee.ID, models.AccessEdit)
			return err
		}, common.ErrNotFound},
		{"non-owner revoke", func() error {
			return e.perms.Revoke(ctx, grantee, d.ID, grantee.ID)
		}, common.ErrUnauthorized},
		{"non-owner list", func() error {
			_, err := e.perms.List(ctx, grantee, d.ID)
			return err
		}, common.ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireKind(t, tt.call(), tt.kind)
		})
	}
}

func TestPermissions_ListOrderedByGrantTime(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d := e.create(t, owner, "Report", "report.pdf", 10)

	_, err := e.perms.Grant(ctx, owner, d.ID, stranger.ID, models.AccessView)
	require.NoError(t, err)
	e.clock.Advance(time.Second)
	_, err = e.perms.Grant(ctx, admin, d.ID, grantee.ID, models.AccessEdit)
	require.NoError(t, err)

	list, err := e.perms.List(ctx, admin, d.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, stranger.ID, list[0].UserID)
	assert.Equal(t, grantee.ID, list[1].UserID)
}
