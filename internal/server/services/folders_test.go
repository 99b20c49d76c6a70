package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolders_CreateAndList(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	work := e.folder(t, owner, "Work", "")
	reports := e.folder(t, owner, "Reports", work.ID)
	archive := e.folder(t, owner, "Archive", "")
	e.folder(t, grantee, "Elsewhere", "")

	assert.Nil(t, work.ParentID)
	require.NotNil(t, reports.ParentID)
	assert.Equal(t, work.ID, *reports.ParentID)

	all, err := e.folders.List(ctx, owner, "")
	require.NoError(t, err)
	names := make([]string, 0, len(all))
	for _, f := range all {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Archive", "Reports", "Work"}, names)

	children, err := e.folders.List(ctx, owner, work.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, reports.ID, children[0].ID)

	_, err = e.folders.List(ctx, grantee, archive.ID)
	requireKind(t, err, common.ErrUnauthorized)

	got, err := e.folders.Get(ctx, admin, reports.ID)
	require.NoError(t, err)
	assert.Equal(t, "Reports", got.Name)
}

func TestFolders_CreateValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	theirs := e.folder(t, grantee, "Theirs", "")

	tests := []struct {
		name  string
		actor models.Actor
		in    FolderInput
		kind  error
	}{
		{"no actor", models.Actor{}, FolderInput{Name: "x"}, common.ErrUnauthorized},
		{"empty name", owner, FolderInput{}, common.ErrValidation},
		{"missing parent", owner, FolderInput{Name: "x", ParentID: "nope"}, common.ErrNotFound},
		{"foreign parent", owner, FolderInput{Name: "x", ParentID: theirs.ID}, common.ErrUnauthorized},
		{"admin into foreign parent", admin, FolderInput{Name: "x", ParentID: theirs.ID}, common.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.folders.Create(ctx, tt.actor, tt.in)
			requireKind(t, err, tt.kind)
		})
	}
}

func TestFolders_UpdateRejectsCycles(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.folder(t, owner, "A", "")
	b := e.folder(t, owner, "B", a.ID)
	c := e.folder(t, owner, "C", b.ID)

	_, err := e.folders.Update(ctx, owner, a.ID, FolderInput{Name: "A", ParentID: a.ID})
	requireKind(t, err, common.ErrValidation)
	_, err = e.folders.Update(ctx, owner, a.ID, FolderInput{Name: "A", ParentID: c.ID})
	requireKind(t, err, common.ErrValidation)

	moved, err := e.folders.Update(ctx, owner, c.ID, FolderInput{Name: "Top", ParentID: ""})
	require.NoError(t, err)
	assert.Equal(t, "Top", moved.Name)
	assert.Nil(t, moved.ParentID)
	assert.True(t, moved.UpdatedAt.After(moved.CreatedAt))

	_, err = e.folders.Update(ctx, stranger, b.ID, FolderInput{Name: "Mine now"})
	requireKind(t, err, common.ErrUnauthorized)
}

func TestFolders_DeleteOnlyWhenEmpty(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	parent := e.folder(t, owner, "Parent", "")
	child := e.folder(t, owner, "Child", parent.ID)
	doc := e.create(t, owner, "Filed", "filed.pdf", 10)
	_, err := e.docs.Move(ctx, owner, doc.ID, child.ID)
	require.NoError(t, err)
	e.trash(t, owner, doc.ID)

	requireKind(t, e.folders.Delete(ctx, owner, parent.ID), common.ErrInvalidState)
	requireKind(t, e.folders.Delete(ctx, owner, child.ID), common.ErrInvalidState)
	requireKind(t, e.folders.Delete(ctx, grantee, child.ID), common.ErrUnauthorized)

	require.NoError(t, e.docs.PermanentlyDelete(ctx, owner, doc.ID))
	require.NoError(t, e.folders.Delete(ctx, owner, child.ID))
	require.NoError(t, e.folders.Delete(ctx, owner, parent.ID))

	_, err = e.folders.Get(ctx, owner, parent.ID)
	requireKind(t, err, common.ErrNotFound)
}

func TestDocuments_CreateInFolder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mine := e.folder(t, owner, "Mine", "")
	theirs := e.folder(t, grantee, "Theirs", "")

	doc, err := e.docs.Create(ctx, owner, CreateDocumentInput{Title: "Filed", FileName: "filed.pdf", FolderID: mine.ID})
	require.NoError(t, err)
	require.NotNil(t, doc.FolderID)
	assert.Equal(t, mine.ID, *doc.FolderID)

	_, err = e.docs.Create(ctx, owner, CreateDocumentInput{Title: "Stray", FileName: "stray.pdf", FolderID: theirs.ID})
	requireKind(t, err, common.ErrUnauthorized)
	_, err = e.docs.Create(ctx, owner, CreateDocumentInput{Title: "Stray", FileName: "stray.pdf", FolderID: "missing"})
	requireKind(t, err, common.ErrNotFound)
}

func TestDocuments_Move(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	folder := e.folder(t, owner, "Reports", "")
	doc := e.create(t, owner, "Report", "report.pdf", 10)
	_, err := e.perms.Grant(ctx, owner, doc.ID, grantee.ID, models.AccessEdit)
	require.NoError(t, err)

	moved, err := e.docs.Move(ctx, owner, doc.ID, folder.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.FolderID)
	assert.Equal(t, folder.ID, *moved.FolderID)

	acts, err := e.repos.Activities().List(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, acts, 1)
	assert.Equal(t, models.ActionMoved, acts[0].Action)
	assert.Equal(t, folder.ID, acts[0].Details)

	_, err = e.docs.Move(ctx, grantee, doc.ID, "")
	requireKind(t, err, common.ErrUnauthorized)
	_, err = e.docs.Move(ctx, owner, doc.ID, e.folder(t, grantee, "Theirs", "").ID)
	requireKind(t, err, common.ErrUnauthorized)
	_, err = e.docs.Move(ctx, admin, doc.ID, e.folder(t, admin, "Admin's", "").ID)
	requireKind(t, err, common.ErrValidation)

	moved, err = e.docs.Move(ctx, admin, doc.ID, "")
	require.NoError(t, err)
	assert.Nil(t, moved.FolderID)

	e.trash(t, owner, doc.ID)
	_, err = e.docs.Move(ctx, owner, doc.ID, folder.ID)
	requireKind(t, err, common.ErrInvalidState)
}

func TestSections_HomeByFolder(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	folder := e.folder(t, owner, "Reports", "")
	loose := e.create(t, owner, "Loose", "loose.pdf", 10)
	filed := e.create(t, owner, "Filed", "filed.pdf", 10)
	_, err := e.docs.Move(ctx, owner, filed.ID, folder.ID)
	require.NoError(t, err)

	page, err := e.sections.Home(ctx, owner, HomeQuery{FolderID: folder.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{filed.ID}, ids(page.Items))
	assert.EqualValues(t, 1, page.TotalElements)

	page, err = e.sections.Home(ctx, owner, HomeQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{filed.ID, loose.ID}, ids(page.Items))
}

func TestAdmin_DeleteUserRemovesFolders(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	top := e.folder(t, grantee, "Top", "")
	e.folder(t, grantee, "Nested", top.ID)
	kept := e.folder(t, owner, "Kept", "")

	require.NoError(t, e.admin.DeleteUser(ctx, admin, grantee.ID))

	left, err := e.repos.Folders().List(ctx, grantee.ID, "")
	require.NoError(t, err)
	assert.Empty(t, left)
	_, err = e.repos.Folders().Get(ctx, kept.ID)
	require.NoError(t, err)
}
