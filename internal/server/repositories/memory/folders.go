package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
)

type FolderRepository struct {
	s  *Store
	tx bool
}

func (r *FolderRepository) Create(ctx context.Context, f *models.Folder) error {
	defer r.s.lockWrite(r.tx)()

	if _, ok := r.s.data.folders[f.ID]; ok {
		return errDuplicate("folder", f.ID)
	}
	r.s.data.folders[f.ID] = *f
	return nil
}

func (r *FolderRepository) Get(ctx context.Context, id string) (*models.Folder, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.data.folders[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &f, nil
}

func (r *FolderRepository) Update(ctx context.Context, f *models.Folder) (*models.Folder, error) {
	defer r.s.lockWrite(r.tx)()

	stored, ok := r.s.data.folders[f.ID]
	if !ok {
		return nil, common.ErrNotFound
	}
	stored.Name = f.Name
	stored.ParentID = f.ParentID
	stored.UpdatedAt = f.UpdatedAt
	r.s.data.folders[f.ID] = stored
	return &stored, nil
}

func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	defer r.s.lockWrite(r.tx)()

	if _, ok := r.s.data.folders[id]; !ok {
		return common.ErrNotFound
	}
	r.deleteLocked(id)
	return nil
}

// deleteLocked mirrors ON DELETE CASCADE on folders.parent_id and
// ON DELETE SET NULL on documents.folder_id.
func (r *FolderRepository) deleteLocked(id string) {
	delete(r.s.data.folders, id)
	for docID, d := range r.s.data.docs {
		if d.FolderID != nil && *d.FolderID == id {
			d.FolderID = nil
			r.s.data.docs[docID] = d
		}
	}
	for childID, f := range r.s.data.folders {
		if f.ParentID != nil && *f.ParentID == id {
			r.deleteLocked(childID)
		}
	}
}

func (r *FolderRepository) List(ctx context.Context, ownerID, parentID string) ([]*models.Folder, error) {
	r.s.mu.Lock()
	result := make([]*models.Folder, 0)
	for _, f := range r.s.data.folders {
		if f.OwnerID != ownerID {
			continue
		}
		if parentID != "" && (f.ParentID == nil || *f.ParentID != parentID) {
			continue
		}
		folder := f
		result = append(result, &folder)
	}
	r.s.mu.Unlock()

	slices.SortFunc(result, func(a, b *models.Folder) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (r *FolderRepository) CountContents(ctx context.Context, id string) (int64, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var folders, documents int64
	for _, f := range r.s.data.folders {
		if f.ParentID != nil && *f.ParentID == id {
			folders++
		}
	}
	for _, d := range r.s.data.docs {
		if d.FolderID != nil && *d.FolderID == id {
			documents++
		}
	}
	return folders, documents, nil
}

func (r *FolderRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	defer r.s.lockWrite(r.tx)()

	for id, f := range r.s.data.folders {
		if f.OwnerID == ownerID {
			r.deleteLocked(id)
		}
	}
	return nil
}
