package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdocs/internal/timex"
)

// HomeQuery selects one page of the home section.
type HomeQuery struct {
	models.PageRequest
	SortBy  string
	SortDir string
	Search  string
	// FolderID narrows the section to one folder of the actor.
	FolderID string
}

var homeSorts = map[string]models.DocumentSort{
	string(models.DocumentSortTitle):     models.DocumentSortTitle,
	string(models.DocumentSortSize):      models.DocumentSortSize,
	string(models.DocumentSortCreatedAt): models.DocumentSortCreatedAt,
}

// Snapshot is every section plus stats, read in one pass.
type Snapshot struct {
	Home   *models.Page[*models.Document]         `json:"home"`
	Recent []*models.Document                     `json:"recent"`
	Shared []*models.Document                     `json:"shared"`
	Trash  []*models.Document                     `json:"trash"`
	ByType map[models.Category][]*models.Document `json:"byType"`
	Stats  *models.Stats                          `json:"stats"`
}

// Sections answers the per-user views over documents.
type Sections struct {
	repos           repomanager.RepositoryManager
	stats           *Stats
	recentWindow    time.Duration
	recentCap       int
	defaultPageSize int
	now             timex.Clock
}

func NewSections(repos repomanager.RepositoryManager, stats *Stats, recentWindow time.Duration, recentCap, defaultPageSize int) *Sections {
	if defaultPageSize < 1 || defaultPageSize > models.MaxPageSize {
		defaultPageSize = models.DefaultPageSize
	}
	return &Sections{
		repos:           repos,
		stats:           stats,
		recentWindow:    recentWindow,
		recentCap:       recentCap,
		defaultPageSize: defaultPageSize,
		now:             timex.UTCNow,
	}
}

// Home pages through the actor's ACTIVE documents. An unknown sortBy falls
// back to createdAt, an unknown sortDir to desc.
func (s *Sections) Home(ctx context.Context, actor models.Actor, q HomeQuery) (*models.Page[*models.Document], error) {
	const op = "sections.Home"

	if err := requireActor(op, actor); err != nil {
		return nil, err
	}

	page := q.PageRequest.Normalize(s.defaultPageSize)
	sortBy, ok := homeSorts[q.SortBy]
	if !ok {
		sortBy = models.DocumentSortCreatedAt
	}
	query := models.DocumentQuery{
		OwnerID:  actor.ID,
		Status:   models.StatusActive,
		Search:   q.Search,
		FolderID: q.FolderID,
		SortBy:   sortBy,
		SortDir:  models.ParseSortDir(q.SortDir, models.SortDesc),
		Limit:    page.Size,
		Offset:   page.Offset(),
	}

	items, err := s.repos.Documents().Find(ctx, query)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithUser(actor.ID)
	}
	total, _, err := s.repos.Documents().Totals(ctx, query)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithUser(actor.ID)
	}
	return models.NewPage(items, total, page), nil
}

// Recent lists ACTIVE documents created inside the recent window, newest
// first, capped.
func (s *Sections) Recent(ctx context.Context, actor models.Actor) ([]*models.Document, error) {
	since := s.now().Add(-s.recentWindow)
	return s.list(ctx, "sections.Recent", actor, models.DocumentQuery{
		OwnerID:      actor.ID,
		Status:       models.StatusActive,
		CreatedAfter: &since,
		SortBy:       models.DocumentSortCreatedAt,
		SortDir:      models.SortDesc,
		Limit:        s.recentCap,
	})
}

// Shared lists ACTIVE documents other users granted to the actor.
func (s *Sections) Shared(ctx context.Context, actor models.Actor) ([]*models.Document, error) {
	const op = "sections.Shared"

	if err := requireActor(op, actor); err != nil {
		return nil, err
	}
	docs, err := sharedWith(ctx, s.repos.Documents(), actor.ID)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithUser(actor.ID)
	}
	return docs, nil
}

// Trash lists the actor's TRASHED documents, most recently trashed first.
func (s *Sections) Trash(ctx context.Context, actor models.Actor) ([]*models.Document, error) {
	return s.list(ctx, "sections.Trash", actor, models.DocumentQuery{
		OwnerID: actor.ID,
		Status:  models.StatusTrashed,
		SortBy:  models.DocumentSortTrashedAt,
		SortDir: models.SortDesc,
	})
}

// ByType lists ACTIVE documents whose extension is in the category.
func (s *Sections) ByType(ctx context.Context, actor models.Actor, category models.Category) ([]*models.Document, error) {
	const op = "sections.ByType"

	exts, ok := models.CategoryExtensions[category]
	if !ok {
		return nil, invalid(op, errors.New("unknown category "+string(category)))
	}
	return s.list(ctx, op, actor, models.DocumentQuery{
		OwnerID:    actor.ID,
		Status:     models.StatusActive,
		Extensions: exts,
		SortBy:     models.DocumentSortCreatedAt,
		SortDir:    models.SortDesc,
	})
}

func (s *Sections) list(ctx context.Context, op string, actor models.Actor, q models.DocumentQuery) ([]*models.Document, error) {
	if err := requireActor(op, actor); err != nil {
		return nil, err
	}
	docs, err := s.repos.Documents().Find(ctx, q)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithUser(actor.ID)
	}
	return docs, nil
}

// Snapshot re-reads every section and uncached stats. It is the refresh
// function for periodic revalidation.
func (s *Sections) Snapshot(ctx context.Context, actor models.Actor) (*Snapshot, error) {
	var (
		snap = &Snapshot{ByType: map[models.Category][]*models.Document{}}
		err  error
	)
	if snap.Home, err = s.Home(ctx, actor, HomeQuery{}); err != nil {
		return nil, err
	}
	if snap.Recent, err = s.Recent(ctx, actor); err != nil {
		return nil, err
	}
	if snap.Shared, err = s.Shared(ctx, actor); err != nil {
		return nil, err
	}
	if snap.Trash, err = s.Trash(ctx, actor); err != nil {
		return nil, err
	}
	for category := range models.CategoryExtensions {
		if snap.ByType[category], err = s.ByType(ctx, actor, category); err != nil {
			return nil, err
		}
	}
	if snap.Stats, err = s.stats.Compute(ctx, actor.ID); err != nil {
		return nil, err
	}
	s.stats.cache.Add(actor.ID, *snap.Stats)
	return snap, nil
}
