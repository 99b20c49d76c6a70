package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophdocs/internal/common"
	"github.com/dmitrijs2005/gophdocs/internal/logging"
	"github.com/dmitrijs2005/gophdocs/internal/server/models"
	"github.com/dmitrijs2005/gophdocs/internal/server/policy"
	"github.com/dmitrijs2005/gophdocs/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdocs/internal/timex"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/hashicorp/go-multierror"
)

// UserListQuery selects one page of the admin user listing. Empty filters
// do not filter.
type UserListQuery struct {
	models.PageRequest
	SortBy  string
	SortDir string
	Role    string
	Status  string
	Search  string
}

// DocumentListQuery selects one page of the cross-tenant document listing.
type DocumentListQuery struct {
	models.PageRequest
	SortBy  string
	SortDir string
	Status  string
	OwnerID string
	Search  string
}

// SettingsInput is an update of the admin settings.
type SettingsInput struct {
	QuotaBytes               int64 `json:"quotaBytes"`
	TrashRetentionDays       int   `json:"trashRetentionDays"`
	RequireEmailVerification bool  `json:"requireEmailVerification"`
	EnableTwoFactorAuth      bool  `json:"enableTwoFactorAuth"`
}

func (in SettingsInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.QuotaBytes, validation.Required, validation.Min(int64(1))),
		validation.Field(&in.TrashRetentionDays, validation.Required, validation.Min(1), validation.Max(365)),
	)
}

func validateUser(u *models.User) error {
	return validation.ValidateStruct(u,
		validation.Field(&u.ID, validation.Required, validation.RuneLength(1, 255)),
		validation.Field(&u.Username, validation.Required, validation.RuneLength(2, 255)),
		validation.Field(&u.Email, validation.Required, is.EmailFormat),
		validation.Field(&u.Role, validation.Required, validation.In(models.RoleUser, models.RoleAdmin)),
		validation.Field(&u.Status, validation.Required, validation.In(models.UserActive, models.UserInactive)),
	)
}

// BulkFailure is one item a bulk operation could not process.
type BulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// BulkResult lists per-item outcomes. One failure never stops the batch.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`

	errs *multierror.Error
}

func newBulkResult() *BulkResult {
	return &BulkResult{Succeeded: []string{}, Failed: []BulkFailure{}}
}

func (r *BulkResult) succeed(id string) {
	r.Succeeded = append(r.Succeeded, id)
}

func (r *BulkResult) fail(id string, err error) {
	r.Failed = append(r.Failed, BulkFailure{ID: id, Error: err.Error()})
	r.errs = multierror.Append(r.errs, err)
}

// Err joins the item errors, or is nil when everything succeeded.
func (r *BulkResult) Err() error {
	return r.errs.ErrorOrNil()
}

var (
	userSorts = map[string]models.UserSort{
		string(models.UserSortUsername):  models.UserSortUsername,
		string(models.UserSortEmail):     models.UserSortEmail,
		string(models.UserSortRole):      models.UserSortRole,
		string(models.UserSortStatus):    models.UserSortStatus,
		string(models.UserSortCreatedAt): models.UserSortCreatedAt,
	}
	adminDocumentSorts = map[string]models.DocumentSort{
		string(models.DocumentSortTitle):     models.DocumentSortTitle,
		string(models.DocumentSortSize):      models.DocumentSortSize,
		string(models.DocumentSortCreatedAt): models.DocumentSortCreatedAt,
		string(models.DocumentSortTrashedAt): models.DocumentSortTrashedAt,
	}
)

// Admin is the cross-tenant moderation layer. Every method requires the
// ADMIN role.
type Admin struct {
	repos           repomanager.RepositoryManager
	docs            *Documents
	stats           StatsInvalidator
	defaultPageSize int
	log             logging.Logger
	now             timex.Clock
}

func NewAdmin(repos repomanager.RepositoryManager, docs *Documents, stats StatsInvalidator, defaultPageSize int, log logging.Logger) *Admin {
	if stats == nil {
		stats = noopInvalidator{}
	}
	if defaultPageSize < 1 || defaultPageSize > models.MaxPageSize {
		defaultPageSize = models.DefaultPageSize
	}
	return &Admin{
		repos:           repos,
		docs:            docs,
		stats:           stats,
		defaultPageSize: defaultPageSize,
		log:             log.With("component", "admin"),
		now:             timex.UTCNow,
	}
}

func (a *Admin) ListUsers(ctx context.Context, actor models.Actor, q UserListQuery) (*models.Page[*models.User], error) {
	const op = "admin.ListUsers"

	if err := policy.RequireAdmin(op, actor); err != nil {
		return nil, err
	}
	err := validation.Errors{
		"role":   validation.Validate(models.Role(q.Role), validation.In(models.RoleUser, models.RoleAdmin)),
		"status": validation.Validate(models.UserStatus(q.Status), validation.In(models.UserActive, models.UserInactive)),
	}.Filter()
	if err != nil {
		return nil, invalid(op, err)
	}

	page := q.PageRequest.Normalize(a.defaultPageSize)
	sortBy, ok := userSorts[q.SortBy]
	if !ok {
		sortBy = models.UserSortUsername
	}
	query := models.UserQuery{
		Role:    models.Role(q.Role),
		Status:  models.UserStatus(q.Status),
		Search:  q.Search,
		SortBy:  sortBy,
		SortDir: models.ParseSortDir(q.SortDir, models.SortAsc),
		Limit:   page.Size,
		Offset:  page.Offset(),
	}

	items, err := a.repos.Users().Find(ctx, query)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}
	total, err := a.repos.Users().Count(ctx, query)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}
	return models.NewPage(items, total, page), nil
}

// SyncUser stores an account pushed by the identity subsystem.
func (a *Admin) SyncUser(ctx context.Context, actor models.Actor, u models.User) (*models.User, error) {
	const op = "admin.SyncUser"

	if err := policy.RequireAdmin(op, actor); err != nil {
		return nil, err
	}
	if err := validateUser(&u); err != nil {
		return nil, invalid(op, err).WithUser(u.ID)
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = a.now()
	}

	stored, err := a.repos.Users().Upsert(ctx, &u)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithUser(u.ID)
	}
	a.log.Info(ctx, "user synced", "user_id", u.ID, "role", u.Role, "status", u.Status)
	return stored, nil
}

func (a *Admin) UpdateUserStatus(ctx context.Context, actor models.Actor, userID string, status models.UserStatus) (*models.User, error) {
	const op = "admin.UpdateUserStatus"

	if err := policy.RequireAdmin(op, actor); err != nil {
		return nil, err
	}
	if err := validation.Validate(status, validation.Required, validation.In(models.UserActive, models.UserInactive)); err != nil {
		return nil, invalid(op, validation.Errors{"status": err}).WithUser(userID)
	}

	u, err := a.repos.Users().UpdateStatus(ctx, userID, status)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewError(common.ErrNotFound, op, nil).WithUser(userID)
	}
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err).WithUser(userID)
	}
	a.log.Info(ctx, "user status changed", "user_id", userID, "status", status, "actor_id", actor.ID)
	return u, nil
}

// DeleteUser permanently deletes every document the user owns, whatever its
// status, then the grants held by the user and finally the user. A failure
// part way leaves the remaining state intact, so the call can be retried.
func (a *Admin) DeleteUser(ctx context.Context, actor models.Actor, userID string) error {
	const op = "admin.DeleteUser"

	if err := policy.RequireAdmin(op, actor); err != nil {
		return err
	}
	if _, err := a.repos.Users().Get(ctx, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrNotFound, op, nil).WithUser(userID)
		}
		return common.NewError(common.ErrTransientIO, op, err).WithUser(userID)
	}

	owned, err := a.repos.Documents().Find(ctx, models.DocumentQuery{OwnerID: userID})
	if err != nil {
		return common.NewError(common.ErrTransientIO, op, err).WithUser(userID)
	}
	for _, doc := range owned {
		if err := a.docs.remove(ctx, op, actor.ID, doc, models.ActionDeleted); err != nil {
			return err
		}
	}

	err = a.repos.InTx(ctx, func(ctx context.Context, tx repomanager.Repos) error {
		if err := tx.Permissions().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := tx.Folders().DeleteByOwner(ctx, userID); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, userID)
	})
	if errors.Is(err, common.ErrNotFound) {
		return common.NewError(common.ErrNotFound, op, nil).WithUser(userID)
	}
	if err != nil {
		return common.Classify(op, err)
	}

	a.stats.InvalidateAll()
	a.log.Info(ctx, "user deleted", "user_id", userID, "documents", len(owned), "actor_id", actor.ID)
	return nil
}

// BulkDeleteUsers deletes each user independently and reports per-id
// outcomes. Duplicate ids are processed once.
func (a *Admin) BulkDeleteUsers(ctx context.Context, actor models.Actor, userIDs []string) (*BulkResult, error) {
	const op = "admin.BulkDeleteUsers"

	if err := policy.RequireAdmin(op, actor); err != nil {
		return nil, err
	}

	res := newBulkResult()
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		if err := a.DeleteUser(ctx, actor, id); err != nil {
			res.fail(id, err)
			continue
		}
		res.succeed(id)
	}

	if err := res.Err(); err != nil {
		a.log.Warn(ctx, "bulk delete had failures", "failed", len(res.Failed), "succeeded", len(res.Succeeded), "error", err)
	}
	return res, nil
}

// ListDocuments pages through all documents, newest first by default.
func (a *Admin) ListDocuments(ctx context.Context, actor models.Actor, q DocumentListQuery) (*models.Page[*models.Document], error) {
	const op = "admin.ListDocuments"

	if err := policy.RequireAdmin(op, actor); err != nil {
		return nil, err
	}
	status := models.DocumentStatus(q.Status)
	if err := validation.Validate(status, validation.In(models.StatusActive, models.StatusTrashed)); err != nil {
		return nil, invalid(op, validation.Errors{"status": err})
	}

	page := q.PageRequest.Normalize(a.defaultPageSize)
	sortBy, ok := adminDocumentSorts[q.SortBy]
	if !ok {
		sortBy = models.DocumentSortCreatedAt
	}
	query := models.DocumentQuery{
		OwnerID: q.OwnerID,
		Status:  status,
		Search:  q.Search,
		SortBy:  sortBy,
		SortDir: models.ParseSortDir(q.SortDir, models.SortDesc),
		Limit:   page.Size,
		Offset:  page.Offset(),
	}

	items, err := a.repos.Documents().Find(ctx, query)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}
	total, _, err := a.repos.Documents().Totals(ctx, query)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}
	return models.NewPage(items, total, page), nil
}

// GetSettings returns the settings, storing the defaults on first read.
func (a *Admin) GetSettings(ctx context.Context, actor models.Actor) (*models.Settings, error) {
	const op = "admin.GetSettings"

	if err := policy.RequireAdmin(op, actor); err != nil {
		return nil, err
	}

	s, err := a.repos.Settings().Get(ctx)
	if errors.Is(err, common.ErrNotFound) {
		s = models.DefaultSettings(a.now())
		err = a.repos.Settings().Save(ctx, s)
	}
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}
	return s, nil
}

func (a *Admin) UpdateSettings(ctx context.Context, actor models.Actor, in SettingsInput) (*models.Settings, error) {
	const op = "admin.UpdateSettings"

	if err := policy.RequireAdmin(op, actor); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, invalid(op, err)
	}

	s := &models.Settings{
		QuotaBytes:               in.QuotaBytes,
		TrashRetentionDays:       in.TrashRetentionDays,
		RequireEmailVerification: in.RequireEmailVerification,
		EnableTwoFactorAuth:      in.EnableTwoFactorAuth,
		UpdatedAt:                a.now(),
	}
	if err := a.repos.Settings().Save(ctx, s); err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}

	a.stats.InvalidateAll()
	a.log.Info(ctx, "settings updated", "quota_bytes", s.QuotaBytes, "trash_retention_days", s.TrashRetentionDays, "actor_id", actor.ID)
	return s, nil
}

func (a *Admin) Stats(ctx context.Context, actor models.Actor) (*models.AdminStats, error) {
	const op = "admin.Stats"

	if err := policy.RequireAdmin(op, actor); err != nil {
		return nil, err
	}

	var st models.AdminStats
	var err error
	if st.TotalUsers, err = a.repos.Users().Count(ctx, models.UserQuery{}); err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}
	if st.ActiveUsers, err = a.repos.Users().Count(ctx, models.UserQuery{Status: models.UserActive}); err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}
	if st.TotalDocuments, st.TotalStorageBytes, err = a.repos.Documents().Totals(ctx, models.DocumentQuery{}); err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}
	return &st, nil
}

func (a *Admin) ListActivities(ctx context.Context, actor models.Actor, req models.PageRequest) (*models.Page[*models.Activity], error) {
	const op = "admin.ListActivities"

	if err := policy.RequireAdmin(op, actor); err != nil {
		return nil, err
	}

	page := req.Normalize(a.defaultPageSize)
	items, err := a.repos.Activities().List(ctx, page.Size, page.Offset())
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}
	total, err := a.repos.Activities().Count(ctx)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}
	return models.NewPage(items, total, page), nil
}

// PurgeExpiredTrash permanently deletes documents that have been in the
// trash longer than the retention period.
func (a *Admin) PurgeExpiredTrash(ctx context.Context, actor models.Actor) (*BulkResult, error) {
	const op = "admin.PurgeExpiredTrash"

	if err := policy.RequireAdmin(op, actor); err != nil {
		return nil, err
	}

	now := a.now()
	s, err := currentSettings(ctx, a.repos.Settings(), now)
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}
	cutoff := now.AddDate(0, 0, -s.TrashRetentionDays)

	expired, err := a.repos.Documents().Find(ctx, models.DocumentQuery{
		Status:        models.StatusTrashed,
		TrashedBefore: &cutoff,
		SortBy:        models.DocumentSortTrashedAt,
		SortDir:       models.SortAsc,
	})
	if err != nil {
		return nil, common.NewError(common.ErrTransientIO, op, err)
	}

	res := newBulkResult()
	for _, doc := range expired {
		if err := a.docs.remove(ctx, op, actor.ID, doc, models.ActionAutoDeleted); err != nil {
			res.fail(doc.ID, err)
			continue
		}
		res.succeed(doc.ID)
	}

	a.log.Info(ctx, "expired trash purged", "cutoff", cutoff, "succeeded", len(res.Succeeded), "failed", len(res.Failed))
	if err := res.Err(); err != nil {
		a.log.Warn(ctx, "purge had failures", "error", fmt.Sprint(err))
	}
	return res, nil
}
