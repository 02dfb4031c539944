package catalog

import (
	"context"
	"testing"

	"toolhub-service/internal/domain/catalog"
	xerrors "toolhub-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type likeKey struct {
	kind   catalog.ItemKind
	itemID int64
	userID int64
}

type fakeCatalogRepo struct {
	items  map[int64]*catalog.Item
	likes  map[likeKey]bool
	nextID int64
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		items:  make(map[int64]*catalog.Item),
		likes:  make(map[likeKey]bool),
		nextID: 1,
	}
}

func (f *fakeCatalogRepo) Create(ctx context.Context, item *catalog.Item) error {
	for _, existing := range f.items {
		if existing.Kind == item.Kind && existing.URL == item.URL {
			return xerrors.ErrDuplicateEntry
		}
	}
	item.ID = f.nextID
	f.nextID++
	f.items[item.ID] = item
	return nil
}

func (f *fakeCatalogRepo) FindByID(ctx context.Context, kind catalog.ItemKind, id int64) (*catalog.Item, error) {
	item, ok := f.items[id]
	if !ok || item.Kind != kind {
		return nil, xerrors.ErrNotFound
	}
	return item, nil
}

func (f *fakeCatalogRepo) List(ctx context.Context, kind catalog.ItemKind, filters *catalog.ItemListFilters) ([]catalog.Item, int64, error) {
	var out []catalog.Item
	for _, item := range f.items {
		if item.Kind != kind {
			continue
		}
		if filters.Status != nil && item.Status != *filters.Status {
			continue
		}
		out = append(out, *item)
	}
	return out, int64(len(out)), nil
}

func (f *fakeCatalogRepo) UpdateStatus(ctx context.Context, kind catalog.ItemKind, id int64, status catalog.SubmissionStatus) error {
	item, ok := f.items[id]
	if !ok || item.Kind != kind {
		return xerrors.ErrNotFound
	}
	item.Status = status
	return nil
}

func (f *fakeCatalogRepo) Delete(ctx context.Context, kind catalog.ItemKind, id int64) error {
	item, ok := f.items[id]
	if !ok || item.Kind != kind {
		return xerrors.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeCatalogRepo) Like(ctx context.Context, kind catalog.ItemKind, itemID int64, userID int64, userEmail string) error {
	item, ok := f.items[itemID]
	if !ok || item.Kind != kind {
		return xerrors.ErrNotFound
	}
	key := likeKey{kind, itemID, userID}
	if f.likes[key] {
		return xerrors.ErrDuplicateEntry
	}
	f.likes[key] = true
	item.Likes++
	return nil
}

func (f *fakeCatalogRepo) Unlike(ctx context.Context, kind catalog.ItemKind, itemID int64, userID int64) error {
	key := likeKey{kind, itemID, userID}
	if !f.likes[key] {
		return xerrors.ErrNotFound
	}
	delete(f.likes, key)
	f.items[itemID].Likes--
	return nil
}

func newTestService(repo Repository) *CatalogService {
	return NewCatalogService(repo, zap.NewNop())
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("submissions start pending", func(t *testing.T) {
		svc := newTestService(newFakeCatalogRepo())

		item, err := svc.Submit(ctx, catalog.KindAITool, 7, &catalog.SubmitItemRequest{
			Name: "Summarizer",
			URL:  "https://summarizer.example.com",
			Tags: []string{"nlp", "productivity"},
		})
		require.NoError(t, err)

		assert.Equal(t, catalog.StatusPending, item.Status)
		assert.Equal(t, int64(7), item.SubmittedBy)
		assert.False(t, item.Description.Valid)
	})

	t.Run("duplicate url surfaces conflict", func(t *testing.T) {
		svc := newTestService(newFakeCatalogRepo())
		req := &catalog.SubmitItemRequest{Name: "One", URL: "https://dup.example.com"}

		_, err := svc.Submit(ctx, catalog.KindAITool, 7, req)
		require.NoError(t, err)

		_, err = svc.Submit(ctx, catalog.KindAITool, 8, req)
		assert.ErrorIs(t, err, xerrors.ErrDuplicateEntry)
	})

	t.Run("same url is allowed across kinds", func(t *testing.T) {
		svc := newTestService(newFakeCatalogRepo())
		req := &catalog.SubmitItemRequest{Name: "One", URL: "https://shared.example.com"}

		_, err := svc.Submit(ctx, catalog.KindAITool, 7, req)
		require.NoError(t, err)

		_, err = svc.Submit(ctx, catalog.KindUsefulWebsite, 7, req)
		require.NoError(t, err)
	})
}

func TestModerationVisibility(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeCatalogRepo())

	pending, err := svc.Submit(ctx, catalog.KindAITool, 7, &catalog.SubmitItemRequest{
		Name: "Hidden", URL: "https://hidden.example.com",
	})
	require.NoError(t, err)

	// Pending entries are invisible to the public
	resp, err := svc.ListApproved(ctx, catalog.KindAITool, &catalog.ItemListFilters{})
	require.NoError(t, err)
	assert.Empty(t, resp.Items)

	// But visible to admins
	resp, err = svc.ListAll(ctx, catalog.KindAITool, &catalog.ItemListFilters{})
	require.NoError(t, err)
	assert.Len(t, resp.Items, 1)

	// Approval makes them public
	moderated, err := svc.Moderate(ctx, catalog.KindAITool, pending.ID, catalog.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusApproved, moderated.Status)

	resp, err = svc.ListApproved(ctx, catalog.KindAITool, &catalog.ItemListFilters{})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, pending.ID, resp.Items[0].ID)
}

func TestLikes(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeCatalogRepo())

	item, err := svc.Submit(ctx, catalog.KindUsefulWebsite, 7, &catalog.SubmitItemRequest{
		Name: "Liked", URL: "https://liked.example.com",
	})
	require.NoError(t, err)

	t.Run("like once", func(t *testing.T) {
		require.NoError(t, svc.Like(ctx, catalog.KindUsefulWebsite, item.ID, 1, "a@example.com"))

		got, err := svc.GetItem(ctx, catalog.KindUsefulWebsite, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Likes)
	})

	t.Run("second like conflicts", func(t *testing.T) {
		err := svc.Like(ctx, catalog.KindUsefulWebsite, item.ID, 1, "a@example.com")
		assert.ErrorIs(t, err, xerrors.ErrDuplicateEntry)
	})

	t.Run("unlike withdraws it", func(t *testing.T) {
		require.NoError(t, svc.Unlike(ctx, catalog.KindUsefulWebsite, item.ID, 1))

		got, err := svc.GetItem(ctx, catalog.KindUsefulWebsite, item.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Likes)
	})

	t.Run("unlike without a like", func(t *testing.T) {
		err := svc.Unlike(ctx, catalog.KindUsefulWebsite, item.ID, 2)
		assert.ErrorIs(t, err, xerrors.ErrNotFound)
	})
}
