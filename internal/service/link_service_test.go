package service

import (
	"context"
	"sync"
	"testing"

	"github.com/AlShabiliBadia/Shorter-links/internal/apperrors"
	"github.com/AlShabiliBadia/Shorter-links/internal/dto"
	"github.com/AlShabiliBadia/Shorter-links/internal/model"
	"github.com/AlShabiliBadia/Shorter-links/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateLink(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous link", func(t *testing.T) {
		svc := NewLinkService(repository.NewStore(newTestDB(t), nil), zap.NewNop())

		link, err := svc.CreateLink(ctx, "https://example.com", model.Anonymous())
		require.NoError(t, err)
		require.NotZero(t, link.ID)
		require.Len(t, link.ShortCode, model.ShortCodeLength)
		require.Equal(t, "https://example.com", link.TargetURL)
		require.Zero(t, link.Clicks)
		require.False(t, link.CreatedAt.IsZero())
		require.True(t, link.OwnedBy().IsAnonymous())
	})

	t.Run("invalid target", func(t *testing.T) {
		seq := &sequence{codes: []string{"AAAAAAAA"}}
		svc := NewLinkService(repository.NewStore(newTestDB(t), nil), zap.NewNop(), WithCodeGenerator(seq.next))

		for _, target := range []string{"", "example.com", "ftp://example.com", "https://"} {
			_, err := svc.CreateLink(ctx, target, model.Anonymous())
			require.ErrorIs(t, err, apperrors.ErrValidation, target)
		}
		require.Zero(t, seq.Calls())
	})

	t.Run("collision retries with a new code", func(t *testing.T) {
		store := repository.NewStore(newTestDB(t), nil)
		taken := &sequence{codes: []string{"AAAAAAAA"}}
		_, err := NewLinkService(store, zap.NewNop(), WithCodeGenerator(taken.next)).
			CreateLink(ctx, "https://example.com/first", model.Anonymous())
		require.NoError(t, err)

		seq := &sequence{codes: []string{"AAAAAAAA", "AAAAAAAA", "BBBBBBBB"}}
		link, err := NewLinkService(store, zap.NewNop(), WithCodeGenerator(seq.next)).
			CreateLink(ctx, "https://example.com/second", model.Anonymous())
		require.NoError(t, err)
		require.Equal(t, "BBBBBBBB", link.ShortCode)
		require.Equal(t, 3, seq.Calls())

		first, err := store.Links().FindByCode(ctx, "AAAAAAAA", false)
		require.NoError(t, err)
		require.Equal(t, "https://example.com/first", first.TargetURL)
	})

	t.Run("exhausted retries", func(t *testing.T) {
		store := repository.NewStore(newTestDB(t), nil)
		seq := &sequence{codes: []string{"AAAAAAAA"}}
		svc := NewLinkService(store, zap.NewNop(), WithCodeGenerator(seq.next))

		_, err := svc.CreateLink(ctx, "https://example.com", model.Anonymous())
		require.NoError(t, err)

		_, err = svc.CreateLink(ctx, "https://example.com", model.Anonymous())
		require.ErrorIs(t, err, apperrors.ErrExhaustedRetries)
		require.Equal(t, 1+MaxCreateAttempts, seq.Calls())

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, 500, appErr.Code)
	})

	t.Run("other store failures are not retried", func(t *testing.T) {
		db := newTestDB(t)
		require.NoError(t, repository.CloseDB(db))

		seq := &sequence{codes: []string{"AAAAAAAA", "BBBBBBBB"}}
		svc := NewLinkService(repository.NewStore(db, nil), zap.NewNop(), WithCodeGenerator(seq.next))

		_, err := svc.CreateLink(ctx, "https://example.com", model.Anonymous())
		require.ErrorIs(t, err, apperrors.ErrInternal)
		require.Equal(t, 1, seq.Calls())
	})

	t.Run("concurrent creates never share a code", func(t *testing.T) {
		store := repository.NewStore(newTestDB(t), nil)
		svc := NewLinkService(store, zap.NewNop())

		const n = 50
		codes := make(chan string, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				link, err := svc.CreateLink(ctx, "https://example.com", model.Anonymous())
				if err == nil {
					codes <- link.ShortCode
				}
			}()
		}
		wg.Wait()
		close(codes)

		seen := make(map[string]struct{})
		for code := range codes {
			_, dup := seen[code]
			require.False(t, dup, code)
			seen[code] = struct{}{}
		}
		require.Len(t, seen, n)

		links, _, err := store.Links().Totals(ctx)
		require.NoError(t, err)
		require.Equal(t, int64(n), links)
	})
}

func TestResolveAndCount(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown and malformed codes", func(t *testing.T) {
		svc := NewLinkService(repository.NewStore(newTestDB(t), nil), zap.NewNop())
		for _, code := range []string{"zzzzzzzz", "", "short", "has space", "../../etc"} {
			_, err := svc.ResolveAndCount(ctx, code)
			require.ErrorIs(t, err, apperrors.ErrNotFound, code)
		}
	})

	t.Run("concurrent redirects are all counted", func(t *testing.T) {
		store := repository.NewStore(newTestDB(t), nil)
		svc := NewLinkService(store, zap.NewNop())

		link, err := svc.CreateLink(ctx, "https://example.com", model.Anonymous())
		require.NoError(t, err)

		const k = 40
		var wg sync.WaitGroup
		errs := make(chan error, k)
		for i := 0; i < k; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				target, err := svc.ResolveAndCount(ctx, link.ShortCode)
				if err == nil && target != "https://example.com" {
					err = apperrors.SystemErrorDefault()
				}
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		found, err := store.Links().FindByCode(ctx, link.ShortCode, false)
		require.NoError(t, err)
		require.Equal(t, int64(k), found.Clicks)
	})

	t.Run("cached redirects still count", func(t *testing.T) {
		store := repository.NewStore(newTestDB(t), nil)
		cache := newMapCache()
		svc := NewLinkService(store, zap.NewNop(), WithLinkCache(cache))

		link, err := svc.CreateLink(ctx, "https://example.com", model.Anonymous())
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			target, err := svc.ResolveAndCount(ctx, link.ShortCode)
			require.NoError(t, err)
			require.Equal(t, "https://example.com", target)
		}

		cached, ok := cache.Get(ctx, link.ShortCode)
		require.True(t, ok)
		require.Equal(t, link.ID, cached.ID)

		found, err := store.Links().FindByCode(ctx, link.ShortCode, false)
		require.NoError(t, err)
		require.Equal(t, int64(3), found.Clicks)
	})

	t.Run("stale cache entry falls back to the table", func(t *testing.T) {
		store := repository.NewStore(newTestDB(t), nil)
		cache := newMapCache()
		svc := NewLinkService(store, zap.NewNop(), WithLinkCache(cache))

		link, err := svc.CreateLink(ctx, "https://example.com", model.Anonymous())
		require.NoError(t, err)
		cache.Set(ctx, link.ShortCode, repository.CachedLink{ID: link.ID + 100, TargetURL: "https://stale.example"})

		target, err := svc.ResolveAndCount(ctx, link.ShortCode)
		require.NoError(t, err)
		require.Equal(t, "https://example.com", target)

		cached, ok := cache.Get(ctx, link.ShortCode)
		require.True(t, ok)
		require.Equal(t, link.ID, cached.ID)

		found, err := store.Links().FindByCode(ctx, link.ShortCode, false)
		require.NoError(t, err)
		require.Equal(t, int64(1), found.Clicks)
	})
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(newTestDB(t), nil)
	accounts := newTestAccounts(t, store)
	links := NewLinkService(store, zap.NewNop())

	signup := func(email string) model.Principal {
		u, err := accounts.Signup(ctx, dto.SignupRequest{
			Username: "user", Email: email, Password: "password1", PasswordConfirmation: "password1",
		})
		require.NoError(t, err)
		return model.UserPrincipal(u.ID)
	}
	alice := signup("alice@example.com")
	bob := signup("bob@example.com")

	owned, err := links.CreateLink(ctx, "https://example.com/owned", alice)
	require.NoError(t, err)
	anonymous, err := links.CreateLink(ctx, "https://example.com/anonymous", model.Anonymous())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := links.ResolveAndCount(ctx, owned.ShortCode)
		require.NoError(t, err)
	}

	t.Run("owner sees current clicks", func(t *testing.T) {
		stats, err := links.GetStats(ctx, owned.ShortCode, alice)
		require.NoError(t, err)
		require.Equal(t, dto.LinkStats{
			TargetURL: "https://example.com/owned",
			ShortCode: owned.ShortCode,
			Clicks:    2,
		}, *stats)
	})

	tests := []struct {
		name   string
		code   string
		viewer model.Principal
		want   error
	}{
		{"unknown code", "zzzzzzzz", alice, apperrors.ErrNotFound},
		{"anonymous viewer", owned.ShortCode, model.Anonymous(), apperrors.ErrUnauthenticated},
		{"other user", owned.ShortCode, bob, apperrors.ErrForbidden},
		{"anonymous link, anonymous viewer", anonymous.ShortCode, model.Anonymous(), apperrors.ErrUnauthenticated},
		{"anonymous link, alice", anonymous.ShortCode, alice, apperrors.ErrForbidden},
		{"anonymous link, bob", anonymous.ShortCode, bob, apperrors.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := links.GetStats(ctx, tt.code, tt.viewer)
			require.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("stats do not count clicks", func(t *testing.T) {
		stats, err := links.GetStats(ctx, owned.ShortCode, alice)
		require.NoError(t, err)
		require.Equal(t, int64(2), stats.Clicks)
	})
}

func TestListOwnedLinks(t *testing.T) {
	ctx := context.Background()
	store := repository.NewStore(newTestDB(t), nil)
	links := NewLinkService(store, zap.NewNop())
	user, err := newTestAccounts(t, store).Signup(ctx, dto.SignupRequest{
		Username: "owner", Email: "owner@example.com", Password: "password1", PasswordConfirmation: "password1",
	})
	require.NoError(t, err)
	owner := model.UserPrincipal(user.ID)

	_, err = links.ListOwnedLinks(ctx, model.Anonymous(), 1, 10)
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	for i := 0; i < 3; i++ {
		_, err := links.CreateLink(ctx, "https://example.com", owner)
		require.NoError(t, err)
	}
	_, err = links.CreateLink(ctx, "https://example.com", model.Anonymous())
	require.NoError(t, err)

	page, err := links.ListOwnedLinks(ctx, owner, 1, 2)
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Equal(t, 2, page.TotalPage)
	require.Len(t, page.List, 2)
	require.Greater(t, page.List[0].ID, page.List[1].ID)

	page, err = links.ListOwnedLinks(ctx, owner, 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Page)
	require.Equal(t, DefaultPageSize, page.Size)
	require.Len(t, page.List, 3)
}
