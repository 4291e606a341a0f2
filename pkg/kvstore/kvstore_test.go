package kvstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailmerge/pkg/kvstore"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestStores(t *testing.T) {
	t.Parallel()

	stores := map[string]func(t *testing.T) kvstore.Store{
		"memory": func(t *testing.T) kvstore.Store { return kvstore.NewMemory() },
		"redis": func(t *testing.T) kvstore.Store {
			_, client := newRedis(t)
			return kvstore.NewRedis(client, kvstore.WithPrefix("mm"))
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			s := newStore(t)

			_, err := s.Get(ctx, "emailConfig")
			require.ErrorIs(t, err, kvstore.ErrNotFound)

			require.NoError(t, s.Set(ctx, "emailConfig", []byte(`{"to_column":"Email"}`)))
			got, err := s.Get(ctx, "emailConfig")
			require.NoError(t, err)
			require.JSONEq(t, `{"to_column":"Email"}`, string(got))

			require.NoError(t, s.Set(ctx, "emailConfig", []byte(`{}`)))
			got, err = s.Get(ctx, "emailConfig")
			require.NoError(t, err)
			require.Equal(t, "{}", string(got))

			require.NoError(t, s.Delete(ctx, "emailConfig"))
			require.NoError(t, s.Delete(ctx, "emailConfig"))
			_, err = s.Get(ctx, "emailConfig")
			require.ErrorIs(t, err, kvstore.ErrNotFound)
		})
	}
}

func TestRedis_Prefix(t *testing.T) {
	t.Parallel()

	mr, client := newRedis(t)
	s := kvstore.NewRedis(client, kvstore.WithPrefix("mailmerge"))

	require.NoError(t, s.Set(context.Background(), "emailTemplates", []byte("{}")))

	require.True(t, mr.Exists("mailmerge:emailTemplates"))
	require.False(t, mr.Exists("emailTemplates"))
}

func TestMemory_CopiesValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := kvstore.NewMemory()

	v := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", v))
	v[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty url", func(t *testing.T) {
		t.Parallel()
		_, err := kvstore.Open(ctx, "")
		require.ErrorIs(t, err, kvstore.ErrEmptyConnectionURL)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		t.Parallel()
		_, err := kvstore.Open(ctx, "http://localhost:6379")
		require.ErrorIs(t, err, kvstore.ErrFailedToParseURL)
	})

	t.Run("connects", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		client, err := kvstore.Open(ctx, "redis://"+mr.Addr()+"/0", kvstore.WithRetry(1, time.Millisecond))
		require.NoError(t, err)
		require.NoError(t, kvstore.Healthcheck(client)(ctx))
		require.NoError(t, kvstore.Shutdown(client)(ctx))
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()

		_, err := kvstore.Open(ctx, "redis://"+addr+"/0",
			kvstore.WithRetry(2, time.Millisecond),
			kvstore.WithDialTimeout(100*time.Millisecond),
		)
		require.ErrorIs(t, err, kvstore.ErrConnectionFailed)
	})
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, kvstore.Healthcheck(nil)(context.Background()), kvstore.ErrHealthcheckFailed)

	mr, client := newRedis(t)
	mr.Close()
	require.ErrorIs(t, kvstore.Healthcheck(client)(context.Background()), kvstore.ErrHealthcheckFailed)
}
