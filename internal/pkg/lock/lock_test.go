package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SecondAcquireSkips(t *testing.T) {
	l := NewLocal()

	release, ok, err := l.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, l.Running())

	_, ok, err = l.TryAcquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	release()
	release()
	assert.False(t, l.Running())

	_, ok, _ = l.TryAcquire(context.Background())
	assert.True(t, ok)
}

func TestRedis_AcquireAndRelease(t *testing.T) {
	db, mock := redismock.NewClientMock()
	r := NewRedisWithClient(db, "scraper:pass-lock", time.Minute).WithToken(func() string { return "tok-1" })

	mock.ExpectSetNX("scraper:pass-lock", "tok-1", time.Minute).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"scraper:pass-lock"}, "tok-1").SetVal(int64(1))

	release, ok, err := r.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	release()

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_HeldElsewhere(t *testing.T) {
	db, mock := redismock.NewClientMock()
	r := NewRedisWithClient(db, "k", time.Minute).WithToken(func() string { return "tok-2" })

	mock.ExpectSetNX("k", "tok-2", time.Minute).SetVal(false)

	release, ok, err := r.TryAcquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, release)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_Error(t *testing.T) {
	db, mock := redismock.NewClientMock()
	r := NewRedisWithClient(db, "k", time.Minute).WithToken(func() string { return "tok-3" })

	mock.ExpectSetNX("k", "tok-3", time.Minute).SetErr(errors.New("connection refused"))

	_, ok, err := r.TryAcquire(context.Background())
	require.Error(t, err)
	assert.False(t, ok)
}

type refusingGuard struct{}

func (refusingGuard) TryAcquire(context.Context) (func(), bool, error) { return nil, false, nil }

func TestChain_ReleasesHeldGuardsOnRefusal(t *testing.T) {
	local := NewLocal()
	g := Chain(local, refusingGuard{})

	_, ok, err := g.TryAcquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, local.Running())
}

func TestChain_AcquiresAll(t *testing.T) {
	a, b := NewLocal(), NewLocal()
	g := Chain(a, nil, b)

	release, ok, err := g.TryAcquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, a.Running())
	assert.True(t, b.Running())

	release()
	assert.False(t, a.Running())
	assert.False(t, b.Running())
}
