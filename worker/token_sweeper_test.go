package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"uptask/models"
	"uptask/store"
	"uptask/testutil"
)

type countingStore struct {
	store.TokenStore
	purges  int32
	removed int64
	err     error
}

func (s *countingStore) PurgeExpired(ctx context.Context) (int64, error) {
	atomic.AddInt32(&s.purges, 1)
	return s.removed, s.err
}

func TestTokenSweeper_Sweep(t *testing.T) {
	testutil.Configure(t)
	db := testutil.NewDB(t)
	tokens := store.NewGormTokenStore(db, 10*time.Minute)

	_, err := tokens.Issue(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.ConfirmationToken{}).
		Where("1 = 1").
		Update("expires_at", time.Now().Add(-time.Minute)).Error)
	live, err := tokens.Issue(context.Background(), 2)
	require.NoError(t, err)

	sweeper := NewTokenSweeper(tokens, time.Minute, logrus.NewEntry(logrus.New()))
	assert.EqualValues(t, 1, sweeper.Sweep(context.Background()))

	userID, err := tokens.Validate(context.Background(), live)
	require.NoError(t, err)
	assert.EqualValues(t, 2, userID)
}

func TestTokenSweeper_Sweep_Error(t *testing.T) {
	s := &countingStore{err: errors.New("db down")}
	sweeper := NewTokenSweeper(s, time.Minute, logrus.NewEntry(logrus.New()))

	assert.Zero(t, sweeper.Sweep(context.Background()))
	assert.EqualValues(t, 1, atomic.LoadInt32(&s.purges))
}

func TestTokenSweeper_StartStopsOnCancel(t *testing.T) {
	s := &countingStore{removed: 3}
	sweeper := NewTokenSweeper(s, 10*time.Millisecond, logrus.NewEntry(logrus.New()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&s.purges) >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestNewTokenSweeper_DefaultInterval(t *testing.T) {
	sweeper := NewTokenSweeper(&countingStore{}, 0, logrus.NewEntry(logrus.New()))
	assert.Equal(t, time.Minute, sweeper.Interval)
}
