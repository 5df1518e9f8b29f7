package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna/internal/domain"
)

func newTestLobby(t *testing.T, reg Registry, leader domain.UserID, timeout time.Duration) *Lobby {
	t.Helper()
	l, err := NewLobby(context.Background(), LobbyConfig{
		Name:     "test",
		Leader:   leader,
		Timeout:  timeout,
		Registry: reg,
	})
	require.NoError(t, err)
	return l
}

func inRegistry(t *testing.T, reg Registry, u domain.UserID) bool {
	t.Helper()
	ok, err := reg.Contains(context.Background(), u)
	require.NoError(t, err)
	return ok
}

func TestLobbyTimeoutWithOnlyLeaderFails(t *testing.T) {
	reg := NewMemoryRegistry()
	rec := &fakeRecorder{}
	l, err := NewLobby(context.Background(), LobbyConfig{Leader: alice, Timeout: 20 * time.Millisecond, Registry: reg, Recorder: rec})
	require.NoError(t, err)
	assert.True(t, inRegistry(t, reg, alice))

	res, err := l.Await(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.LobbyNormal, res.ExitCode)
	assert.Equal(t, []domain.UserID{alice}, res.Members)
	assert.True(t, res.Failed())
	assert.False(t, res.Started())
	assert.False(t, inRegistry(t, reg, alice))
	assert.Equal(t, []string{"lobby_created:101"}, rec.Calls())
}

func TestLobbyTimeoutWithMembersStarts(t *testing.T) {
	reg := NewMemoryRegistry()
	l := newTestLobby(t, reg, alice, 20*time.Millisecond)
	require.NoError(t, l.Join(context.Background(), bob))

	res, err := l.Await(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Started())
	assert.False(t, res.Failed())
	assert.Equal(t, []domain.UserID{alice, bob}, res.Members)
	assert.False(t, inRegistry(t, reg, bob))
}

func TestLobbyCreateRefusesBusyLeader(t *testing.T) {
	reg := NewMemoryRegistry()
	newTestLobby(t, reg, alice, time.Minute)

	_, err := NewLobby(context.Background(), LobbyConfig{Leader: alice, Registry: reg})
	assert.ErrorIs(t, err, ErrAlreadyInLobby)
}

func TestLobbyCreateRollsBackOnRecorderError(t *testing.T) {
	reg := NewMemoryRegistry()
	_, err := NewLobby(context.Background(), LobbyConfig{Leader: alice, Registry: reg, Recorder: &fakeRecorder{failOn: "lobby_created"}})
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, inRegistry(t, reg, alice))
}

func TestLobbyJoin(t *testing.T) {
	reg := NewMemoryRegistry()
	first := newTestLobby(t, reg, alice, time.Minute)
	second := newTestLobby(t, reg, carol, time.Minute)
	ctx := context.Background()

	require.NoError(t, first.Join(ctx, bob))
	assert.ErrorIs(t, first.Join(ctx, bob), ErrAlreadyJoined)
	assert.ErrorIs(t, first.Join(ctx, alice), ErrAlreadyJoined)
	assert.ErrorIs(t, second.Join(ctx, bob), ErrAlreadyInLobby)
	assert.Equal(t, []domain.UserID{carol}, second.Members())

	id, ok := reg.LobbyOf(bob)
	require.True(t, ok)
	assert.Equal(t, first.ID(), id)
}

func TestLobbyLeave(t *testing.T) {
	reg := NewMemoryRegistry()
	l := newTestLobby(t, reg, alice, time.Minute)
	ctx := context.Background()

	require.NoError(t, l.Join(ctx, bob))
	require.NoError(t, l.Leave(ctx, bob))
	assert.False(t, inRegistry(t, reg, bob))
	assert.Equal(t, []domain.UserID{alice}, l.Members())
	assert.ErrorIs(t, l.Leave(ctx, bob), ErrNotInLobby)

	select {
	case <-l.Done():
		t.Fatal("lobby resolved after a member left")
	default:
	}

	// free to join again
	require.NoError(t, l.Join(ctx, bob))
}

func TestLobbyLeaderLeavesResolvesImmediately(t *testing.T) {
	reg := NewMemoryRegistry()
	l := newTestLobby(t, reg, alice, time.Hour)
	ctx := context.Background()
	require.NoError(t, l.Join(ctx, bob))
	require.NoError(t, l.Join(ctx, carol))

	start := time.Now()
	require.NoError(t, l.Leave(ctx, alice))

	res, err := l.Await(ctx)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, domain.LobbyLeaderLeft, res.ExitCode)
	assert.False(t, res.Started())
	assert.False(t, res.Failed())
	for _, u := range []domain.UserID{alice, bob, carol} {
		assert.False(t, inRegistry(t, reg, u))
	}
	assert.ErrorIs(t, l.Join(ctx, dave), ErrLobbyClosed)
}

func TestLobbyStartEarly(t *testing.T) {
	reg := NewMemoryRegistry()
	l := newTestLobby(t, reg, alice, time.Hour)
	ctx := context.Background()

	assert.ErrorIs(t, l.StartEarly(ctx, alice), ErrNotEnoughMembers)
	require.NoError(t, l.Join(ctx, bob))
	assert.ErrorIs(t, l.StartEarly(ctx, bob), ErrNotLeader)
	assert.True(t, l.Snapshot().CanStartEarly)

	require.NoError(t, l.StartEarly(ctx, alice))
	res, err := l.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.LobbyLeaderSkipped, res.ExitCode)
	assert.True(t, res.Started())
	assert.False(t, inRegistry(t, reg, bob))

	assert.ErrorIs(t, l.StartEarly(ctx, alice), ErrLobbyClosed)
	assert.ErrorIs(t, l.Leave(ctx, alice), ErrLobbyClosed)
	assert.True(t, l.Snapshot().Closed)
}

func TestLobbyAwaitCancelled(t *testing.T) {
	reg := NewMemoryRegistry()
	l := newTestLobby(t, reg, alice, time.Hour)
	require.NoError(t, l.Join(context.Background(), bob))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := l.Await(ctx)
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.False(t, res.Started())
	assert.False(t, inRegistry(t, reg, alice))
}

func TestLobbyConcurrentJoinsAcrossLobbies(t *testing.T) {
	reg := NewMemoryRegistry()
	lobbies := []*Lobby{
		newTestLobby(t, reg, 1, time.Minute),
		newTestLobby(t, reg, 2, time.Minute),
		newTestLobby(t, reg, 3, time.Minute),
	}

	var wg sync.WaitGroup
	for u := domain.UserID(10); u < 60; u++ {
		for _, l := range lobbies {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = l.Join(context.Background(), u)
			}()
		}
	}
	wg.Wait()

	seen := map[domain.UserID]int{}
	for _, l := range lobbies {
		for _, m := range l.Members() {
			seen[m]++
			id, ok := reg.LobbyOf(m)
			require.True(t, ok)
			assert.Equal(t, l.ID(), id)
		}
	}
	for u, n := range seen {
		assert.Equal(t, 1, n, "user %d sits in %d lobbies", u, n)
	}
	assert.Len(t, seen, 53)
}

func TestLobbyStartEarlyRacingLeaveNeverStartsAlone(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 200; i++ {
		reg := NewMemoryRegistry()
		l := newTestLobby(t, reg, alice, time.Hour)
		require.NoError(t, l.Join(ctx, bob))

		var wg sync.WaitGroup
		var startErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			startErr = l.StartEarly(ctx, alice)
		}()
		go func() {
			defer wg.Done()
			_ = l.Leave(ctx, bob)
		}()
		wg.Wait()

		if startErr != nil {
			assert.ErrorIs(t, startErr, ErrNotEnoughMembers)
			continue
		}
		res, err := l.Await(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.LobbyLeaderSkipped, res.ExitCode)
		require.Len(t, res.Members, 2, "iteration %d", i)
		assert.True(t, res.Started())
	}
}
