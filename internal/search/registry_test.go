package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry(testConfig(newFakeBackend(), newFakeClock()))
	t.Cleanup(reg.Close)

	sess := reg.Create(true)
	assert.True(t, sess.Snapshot().SpeechSupported)
	_, isRelay := sess.Speech().(*Relay)
	assert.True(t, isRelay)

	got, err := reg.Get(sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, got)

	_, err = reg.Get("not-a-uuid")
	require.ErrorIs(t, err, ErrSessionNotFound)

	assert.True(t, reg.Remove(sess.ID()))
	assert.False(t, reg.Remove(sess.ID()))
	_, err = reg.Get(sess.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegistryWithoutSpeech(t *testing.T) {
	reg := NewRegistry(testConfig(newFakeBackend(), newFakeClock()))
	t.Cleanup(reg.Close)

	sess := reg.Create(false)
	assert.False(t, sess.Snapshot().SpeechSupported)
	assert.Equal(t, Unavailable, sess.Speech())
}

func TestSweepRemovesIdleUnsubscribedSessions(t *testing.T) {
	clock := newFakeClock()
	reg := NewRegistry(testConfig(newFakeBackend(), clock))
	t.Cleanup(reg.Close)

	idle := reg.Create(false)
	watched := reg.Create(false)
	_, unsubscribe := watched.Subscribe()
	defer unsubscribe()

	clock.Advance(5 * time.Minute)
	active := reg.Create(false)
	assert.Equal(t, 0, reg.Sweep(10*time.Minute))

	clock.Advance(6 * time.Minute)
	assert.Equal(t, 1, reg.Sweep(10*time.Minute))

	_, err := reg.Get(idle.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
	_, err = reg.Get(watched.ID())
	require.NoError(t, err)
	_, err = reg.Get(active.ID())
	require.NoError(t, err)
}

func TestRunClosesSessionsOnShutdown(t *testing.T) {
	reg := NewRegistry(testConfig(newFakeBackend(), newFakeClock()))
	sess := reg.Create(false)
	ch, _ := sess.Subscribe()
	<-ch

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx, time.Hour, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("registry did not stop")
	}
	assert.Equal(t, 0, reg.Len())
	_, ok := <-ch
	assert.False(t, ok)
}
