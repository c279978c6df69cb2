package client_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Akilesh-programmer/Blog-Website-GDG/pkg/client"
)

func TestFetcherSuccess(t *testing.T) {
	var f client.Fetcher[string]
	assert.Equal(t, client.StateIdle, f.State())

	done := f.Fetch(context.Background(), func(ctx context.Context) (string, error) {
		return "hello", nil
	})
	<-done

	assert.Equal(t, client.StateSuccess, f.State())
	assert.Equal(t, "hello", f.Data())
	assert.NoError(t, f.Err())
}

func TestFetcherError(t *testing.T) {
	var f client.Fetcher[string]
	boom := errors.New("boom")

	done := f.Fetch(context.Background(), func(ctx context.Context) (string, error) {
		return "", boom
	})
	<-done

	assert.Equal(t, client.StateError, f.State())
	assert.ErrorIs(t, f.Err(), boom)
}

func TestFetcherCancelDiscardsResult(t *testing.T) {
	var f client.Fetcher[string]

	started := make(chan struct{})
	done := f.Fetch(context.Background(), func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "too late", ctx.Err()
	})
	<-started
	f.Cancel()
	<-done

	assert.Equal(t, client.StateIdle, f.State())
	assert.Empty(t, f.Data())
	assert.NoError(t, f.Err())
}

func TestFetcherCancelKeepsPreviousData(t *testing.T) {
	var f client.Fetcher[int]

	<-f.Fetch(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.Equal(t, 42, f.Data())

	started := make(chan struct{})
	done := f.Fetch(context.Background(), func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})
	<-started
	f.Cancel()
	<-done

	assert.Equal(t, 42, f.Data(), "canceling must not clear previously loaded data")
}

func TestFetcherNewFetchCancelsInFlight(t *testing.T) {
	var f client.Fetcher[string]

	firstStarted := make(chan struct{})
	firstCanceled := make(chan struct{})
	firstDone := f.Fetch(context.Background(), func(ctx context.Context) (string, error) {
		close(firstStarted)
		<-ctx.Done()
		close(firstCanceled)
		return "first", nil
	})
	<-firstStarted

	secondDone := f.Fetch(context.Background(), func(ctx context.Context) (string, error) {
		return "second", nil
	})

	select {
	case <-firstCanceled:
	case <-time.After(time.Second):
		t.Fatal("first fetch's context was never canceled")
	}
	<-firstDone
	<-secondDone

	assert.Equal(t, client.StateSuccess, f.State())
	assert.Equal(t, "second", f.Data())
}

// A slow operation that ignores cancellation must still not clobber the
// result of the fetch that superseded it.
func TestFetcherStaleResultIsDiscarded(t *testing.T) {
	var f client.Fetcher[string]

	release := make(chan struct{})
	started := make(chan struct{})
	staleDone := f.Fetch(context.Background(), func(ctx context.Context) (string, error) {
		close(started)
		<-release
		return "stale", nil
	})
	<-started

	<-f.Fetch(context.Background(), func(ctx context.Context) (string, error) {
		return "fresh", nil
	})
	require.Equal(t, "fresh", f.Data())

	close(release)
	<-staleDone

	assert.Equal(t, "fresh", f.Data())
	assert.Equal(t, client.StateSuccess, f.State())
}

func TestFetcherReset(t *testing.T) {
	var f client.Fetcher[string]

	<-f.Fetch(context.Background(), func(ctx context.Context) (string, error) {
		return "loaded", nil
	})
	require.Equal(t, "loaded", f.Data())

	f.Reset()
	assert.Equal(t, client.StateIdle, f.State())
	assert.Empty(t, f.Data())
	assert.NoError(t, f.Err())
}

func TestFetchStateString(t *testing.T) {
	assert.Equal(t, "idle", client.StateIdle.String())
	assert.Equal(t, "loading", client.StateLoading.String())
	assert.Equal(t, "success", client.StateSuccess.String())
	assert.Equal(t, "error", client.StateError.String())
}
