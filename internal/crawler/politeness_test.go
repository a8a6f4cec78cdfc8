package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPolitenessWait(t *testing.T) {
	t.Parallel()

	p := NewPoliteness(100, 1)
	ctx := context.Background()
	require.NoError(t, p.Wait(ctx, "https://acme.test/a"))
	require.NoError(t, p.Wait(ctx, "https://other.test/b"))
}

func TestPolitenessWaitCanceled(t *testing.T) {
	t.Parallel()

	// One request per 10s with burst 1: the second wait must block until
	// the context gives up.
	p := NewPoliteness(0.1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Wait(ctx, "https://acme.test/"))
	err := p.Wait(ctx, "https://acme.test/")
	require.Error(t, err)
}
