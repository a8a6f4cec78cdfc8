package pubsub

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishRequiresClient(t *testing.T) {
	t.Parallel()

	p := New(nil)
	_, err := p.Publish(context.Background(), "events", map[string]string{"k": "v"})
	require.Error(t, err)
}

func TestCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	p := New(nil)
	p.Close()
	p.Close()
	require.Empty(t, p.topics)
}
