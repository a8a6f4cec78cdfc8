package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishRecordsEvents(t *testing.T) {
	t.Parallel()

	p := New()
	ctx := context.Background()

	id1, err := p.Publish(ctx, "report-events", map[string]string{"report_id": "r-1"})
	require.NoError(t, err)
	id2, err := p.Publish(ctx, "report-events", map[string]string{"report_id": "r-2"})
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	events := p.Events()
	require.Len(t, events, 2)
	require.Equal(t, "report-events", events[0].Topic)
}

func TestPublishRequiresTopic(t *testing.T) {
	t.Parallel()

	p := New()
	_, err := p.Publish(context.Background(), "", nil)
	require.Error(t, err)
	require.Empty(t, p.Events())
}
