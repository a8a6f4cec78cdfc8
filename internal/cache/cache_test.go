package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/resodo/contact-crawler/internal/report"
)

func TestPutGet(t *testing.T) {
	t.Parallel()

	c := New(Config{MaxEntries: 4, TTL: time.Minute})
	key := Key("https://acme.test", "refund my order")

	_, ok := c.Get(key)
	require.False(t, ok)

	c.Put(key, report.Report{ID: "r-1", Status: report.StatusSucceeded})
	got, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, "r-1", got.ID)
	require.Equal(t, 1, c.Len())
}

func TestKeyDistinguishesResolution(t *testing.T) {
	t.Parallel()

	require.NotEqual(t,
		Key("https://acme.test", "refund"),
		Key("https://acme.test", "replacement"))
}

func TestEntriesExpire(t *testing.T) {
	t.Parallel()

	c := New(Config{MaxEntries: 4, TTL: 20 * time.Millisecond})
	key := Key("https://acme.test", "refund my order")
	c.Put(key, report.Report{ID: "r-1"})

	time.Sleep(60 * time.Millisecond)
	_, ok := c.Get(key)
	require.False(t, ok)
}

func TestPurge(t *testing.T) {
	t.Parallel()

	c := New(Config{MaxEntries: 4, TTL: time.Minute})
	c.Put(Key("a", "b"), report.Report{ID: "r-1"})
	c.Purge()
	require.Equal(t, 0, c.Len())
}
