package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/testutil"
	"github.com/quarrylabs/quarry/pkg/gateway"
)

func newTestClient(t *testing.T) (*Client, *testutil.GatewayServer) {
	t.Helper()
	g := testutil.NewGatewayServer(t)
	gw := gateway.New(g.URL(), gateway.WithLogger(testutil.NewTestLogger(t)))
	return New(gw, "blob-1", testutil.NewTestLogger(t)), g
}

func TestListContainers(t *testing.T) {
	c, g := newTestClient(t)
	g.CreateContainer("zeta")
	g.CreateContainer("alpha")

	containers, err := c.ListContainers(context.Background())
	require.NoError(t, err)

	require.Len(t, containers, 2)
	assert.Equal(t, "alpha", containers[0].Name)
	assert.Equal(t, "zeta", containers[1].Name)
	assert.False(t, containers[0].CreatedAt.IsZero())
}

func TestCreateContainer(t *testing.T) {
	c, _ := newTestClient(t)

	created, err := c.CreateContainer(context.Background(), "reports")
	require.NoError(t, err)
	assert.Equal(t, "reports", created.Name)

	_, err = c.CreateContainer(context.Background(), "reports")
	require.Error(t, err)

	var be *gateway.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusConflict, be.StatusCode)
}

func TestListObjects(t *testing.T) {
	c, g := newTestClient(t)
	g.PutObject("data", "docs/a.txt", []byte("aa"))
	g.PutObject("data", "docs/sub/b.txt", []byte("bb"))
	g.PutObject("data", "docs/sub/c.txt", []byte("cc"))
	g.PutObject("data", "root.txt", []byte("rr"))

	t.Run("prefix filter", func(t *testing.T) {
		result, err := c.ListObjects(context.Background(), "data", ListOptions{Prefix: "docs/"})
		require.NoError(t, err)

		require.Len(t, result.Objects, 3)
		assert.Equal(t, "docs/a.txt", result.Objects[0].Key)
		assert.Equal(t, "a.txt", result.Objects[0].Name)
		assert.Equal(t, int64(2), result.Objects[0].Size)
		assert.False(t, result.IsTruncated)
	})

	t.Run("delimiter groups folders", func(t *testing.T) {
		result, err := c.ListObjects(context.Background(), "data", ListOptions{Prefix: "docs/", Delimiter: "/"})
		require.NoError(t, err)

		require.Len(t, result.Objects, 1)
		assert.Equal(t, "docs/a.txt", result.Objects[0].Key)
		assert.Equal(t, []string{"docs/sub/"}, result.Prefixes)
	})

	t.Run("pagination by token", func(t *testing.T) {
		first, err := c.ListObjects(context.Background(), "data", ListOptions{Prefix: "docs/", MaxKeys: 2})
		require.NoError(t, err)
		require.Len(t, first.Objects, 2)
		require.True(t, first.IsTruncated)
		require.NotEmpty(t, first.ContinuationToken)

		second, err := c.ListObjects(context.Background(), "data", ListOptions{
			Prefix:            "docs/",
			MaxKeys:           2,
			ContinuationToken: first.ContinuationToken,
		})
		require.NoError(t, err)
		require.Len(t, second.Objects, 1)
		assert.False(t, second.IsTruncated)
		assert.Equal(t, "docs/sub/c.txt", second.Objects[0].Key)
	})

	t.Run("unknown container", func(t *testing.T) {
		_, err := c.ListObjects(context.Background(), "missing", ListOptions{})
		var be *gateway.BackendError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, http.StatusNotFound, be.StatusCode)
	})
}

func TestGetObjectDetails(t *testing.T) {
	c, g := newTestClient(t)
	g.PutObject("data", "docs/a.txt", []byte("hello"))

	details, err := c.GetObjectDetails(context.Background(), "data", "/docs/a.txt")
	require.NoError(t, err)

	assert.Equal(t, "docs/a.txt", details.Key)
	assert.Equal(t, int64(5), details.Size)
	assert.NotEmpty(t, details.StorageClass)

	_, err = c.GetObjectDetails(context.Background(), "data", "nope.txt")
	var be *gateway.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusNotFound, be.StatusCode)
}

func TestGetPresignedURL(t *testing.T) {
	c, g := newTestClient(t)
	g.PutObject("data", "docs/a.txt", []byte("hello"))

	url, err := c.GetPresignedURL(context.Background(), "data", "docs/a.txt", 5*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "expires=300")

	// Sub-second expiries round up to one whole second.
	url, err = c.GetPresignedURL(context.Background(), "data", "docs/a.txt", 500*time.Millisecond)
	require.NoError(t, err)
	assert.Contains(t, url, "expires=1")
}

func TestUploadObject(t *testing.T) {
	c, g := newTestClient(t)
	g.CreateContainer("data")

	err := c.UploadObject(context.Background(), "data", "/reports/2026/q2.csv", strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)

	// The leading slash never reaches the wire.
	assert.True(t, g.HasObject("data", "reports/2026/q2.csv"))
	assert.False(t, g.HasObject("data", "/reports/2026/q2.csv"))
}

func TestDeleteObjects(t *testing.T) {
	c, g := newTestClient(t)
	g.PutObject("data", "a.txt", []byte("a"))
	g.PutObject("data", "b.txt", []byte("b"))
	g.PutObject("data", "c.txt", []byte("c"))

	err := c.DeleteObjects(context.Background(), "data", []string{"/a.txt", "b.txt"})
	require.NoError(t, err)

	assert.False(t, g.HasObject("data", "a.txt"))
	assert.False(t, g.HasObject("data", "b.txt"))
	assert.True(t, g.HasObject("data", "c.txt"))
}

func TestDeletePrefix(t *testing.T) {
	t.Run("paginates and deletes everything once", func(t *testing.T) {
		c, g := newTestClient(t)
		g.SetPageSize(100)
		for i := 0; i < 150; i++ {
			g.PutObject("data", fmt.Sprintf("logs/%03d.log", i), []byte("x"))
		}
		g.PutObject("data", "keep/stay.txt", []byte("x"))

		deleted, err := c.DeletePrefix(context.Background(), "data", "logs/")
		require.NoError(t, err)

		assert.Equal(t, 150, deleted)
		assert.GreaterOrEqual(t, g.ListObjectCalls(), 2)
		assert.True(t, g.HasObject("data", "keep/stay.txt"))
		assert.Equal(t, 1, g.ObjectCount("data"))

		keys := g.DeletedKeys()
		assert.Len(t, keys, 150)
		unique := make(map[string]bool, len(keys))
		for _, k := range keys {
			unique[k] = true
		}
		assert.Len(t, unique, 150)
	})

	t.Run("nothing under prefix", func(t *testing.T) {
		c, g := newTestClient(t)
		g.CreateContainer("data")

		deleted, err := c.DeletePrefix(context.Background(), "data", "ghost/")
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})

	t.Run("strips leading slash from prefix", func(t *testing.T) {
		c, g := newTestClient(t)
		g.PutObject("data", "tmp/a", []byte("x"))

		deleted, err := c.DeletePrefix(context.Background(), "data", "/tmp/")
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
	})

	t.Run("error surfaces count so far", func(t *testing.T) {
		c, _ := newTestClient(t)

		deleted, err := c.DeletePrefix(context.Background(), "missing", "x/")
		require.Error(t, err)
		assert.Zero(t, deleted)
	})
}
