// Package storage is the object-storage client. Provider differences
// (S3, Azure) resolve behind the gateway; this side only speaks the
// container/object HTTP contract.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/quarrylabs/quarry/pkg/core"
	"github.com/quarrylabs/quarry/pkg/gateway"
)

// Client issues storage commands for one connection.
type Client struct {
	gateway      *gateway.Client
	connectionID string
	logger       *slog.Logger
}

// New creates a storage client. If logger is nil, a discard logger is used.
func New(gw *gateway.Client, connectionID string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{gateway: gw, connectionID: connectionID, logger: logger}
}

// ListOptions narrows an object listing.
type ListOptions struct {
	// Prefix filters keys by leading path.
	Prefix string
	// Delimiter groups keys into virtual folders ("/" for path-style browsing).
	Delimiter string
	// MaxKeys caps the page size; 0 lets the backend choose.
	MaxKeys int
	// ContinuationToken resumes a truncated listing.
	ContinuationToken string
}

type listObjectsRequest struct {
	Container         string `json:"container"`
	Prefix            string `json:"prefix,omitempty"`
	Delimiter         string `json:"delimiter,omitempty"`
	MaxKeys           int    `json:"maxKeys,omitempty"`
	ContinuationToken string `json:"continuationToken,omitempty"`
}

// ListContainers lists the connection's containers.
func (c *Client) ListContainers(ctx context.Context) ([]core.Container, error) {
	var containers []core.Container
	if err := c.gateway.PostJSON(ctx, c.path("containers"), nil, &containers); err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	return containers, nil
}

// CreateContainer creates a container.
func (c *Client) CreateContainer(ctx context.Context, name string) (*core.Container, error) {
	var created core.Container
	body := map[string]string{"name": name}
	if err := c.gateway.PostJSON(ctx, c.path("containers/create"), body, &created); err != nil {
		return nil, fmt.Errorf("create container %q: %w", name, err)
	}
	return &created, nil
}

// ListObjects fetches one page of a container listing.
func (c *Client) ListObjects(ctx context.Context, container string, opts ListOptions) (*core.ListObjectsResult, error) {
	req := listObjectsRequest{
		Container:         container,
		Prefix:            normalizeKey(opts.Prefix),
		Delimiter:         opts.Delimiter,
		MaxKeys:           opts.MaxKeys,
		ContinuationToken: opts.ContinuationToken,
	}
	var result core.ListObjectsResult
	if err := c.gateway.PostJSON(ctx, c.path("objects"), req, &result); err != nil {
		return nil, fmt.Errorf("list objects in %q: %w", container, err)
	}
	return &result, nil
}

// GetObjectDetails fetches one object's full metadata.
func (c *Client) GetObjectDetails(ctx context.Context, container, key string) (*core.ObjectDetails, error) {
	key = normalizeKey(key)
	body := map[string]string{"container": container, "key": key}
	var details core.ObjectDetails
	if err := c.gateway.PostJSON(ctx, c.path("object/details"), body, &details); err != nil {
		return nil, fmt.Errorf("object details for %q: %w", key, err)
	}
	return &details, nil
}

// GetPresignedURL returns a time-limited download URL. The expiry goes over
// the wire in whole seconds; anything under a second rounds up to one.
func (c *Client) GetPresignedURL(ctx context.Context, container, key string, expiresIn time.Duration) (string, error) {
	key = normalizeKey(key)
	secs := int(expiresIn / time.Second)
	if secs < 1 {
		secs = 1
	}

	body := map[string]any{"container": container, "key": key, "expiresIn": secs}
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.gateway.PostJSON(ctx, c.path("object/presign"), body, &resp); err != nil {
		return "", fmt.Errorf("presign %q: %w", key, err)
	}
	return resp.URL, nil
}

// UploadObject streams r to the given key.
func (c *Client) UploadObject(ctx context.Context, container, key string, r io.Reader) error {
	key = normalizeKey(key)
	fields := map[string]string{"container": container, "key": key}
	if err := c.gateway.PostMultipart(ctx, c.path("upload"), fields, "file", path.Base(key), r, nil); err != nil {
		return fmt.Errorf("upload %q: %w", key, err)
	}
	return nil
}

// DeleteObjects batch-deletes the given keys.
func (c *Client) DeleteObjects(ctx context.Context, container string, keys []string) error {
	normalized := make([]string, len(keys))
	for i, k := range keys {
		normalized[i] = normalizeKey(k)
	}

	body := map[string]any{"container": container, "keys": normalized}
	if err := c.gateway.PostJSON(ctx, c.path("object/delete"), body, nil); err != nil {
		return fmt.Errorf("delete %d objects: %w", len(keys), err)
	}
	return nil
}

// DeletePrefix deletes every object under prefix and returns how many went.
// It pages with no delimiter so nested "folders" are swept too, and carries
// each page's continuation token into the next listing; re-listing from the
// start would re-walk deleted ground on slow-consistency backends. An error
// mid-way returns the count deleted before it.
func (c *Client) DeletePrefix(ctx context.Context, container, prefix string) (int, error) {
	prefix = normalizeKey(prefix)

	deleted := 0
	token := ""
	for {
		page, err := c.ListObjects(ctx, container, ListOptions{
			Prefix:            prefix,
			ContinuationToken: token,
		})
		if err != nil {
			return deleted, err
		}

		if len(page.Objects) > 0 {
			keys := make([]string, 0, len(page.Objects))
			for _, o := range page.Objects {
				keys = append(keys, o.Key)
			}
			if err := c.DeleteObjects(ctx, container, keys); err != nil {
				return deleted, err
			}
			deleted += len(keys)
			c.logger.Debug("deleted object batch",
				"container", container, "prefix", prefix,
				"batch", len(keys), "total", deleted)
		}

		if !page.IsTruncated {
			return deleted, nil
		}
		if page.ContinuationToken == "" && len(page.Objects) == 0 {
			// A truncated page with no token and no objects can never
			// make progress.
			return deleted, fmt.Errorf("listing of %q truncated without continuation token", prefix)
		}
		token = page.ContinuationToken
	}
}

func (c *Client) path(suffix string) string {
	return fmt.Sprintf("/storage/%s/%s", c.connectionID, suffix)
}

// normalizeKey strips leading slashes; keys and prefixes are
// container-relative on the wire.
func normalizeKey(key string) string {
	return strings.TrimLeft(key, "/")
}
