package core

import "time"

// StorageObject describes one object (or virtual folder) in a container.
type StorageObject struct {
	// Key is the full object path within the container.
	Key string `json:"key"`
	// Name is the display leaf (last path segment).
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	ETag         string    `json:"etag,omitempty"`
	ContentType  string    `json:"contentType,omitempty"`
	IsFolder     bool      `json:"isFolder"`
}

// ListObjectsResult is one page of an object listing.
// Prefixes holds the virtual folders grouped under the request's delimiter.
type ListObjectsResult struct {
	Objects           []StorageObject `json:"objects"`
	Prefixes          []string        `json:"prefixes"`
	IsTruncated       bool            `json:"isTruncated"`
	ContinuationToken string          `json:"continuationToken,omitempty"`
}

// Container is a top-level storage namespace (S3 bucket, Azure container).
type Container struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// ObjectDetails is the full metadata view of a single object.
// The provider-specific fields are populated only for the matching provider
// and omitted otherwise: StorageClass/VersionID for S3, AccessTier/BlobType
// for Azure.
type ObjectDetails struct {
	StorageObject
	Metadata     map[string]string `json:"metadata,omitempty"`
	StorageClass string            `json:"storageClass,omitempty"`
	VersionID    string            `json:"versionId,omitempty"`
	AccessTier   string            `json:"accessTier,omitempty"`
	BlobType     string            `json:"blobType,omitempty"`
}
