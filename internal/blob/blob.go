// Package blob stores generated report artifacts. It offers a minimal
// S3-like surface with filesystem, S3 and in-memory backends selected via
// environment variables.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Driver identifies a concrete blob storage backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local filesystem (default)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
)

// Environment variables controlling backend selection.
const (
	EnvDriver      = "MEDGHOR_BLOB_DRIVER"
	EnvFSRoot      = "MEDGHOR_BLOB_FS_ROOT"
	EnvS3Bucket    = "MEDGHOR_BLOB_S3_BUCKET"
	EnvS3Region    = "MEDGHOR_BLOB_S3_REGION"
	EnvS3Endpoint  = "MEDGHOR_BLOB_S3_ENDPOINT"
	EnvS3PathStyle = "MEDGHOR_BLOB_S3_PATH_STYLE"
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string            // MIME type, optional
	Metadata    map[string]string // user metadata, small flat key-value
}

// Info describes a stored blob.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is the storage surface consumed by the report worker. Keys are
// write-once: Put fails if the key already exists.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get returns blob contents and metadata. Missing keys yield an error
	// matching errors.Is(err, os.ErrNotExist).
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Head returns metadata only.
	Head(ctx context.Context, key string) (Info, error)
	// Delete removes a blob. Returns (false, nil) when the key was absent.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns blobs whose key has the given prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// ErrExists is returned by Put when the key is already taken.
var ErrExists = errors.New("blob: key already exists")

// Open selects a Store implementation from the environment:
//
//	MEDGHOR_BLOB_DRIVER: fs|s3|memory (default fs)
//	MEDGHOR_BLOB_FS_ROOT: directory root when driver=fs (default ./reportdata)
//	(S3 variables documented in s3.go)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv(EnvDriver)
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv(EnvFSRoot))
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}

func cloneMetadata(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
