package blob

import (
	"context"
	"testing"
)

func TestOpenMemoryDriver(t *testing.T) {
	t.Setenv("TRACKCORE_BLOB_DRIVER", "memory")
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}
}

func TestOpenFilesystemDriverDefault(t *testing.T) {
	t.Setenv("TRACKCORE_BLOB_DRIVER", "")
	t.Setenv("TRACKCORE_BLOB_FS_ROOT", t.TempDir())
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Setenv("TRACKCORE_BLOB_DRIVER", "ftp")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("unknown driver accepted")
	}
}

func TestOpenS3RequiresBucket(t *testing.T) {
	t.Setenv("TRACKCORE_BLOB_DRIVER", "s3")
	t.Setenv("TRACKCORE_BLOB_S3_BUCKET", "")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("s3 driver without bucket accepted")
	}
}
