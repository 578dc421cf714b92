package store

import (
	"context"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/veedubyou/stem-separator/src/shared/lib/cerr"
	"google.golang.org/api/option"
)

var _ FileStore = GoogleFileStore{}

type FileStore interface {
	GetFile(ctx context.Context, fileURL string) ([]byte, error)
	WriteFile(ctx context.Context, fileURL string, fileContent []byte) error
}

func NewGoogleFileStore(storageHost string, opts ...option.ClientOption) (GoogleFileStore, error) {
	client, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return GoogleFileStore{}, cerr.Wrap(err).Error("Failed to create google storage client")
	}

	return NewGoogleFileStoreFromClient(storageHost, client), nil
}

func NewGoogleFileStoreFromClient(storageHost string, client *storage.Client) GoogleFileStore {
	return GoogleFileStore{
		storageHost: strings.TrimSuffix(storageHost, "/"),
		client:      client,
	}
}

// GoogleFileStore addresses objects by URL, <host>/<bucket>/<object path>
type GoogleFileStore struct {
	storageHost string
	client      *storage.Client
}

func (g GoogleFileStore) GetFile(ctx context.Context, fileURL string) ([]byte, error) {
	bucketName, objectName, err := g.parseURL(fileURL)
	if err != nil {
		return nil, cerr.Wrap(err).Error("Failed to parse file URL")
	}

	errctx := cerr.Field("bucket", bucketName).Field("object", objectName)

	reader, err := g.client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, errctx.Wrap(err).Error("Failed to open object reader")
	}
	defer reader.Close()

	contents, err := io.ReadAll(reader)
	if err != nil {
		return nil, errctx.Wrap(err).Error("Failed to read object")
	}

	return contents, nil
}

func (g GoogleFileStore) WriteFile(ctx context.Context, fileURL string, fileContent []byte) error {
	bucketName, objectName, err := g.parseURL(fileURL)
	if err != nil {
		return cerr.Wrap(err).Error("Failed to parse file URL")
	}

	errctx := cerr.Field("bucket", bucketName).Field("object", objectName)

	writer := g.client.Bucket(bucketName).Object(objectName).NewWriter(ctx)
	if _, err := writer.Write(fileContent); err != nil {
		_ = writer.Close()
		return errctx.Wrap(err).Error("Failed to write object")
	}

	if err := writer.Close(); err != nil {
		return errctx.Wrap(err).Error("Failed to finalize object")
	}

	return nil
}

func (g GoogleFileStore) parseURL(fileURL string) (string, string, error) {
	errctx := cerr.Field("file_url", fileURL).Field("storage_host", g.storageHost)

	prefix := g.storageHost + "/"
	if !strings.HasPrefix(fileURL, prefix) {
		return "", "", errctx.Error("File URL doesn't belong to the storage host")
	}

	bucketName, objectName, found := strings.Cut(strings.TrimPrefix(fileURL, prefix), "/")
	if !found || bucketName == "" || objectName == "" {
		return "", "", errctx.Error("File URL is missing a bucket or object name")
	}

	return bucketName, objectName, nil
}
