package dummy

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/veedubyou/stem-separator/src/shared/cloud_storage/store"
)

var _ store.FileStore = &FileStore{}

type FileStore struct {
	Unavailable bool

	lock  sync.Mutex
	files map[string][]byte
}

func NewDummyFileStore() *FileStore {
	return &FileStore{
		files: map[string][]byte{},
	}
}

func (f *FileStore) GetFile(_ context.Context, fileURL string) ([]byte, error) {
	if f.Unavailable {
		return nil, NetworkFailure
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	contents, ok := f.files[fileURL]
	if !ok {
		return nil, errors.Newf("no file at %s", fileURL)
	}

	return contents, nil
}

func (f *FileStore) WriteFile(_ context.Context, fileURL string, fileContent []byte) error {
	if f.Unavailable {
		return NetworkFailure
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	f.files[fileURL] = append([]byte{}, fileContent...)
	return nil
}

func (f *FileStore) URLs() []string {
	f.lock.Lock()
	defer f.lock.Unlock()

	urls := []string{}
	for url := range f.files {
		urls = append(urls, url)
	}

	return urls
}
