package config

import "github.com/cockroachdb/errors"

// CloudStorage is optional everywhere, a nil value means stems stay on local disk only
type CloudStorage interface {
	GetStorageHost() string
	GetBucket() string
	Validate() error
}

var _ CloudStorage = ProdCloudStorage{}

type ProdCloudStorage struct {
	StorageHost string
	SecretKey   string
	BucketName  string
}

func (p ProdCloudStorage) GetStorageHost() string {
	return p.StorageHost
}

func (p ProdCloudStorage) GetBucket() string {
	return p.BucketName
}

func (p ProdCloudStorage) Validate() error {
	switch {
	case p.StorageHost == "":
		return errors.New("cloud storage host is empty")
	case p.BucketName == "":
		return errors.New("cloud storage bucket is empty")
	case p.SecretKey == "":
		return errors.New("cloud storage secret key is empty")
	}

	return nil
}

var _ CloudStorage = LocalCloudStorage{}

// LocalCloudStorage points at an emulator such as fake-gcs-server
type LocalCloudStorage struct {
	StorageHost  string
	HostEndpoint string
	BucketName   string
}

func (l LocalCloudStorage) GetStorageHost() string {
	return l.StorageHost
}

func (l LocalCloudStorage) GetBucket() string {
	return l.BucketName
}

func (l LocalCloudStorage) Validate() error {
	switch {
	case l.StorageHost == "":
		return errors.New("cloud storage host is empty")
	case l.HostEndpoint == "":
		return errors.New("cloud storage endpoint is empty")
	case l.BucketName == "":
		return errors.New("cloud storage bucket is empty")
	}

	return nil
}
