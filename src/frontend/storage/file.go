package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// FileStore keeps all keys in one JSON object on disk. Every write rewrites
// the file through a temporary file and a rename. A file that does not decode
// is moved aside to path+".corrupt" and the store continues empty.
type FileStore struct {
	mu   sync.Mutex
	path string
	log  logrus.FieldLogger
}

func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("file store: path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "file store: create directory")
	}
	return &FileStore{path: path, log: logrus.StandardLogger().WithField("component", "storage")}, nil
}

func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return err
	}
	data[key] = value
	return f.save(data)
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return f.save(data)
}

func (f *FileStore) load() (map[string]string, error) {
	b, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "file store: read %s", f.path)
	}
	data := map[string]string{}
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		aside := f.path + ".corrupt"
		log := f.log.WithFields(logrus.Fields{"path": f.path, "error": err})
		if rerr := os.Rename(f.path, aside); rerr != nil {
			log.WithField("rename_error", rerr).Warn("store file does not decode; starting empty")
		} else {
			log.WithField("moved_to", aside).Warn("store file does not decode; moved aside, starting empty")
		}
		return map[string]string{}, nil
	}
	return data, nil
}

func (f *FileStore) save(data map[string]string) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "file store: encode")
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".store-*")
	if err != nil {
		return errors.Wrap(err, "file store: create temp file")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return errors.Wrap(err, "file store: write")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "file store: close")
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return errors.Wrap(err, "file store: chmod")
	}
	return errors.Wrap(os.Rename(tmp.Name(), f.path), "file store: rename")
}
