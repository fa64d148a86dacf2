package credential

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"gitlab-relay/internal/model"
)

// FileStore persists the credential collection as a JSON file.
type FileStore struct {
	fs   afero.Fs
	path string
}

func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

// Load reads the collection. A missing file means nothing persisted yet.
func (f *FileStore) Load() ([]model.Credential, error) {
	data, err := afero.ReadFile(f.fs, f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	var records []model.Credential
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", f.path, err)
	}
	if records == nil {
		records = []model.Credential{}
	}
	return records, nil
}

// Save writes the whole collection. The file holds tokens, hence 0600.
func (f *FileStore) Save(records []model.Credential) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	if err := afero.WriteFile(f.fs, f.path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}
