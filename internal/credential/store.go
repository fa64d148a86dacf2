package credential

import (
	"fmt"
	"sync"

	"gitlab-relay/internal/model"
)

// Persistence is the backing load/save collaborator. Load returning a nil
// collection with a nil error means nothing has been persisted yet.
type Persistence interface {
	Load() ([]model.Credential, error)
	Save([]model.Credential) error
}

// Store owns the credential collection, uniquely keyed by login, in the
// order records were first added. The backing store is a single flushed
// blob, so every upsert+save pair runs as one critical section under mu.
type Store struct {
	mu      sync.Mutex
	backend Persistence

	records []model.Credential
	index   map[string]int
	loaded  bool
}

func New(backend Persistence) *Store {
	return &Store{
		backend: backend,
		index:   make(map[string]int),
	}
}

// init lazily loads the collection on first touch. When the backend holds
// nothing yet, an empty collection is persisted immediately so the store is
// never uninitialized afterwards. Caller must hold mu.
func (s *Store) init() error {
	if s.loaded {
		return nil
	}

	records, err := s.backend.Load()
	if err != nil {
		return fmt.Errorf("credential store: load: %w", err)
	}
	if records == nil {
		records = []model.Credential{}
		if err := s.backend.Save(records); err != nil {
			return fmt.Errorf("credential store: initial save: %w", err)
		}
	}

	s.records = records
	for i, r := range records {
		s.index[r.Login] = i
	}
	s.loaded = true
	return nil
}

// FindByLogin returns the record for login, reporting whether one exists.
func (s *Store) FindByLogin(login string) (model.Credential, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.init(); err != nil {
		return model.Credential{}, false, err
	}

	i, ok := s.index[login]
	if !ok {
		return model.Credential{}, false, nil
	}
	return s.records[i], true, nil
}

// Upsert replaces the record with a matching login in place, preserving its
// position, or appends when absent, then persists the whole collection. A
// failed save rolls the in-memory collection back so memory never claims
// more than the backend holds.
func (s *Store) Upsert(rec model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.init(); err != nil {
		return err
	}

	i, existed := s.index[rec.Login]
	var old model.Credential
	if existed {
		old = s.records[i]
		s.records[i] = rec
	} else {
		s.index[rec.Login] = len(s.records)
		s.records = append(s.records, rec)
	}

	if err := s.backend.Save(s.records); err != nil {
		if existed {
			s.records[i] = old
		} else {
			s.records = s.records[:len(s.records)-1]
			delete(s.index, rec.Login)
		}
		return fmt.Errorf("credential store: save: %w", err)
	}
	return nil
}

// Len reports how many records the store holds.
func (s *Store) Len() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.init(); err != nil {
		return 0, err
	}
	return len(s.records), nil
}
