package credential_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"gitlab-relay/internal/credential"
	"gitlab-relay/internal/model"
)

// memBackend is an in-memory Persistence double recording every save.
type memBackend struct {
	data    []model.Credential
	hasData bool
	saves   int
	loadErr error
	saveErr error
}

func (m *memBackend) Load() ([]model.Credential, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if !m.hasData {
		return nil, nil
	}
	return append([]model.Credential(nil), m.data...), nil
}

func (m *memBackend) Save(records []model.Credential) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = append([]model.Credential(nil), records...)
	m.hasData = true
	m.saves++
	return nil
}

func TestStore(t *testing.T) {
	t.Run("Lazy Init Persists Empty Collection", func(t *testing.T) {
		backend := &memBackend{}
		store := credential.New(backend)

		_, found, err := store.FindByLogin("ada")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if found {
			t.Errorf("expected empty store")
		}
		if !backend.hasData || len(backend.data) != 0 {
			t.Errorf("first touch must persist an empty collection, backend: %+v", backend)
		}
	})

	t.Run("Upsert Then Find", func(t *testing.T) {
		backend := &memBackend{}
		store := credential.New(backend)

		if err := store.Upsert(model.Credential{Login: "ada", Key: "ABC123"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		rec, found, err := store.FindByLogin("ada")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !found || rec.Key != "ABC123" {
			t.Errorf("expected stored record, got found=%v rec=%+v", found, rec)
		}
		if len(backend.data) != 1 {
			t.Errorf("expected 1 persisted record, got %d", len(backend.data))
		}
	})

	t.Run("Upsert Is Idempotent By Login", func(t *testing.T) {
		backend := &memBackend{}
		store := credential.New(backend)

		store.Upsert(model.Credential{Login: "ada", Key: "first"})
		if err := store.Upsert(model.Credential{Login: "ada", Key: "second"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		n, _ := store.Len()
		if n != 1 {
			t.Fatalf("expected exactly one record for ada, got %d", n)
		}
		rec, _, _ := store.FindByLogin("ada")
		if rec.Key != "second" {
			t.Errorf("expected second value to win, got %q", rec.Key)
		}
	})

	t.Run("Replace Preserves Position", func(t *testing.T) {
		backend := &memBackend{
			data:    []model.Credential{{Login: "ada", Key: "a"}, {Login: "bob", Key: "b"}},
			hasData: true,
		}
		store := credential.New(backend)

		if err := store.Upsert(model.Credential{Login: "ada", Key: "a2"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if backend.data[0].Login != "ada" || backend.data[0].Key != "a2" {
			t.Errorf("expected ada replaced in place, got %+v", backend.data)
		}
		if backend.data[1].Login != "bob" || backend.data[1].Key != "b" {
			t.Errorf("expected bob untouched, got %+v", backend.data)
		}
	})

	t.Run("Failed Save Rolls Back", func(t *testing.T) {
		backend := &memBackend{
			data:    []model.Credential{{Login: "ada", Key: "old"}},
			hasData: true,
		}
		store := credential.New(backend)

		// init before arming the failure
		if _, _, err := store.FindByLogin("ada"); err != nil {
			t.Fatalf("unexpected init error: %v", err)
		}
		backend.saveErr = errors.New("disk full")

		err := store.Upsert(model.Credential{Login: "ada", Key: "new"})
		if err == nil || !strings.Contains(err.Error(), "disk full") {
			t.Fatalf("expected save error, got: %v", err)
		}

		rec, _, _ := store.FindByLogin("ada")
		if rec.Key != "old" {
			t.Errorf("memory must not outrun the backend, got %q", rec.Key)
		}

		backend.saveErr = nil
		err = store.Upsert(model.Credential{Login: "bob", Key: "x"})
		if err != nil {
			t.Fatalf("unexpected error after recovery: %v", err)
		}
		if n, _ := store.Len(); n != 2 {
			t.Errorf("expected 2 records after recovery, got %d", n)
		}
	})

	t.Run("Load Error Surfaces", func(t *testing.T) {
		backend := &memBackend{loadErr: errors.New("corrupt")}
		store := credential.New(backend)

		if err := store.Upsert(model.Credential{Login: "ada", Key: "x"}); err == nil {
			t.Errorf("expected load error to surface")
		}
	})

	t.Run("Concurrent Upserts Keep Distinct Logins", func(t *testing.T) {
		backend := &memBackend{}
		store := credential.New(backend)

		const writers = 16
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				login := fmt.Sprintf("user%d", i)
				if err := store.Upsert(model.Credential{Login: login, Key: fmt.Sprintf("key%d", i)}); err != nil {
					t.Errorf("upsert %s: %v", login, err)
				}
			}(i)
		}
		wg.Wait()

		n, _ := store.Len()
		if n != writers {
			t.Fatalf("expected %d records, got %d", writers, n)
		}
		for i := 0; i < writers; i++ {
			login := fmt.Sprintf("user%d", i)
			rec, found, _ := store.FindByLogin(login)
			if !found || rec.Key != fmt.Sprintf("key%d", i) {
				t.Errorf("lost record for %s: found=%v rec=%+v", login, found, rec)
			}
		}
	})
}
