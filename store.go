package oauth

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Store holds the two shared cells of a handshake: the durable pending state
// under StateKey and the session-scoped serialized result under ResultKey.
// Writing a new state overwrites the old one, invalidating any handshake
// still in flight under the prior value.
type Store interface {
	SetState(state string) error
	State() (string, error)
	SetResult(res *OAuthResult) error
	Result() (*OAuthResult, error)
}

// MemStore is the in-process Store implementation.
type MemStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{values: map[string]string{}}
}

func (s *MemStore) SetState(state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[StateKey] = state

	return nil
}

func (s *MemStore) State() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.values[StateKey], nil
}

func (s *MemStore) SetResult(res *OAuthResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("could not serialize result: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[ResultKey] = string(b)

	return nil
}

func (s *MemStore) Result() (*OAuthResult, error) {
	s.mu.Lock()
	raw := s.values[ResultKey]
	s.mu.Unlock()

	if raw == "" {
		return nil, nil
	}

	var res OAuthResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("could not deserialize result: %w", err)
	}

	return &res, nil
}
