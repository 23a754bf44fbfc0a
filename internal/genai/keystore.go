package genai

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNoUsableKey is returned by Select when every stored key is invalid or
// none exist.
var ErrNoUsableKey = errors.New("no usable API key")

// KeyStore manages the provider credentials the client draws from.
type KeyStore interface {
	// Select returns the active usable key.
	Select() (string, error)
	// Invalidate marks a key as rejected so Select skips it.
	Invalidate(key string) error
	// ClearInvalid resets the invalid flag on every key.
	ClearInvalid() error
}

type storedKey struct {
	Value   string `yaml:"value"`
	Invalid bool   `yaml:"invalid,omitempty"`
}

type keyFile struct {
	Keys []storedKey `yaml:"keys"`
}

// FileKeyStore persists keys in a YAML file next to the project.
type FileKeyStore struct {
	mu   sync.Mutex
	path string
}

// NewFileKeyStore opens (or will create on first write) the key file at path.
func NewFileKeyStore(path string) *FileKeyStore {
	return &FileKeyStore{path: path}
}

func (s *FileKeyStore) load() (keyFile, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return keyFile{}, nil
		}
		return keyFile{}, fmt.Errorf("read key file: %w", err)
	}
	var kf keyFile
	if err := yaml.Unmarshal(contents, &kf); err != nil {
		return keyFile{}, fmt.Errorf("unmarshal key file: %w", err)
	}
	return kf, nil
}

func (s *FileKeyStore) save(kf keyFile) error {
	buf, err := yaml.Marshal(&kf)
	if err != nil {
		return fmt.Errorf("marshal key file: %w", err)
	}
	if err := os.WriteFile(s.path, buf, 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// Add appends a key when it is not already stored.
func (s *FileKeyStore) Add(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kf, err := s.load()
	if err != nil {
		return err
	}
	for _, k := range kf.Keys {
		if k.Value == key {
			return nil
		}
	}
	kf.Keys = append(kf.Keys, storedKey{Value: key})
	return s.save(kf)
}

// Select returns the first key not marked invalid.
func (s *FileKeyStore) Select() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kf, err := s.load()
	if err != nil {
		return "", err
	}
	for _, k := range kf.Keys {
		if !k.Invalid {
			return k.Value, nil
		}
	}
	return "", ErrNoUsableKey
}

// Invalidate flags the key so subsequent Select calls skip it.
func (s *FileKeyStore) Invalidate(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kf, err := s.load()
	if err != nil {
		return err
	}
	for i := range kf.Keys {
		if kf.Keys[i].Value == key {
			kf.Keys[i].Invalid = true
		}
	}
	return s.save(kf)
}

// ClearInvalid resets every invalid flag.
func (s *FileKeyStore) ClearInvalid() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kf, err := s.load()
	if err != nil {
		return err
	}
	for i := range kf.Keys {
		kf.Keys[i].Invalid = false
	}
	return s.save(kf)
}

// StaticKeyStore serves one fixed key, e.g. from the environment.
type StaticKeyStore struct {
	Key string
}

func (s StaticKeyStore) Select() (string, error) {
	if s.Key == "" {
		return "", ErrNoUsableKey
	}
	return s.Key, nil
}

func (StaticKeyStore) Invalidate(string) error { return nil }
func (StaticKeyStore) ClearInvalid() error     { return nil }
