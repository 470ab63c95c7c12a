package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileName is the session file inside the client config directory.
const FileName = "session.json"

// FilePersister keeps the session as JSON in a file only the user can read.
type FilePersister struct {
	Path string
}

// NewFilePersister returns a persister for dir/session.json.
func NewFilePersister(dir string) *FilePersister {
	return &FilePersister{Path: filepath.Join(dir, FileName)}
}

// Load reads the session file. A missing or blank file is the empty session.
func (p *FilePersister) Load(_ context.Context) (Session, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Session{}, nil
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, fmt.Errorf("parse %s: %w", p.Path, err)
	}
	return sess, nil
}

// Save writes through a temp file so a crash never leaves half a session.
func (p *FilePersister) Save(_ context.Context, s Session) error {
	if err := os.MkdirAll(filepath.Dir(p.Path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	tmp := p.Path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, p.Path)
}

// Remove deletes the session file if present.
func (p *FilePersister) Remove(_ context.Context) error {
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryPersister keeps the session for the life of the process.
type MemoryPersister struct {
	mu   sync.Mutex
	sess Session
}

// NewMemoryPersister returns an empty MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{}
}

func (p *MemoryPersister) Load(_ context.Context) (Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sess, nil
}

func (p *MemoryPersister) Save(_ context.Context, s Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sess = s
	return nil
}

func (p *MemoryPersister) Remove(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sess = Session{}
	return nil
}
