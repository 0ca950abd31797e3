package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// ErrNoState is returned by a Store that holds nothing yet.
var ErrNoState = errors.New("credential: no persisted state")

// State is what a Store keeps between restarts.
type State struct {
	Credential Credential
	IssuedAt   time.Time
}

// Store persists the latest credential.
type Store interface {
	Load() (State, error)
	Save(State) error
}

type fileState struct {
	Token            string `json:"token"`
	ExpiresAtEpochMs int64  `json:"expiresAtEpochMs"`
	IssuedAtEpochMs  int64  `json:"issuedAtEpochMs,omitempty"`
}

// FileStore keeps the state as a small JSON document.
type FileStore struct {
	Path string
}

func (s FileStore) Load() (State, error) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return State{}, ErrNoState
		}
		return State{}, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	var fst fileState
	if err := json.Unmarshal(b, &fst); err != nil {
		return State{}, fmt.Errorf("decoding %s: %w", s.Path, err)
	}
	if fst.Token == "" {
		return State{}, ErrNoState
	}
	st := State{Credential: Credential{Token: fst.Token, ExpiresAt: time.UnixMilli(fst.ExpiresAtEpochMs)}}
	if fst.IssuedAtEpochMs > 0 {
		st.IssuedAt = time.UnixMilli(fst.IssuedAtEpochMs)
	}
	return st, nil
}

// Save writes to a temp file in the same directory and renames it into place.
func (s FileStore) Save(st State) error {
	fst := fileState{Token: st.Credential.Token, ExpiresAtEpochMs: st.Credential.ExpiresAt.UnixMilli()}
	if !st.IssuedAt.IsZero() {
		fst.IssuedAtEpochMs = st.IssuedAt.UnixMilli()
	}
	b, err := json.Marshal(fst)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("writing token state: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}
