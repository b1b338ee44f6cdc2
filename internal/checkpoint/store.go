package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCorrupt marks an unreadable checkpoint file. It aborts the run
// instead of being papered over: guessing would risk re-fetching or
// losing chapters that are already on disk.
var ErrCorrupt = errors.New("checkpoint corrupt")

// Store keeps one JSON document per novel under dir.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Path(novelID string) string {
	return filepath.Join(s.dir, novelID+".json")
}

// Load reads the checkpoint for novelID. A missing file yields (nil, nil);
// an unparseable one yields an ErrCorrupt-wrapped error and leaves the
// file alone.
func (s *Store) Load(novelID string) (*Checkpoint, error) {
	raw, err := os.ReadFile(s.Path(novelID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", novelID, err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.Path(novelID), err)
	}
	if err := cp.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.Path(novelID), err)
	}

	return &cp, nil
}

// Save writes cp atomically: marshal, write a temp file in the same
// directory, sync, rename. A crash mid-save leaves the previous valid
// document in place.
func (s *Store) Save(cp *Checkpoint) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint %s: %w", cp.NovelID, err)
	}

	target := s.Path(cp.NovelID)
	tmp, err := os.CreateTemp(s.dir, cp.NovelID+".*.tmp")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	return nil
}

// Reset destroys the checkpoint for novelID. Missing files are fine.
func (s *Store) Reset(novelID string) error {
	err := os.Remove(s.Path(novelID))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (cp *Checkpoint) validate() error {
	if cp.NovelID == "" {
		return errors.New("missing novel_id")
	}
	for i, rec := range cp.Chapters {
		if rec.URL == "" {
			return fmt.Errorf("chapter %d: missing url", i)
		}
		switch rec.Status {
		case StatusPending, StatusFetched, StatusFailed:
		default:
			return fmt.Errorf("chapter %d: unknown status %q", i, rec.Status)
		}
		if rec.Status == StatusFetched && rec.Body == "" {
			return fmt.Errorf("chapter %d: fetched without body", i)
		}
	}
	return nil
}
