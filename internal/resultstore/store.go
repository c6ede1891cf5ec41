package resultstore

import (
	"context"
	"os"
	"path/filepath"

	"stock-news-analysis/internal/logger"
)

// Keyed is a record with a natural identity used for de-duplication.
type Keyed interface {
	NaturalKey() string
}

// CorruptPolicy decides what AppendNew does when the existing store cannot be parsed.
type CorruptPolicy string

const (
	// Abort returns the StoreReadError and leaves the file untouched.
	Abort CorruptPolicy = "abort"
	// TreatEmpty logs a warning and appends as if no keys were known. Duplicates are possible.
	TreatEmpty CorruptPolicy = "treat_empty"
)

// AppendResult counts what one AppendNew call did.
type AppendResult struct {
	Appended int
	Skipped  int
	Created  bool
}

// Store is a keep-first, append-only day store bound to one file.
type Store[T Keyed] struct {
	path      string
	onCorrupt CorruptPolicy
}

func New[T Keyed](path string, onCorrupt CorruptPolicy) *Store[T] {
	if onCorrupt == "" {
		onCorrupt = Abort
	}
	return &Store[T]{path: path, onCorrupt: onCorrupt}
}

func (s *Store[T]) Path() string { return s.path }

func (s *Store[T]) Read(ctx context.Context) ReadResult[T] {
	return Read[T](s.path)
}

// AppendNew appends the records whose natural key is not yet stored, in batch order.
// Repeated keys within the batch keep their first occurrence. Nothing is written when
// every record is already known, except that a missing store is created (header only
// for an empty batch).
func (s *Store[T]) AppendNew(ctx context.Context, records []T) (AppendResult, error) {
	existing := Read[T](s.path)

	known := make(map[string]struct{})
	switch existing.State {
	case Loaded:
		for _, r := range existing.Rows {
			known[r.NaturalKey()] = struct{}{}
		}
	case Corrupt:
		if s.onCorrupt != TreatEmpty {
			return AppendResult{}, existing.Err
		}
		logger.Warn(ctx, "Existing store unreadable, appending with no known keys",
			"path", s.path,
			"error", existing.Err,
		)
	}

	fresh := filterUnseen(records, known)
	result := AppendResult{Appended: len(fresh), Skipped: len(records) - len(fresh)}

	switch existing.State {
	case Missing, Empty:
		data, err := encodeAll(fresh)
		if err != nil {
			return AppendResult{}, &WriteError{Path: s.path, Err: err}
		}
		if err := writeFile(s.path, data); err != nil {
			return AppendResult{}, err
		}
		result.Created = true
		return result, nil
	}

	if len(fresh) == 0 {
		return result, nil
	}

	data, err := encodeRows(fresh)
	if err != nil {
		return AppendResult{}, &WriteError{Path: s.path, Err: err}
	}
	if existing.State == Loaded && !existing.endsWithNewline {
		data = append([]byte("\n"), data...)
	}
	if err := appendFile(s.path, data); err != nil {
		return AppendResult{}, err
	}
	return result, nil
}

// filterUnseen keeps records whose key is neither in known nor earlier in the batch.
func filterUnseen[T Keyed](records []T, known map[string]struct{}) []T {
	seen := make(map[string]struct{}, len(known)+len(records))
	for k := range known {
		seen[k] = struct{}{}
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		k := r.NaturalKey()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func appendFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
