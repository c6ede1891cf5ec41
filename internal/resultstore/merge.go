package resultstore

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"stock-news-analysis/internal/logger"
)

// MergeDedup concatenates existing and incoming and keeps the last occurrence of each key.
// A surviving row sits where its key first appeared, carrying the values of its last occurrence.
func MergeDedup[T any](existing, incoming []T, key func(T) string) []T {
	pos := make(map[string]int, len(existing)+len(incoming))
	out := make([]T, 0, len(existing)+len(incoming))
	for _, batch := range [][]T{existing, incoming} {
		for _, r := range batch {
			k := key(r)
			if i, ok := pos[k]; ok {
				out[i] = r
				continue
			}
			pos[k] = len(out)
			out = append(out, r)
		}
	}
	return out
}

// MergeResult counts what one Merge call did.
type MergeResult struct {
	Inserted int
	Updated  int
	Total    int
}

// MergeStore is a last-wins day store: every Merge rewrites the file atomically.
type MergeStore[T Keyed] struct {
	path      string
	onCorrupt CorruptPolicy
}

func NewMerge[T Keyed](path string, onCorrupt CorruptPolicy) *MergeStore[T] {
	if onCorrupt == "" {
		onCorrupt = Abort
	}
	return &MergeStore[T]{path: path, onCorrupt: onCorrupt}
}

func (m *MergeStore[T]) Path() string { return m.path }

func (m *MergeStore[T]) Read(ctx context.Context) ReadResult[T] {
	return Read[T](m.path)
}

// Merge reconciles incoming against the stored rows and rewrites the store.
// Under TreatEmpty a corrupt store is renamed to <path>.corrupt-<unix> and a new
// store is written from the incoming rows; the old bytes are never overwritten.
func (m *MergeStore[T]) Merge(ctx context.Context, incoming []T) (MergeResult, error) {
	existing := Read[T](m.path)
	var rows []T
	switch existing.State {
	case Loaded:
		rows = existing.Rows
	case Corrupt:
		if m.onCorrupt != TreatEmpty {
			return MergeResult{}, existing.Err
		}
		aside, err := setAside(m.path, time.Now())
		if err != nil {
			return MergeResult{}, err
		}
		logger.Warn(ctx, "Existing store unreadable, moved aside before rewriting",
			"path", m.path,
			"moved_to", aside,
			"error", existing.Err,
		)
	}

	known := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		known[r.NaturalKey()] = struct{}{}
	}
	var result MergeResult
	for _, r := range incoming {
		k := r.NaturalKey()
		if _, ok := known[k]; ok {
			result.Updated++
			continue
		}
		known[k] = struct{}{}
		result.Inserted++
	}

	merged := MergeDedup(rows, incoming, func(r T) string { return r.NaturalKey() })
	result.Total = len(merged)

	data, err := encodeAll(merged)
	if err != nil {
		return MergeResult{}, &WriteError{Path: m.path, Err: err}
	}
	if err := replaceFile(m.path, data); err != nil {
		return MergeResult{}, err
	}
	return result, nil
}

// replaceFile writes data to a temp file in the same directory and renames it over path.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// setAside renames an unreadable store out of the way and returns its new path.
func setAside(path string, now time.Time) (string, error) {
	aside := path + ".corrupt-" + strconv.FormatInt(now.Unix(), 10)
	for i := 1; ; i++ {
		if _, err := os.Stat(aside); os.IsNotExist(err) {
			break
		}
		aside = path + ".corrupt-" + strconv.FormatInt(now.Unix(), 10) + "-" + strconv.Itoa(i)
	}
	if err := os.Rename(path, aside); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	return aside, nil
}
