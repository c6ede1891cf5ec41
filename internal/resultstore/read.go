package resultstore

import (
	"errors"
	"io/fs"
	"os"
	"syscall"
)

// ReadState is the outcome of loading a store from disk.
type ReadState int

const (
	Missing ReadState = iota // no file
	Empty                    // zero-size file, or no header line
	Loaded                   // header matched, rows parsed
	Corrupt                  // present but unreadable or unparsable
)

func (s ReadState) String() string {
	switch s {
	case Missing:
		return "missing"
	case Empty:
		return "empty"
	case Loaded:
		return "loaded"
	case Corrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// ReadResult carries the rows of a Loaded store, or the *StoreReadError of a Corrupt one.
type ReadResult[T any] struct {
	State ReadState
	Rows  []T
	Err   error

	// endsWithNewline is false when the last row was cut mid-write; appends must start a new line.
	endsWithNewline bool
}

// Read loads the store at path. It never returns an error for a missing or empty file.
func Read[T any](path string) ReadResult[T] {
	data, err := os.ReadFile(path)
	if err != nil {
		// a parent that is a regular file means the store cannot exist either
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
			return ReadResult[T]{State: Missing}
		}
		return ReadResult[T]{State: Corrupt, Err: &StoreReadError{Path: path, Err: err}}
	}
	if len(data) == 0 || isBlank(data) {
		return ReadResult[T]{State: Empty}
	}

	rows, err := decode[T](data)
	if err != nil {
		return ReadResult[T]{State: Corrupt, Err: &StoreReadError{Path: path, Err: err}}
	}
	return ReadResult[T]{
		State:           Loaded,
		Rows:            rows,
		endsWithNewline: data[len(data)-1] == '\n',
	}
}

func isBlank(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	return true
}
