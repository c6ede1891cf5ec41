package resultstore

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gocarina/gocsv"
)

// Columns returns the csv-tagged field names of T in declaration order.
func Columns[T any]() []string {
	var zero T
	rt := reflect.TypeOf(zero)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	cols := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("csv"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		cols = append(cols, tag)
	}
	return cols
}

// decode validates the header against T's columns and parses every row.
// A header-only store decodes to zero rows.
func decode[T any](data []byte) ([]T, error) {
	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	want := Columns[T]()
	if !equalColumns(header, want) {
		return nil, fmt.Errorf("header mismatch: got %v, want %v", header, want)
	}

	rows := []T{}
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return rows, nil
}

func encodeHeader[T any]() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Columns[T]()); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// encodeRows renders rows without the header line.
func encodeRows[T any](rows []T) ([]byte, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, err
	}
	i := bytes.IndexByte(out, '\n')
	if i < 0 {
		return nil, errors.New("encoded rows missing header line")
	}
	return out[i+1:], nil
}

func encodeAll[T any](rows []T) ([]byte, error) {
	header, err := encodeHeader[T]()
	if err != nil {
		return nil, err
	}
	body, err := encodeRows(rows)
	if err != nil {
		return nil, err
	}
	return append(header, body...), nil
}

func equalColumns(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
