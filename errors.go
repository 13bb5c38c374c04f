package kvsearch

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadSnapshot is returned by Import for input that isn't an exported snapshot.
var ErrBadSnapshot = errors.New("not a kvsearch snapshot")

// StoreError reports a failed store primitive. The underlying store error
// (connection refused, timeout, I/O error) is available via errors.Is/As.
type StoreError struct {
	Op    string
	Table string
	Key   string
	Err   error
}

func storeErr(op, table, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Table: table, Key: key, Err: err}
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Error() string {
	var buf strings.Builder
	buf.WriteString("kvsearch: ")
	if e.Table != "" {
		buf.WriteString(e.Table)
		buf.WriteString(": ")
	}
	buf.WriteString(e.Op)
	if e.Key != "" {
		buf.WriteByte(' ')
		fmt.Fprintf(&buf, "%q", e.Key)
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}
