// Package handlers holds the argument helpers shared by the command handler
// packages below it.
package handlers

import (
	"errors"
	"strconv"

	"github.com/tikarammardi/ledis/app/resp"
	"github.com/tikarammardi/ledis/app/store"
)

// ErrCountRange rejects counts below one.
var ErrCountRange = errors.New("ERR value is out of range, must be positive")

// Int64 parses a decimal integer argument.
func Int64(arg string) (int64, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, store.ErrNotInteger
	}
	return n, nil
}

// Count parses an optional positive count argument such as LPOP's.
func Count(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 {
		return 0, ErrCountRange
	}
	return n, nil
}

// OptionalBulk returns value as a bulk string, or null when ok is false.
func OptionalBulk(value string, ok bool) resp.RespValue {
	if !ok {
		return resp.Null()
	}
	return resp.Bulk(value)
}
