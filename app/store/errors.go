package store

import "errors"

// Command errors. Their text is the reply a client sees.
var (
	ErrWrongType         = errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
	ErrNoSuchKey         = errors.New("ERR no such key")
	ErrSyntax            = errors.New("ERR syntax error")
	ErrNotInteger        = errors.New("ERR value is not an integer or out of range")
	ErrInvalidExpireTime = errors.New("ERR invalid expire time in 'set' command")
	ErrNegativeTTL       = errors.New("ERR invalid expire time in 'expire' command")
	ErrOverflow          = errors.New("ERR increment or decrement would overflow")
	ErrBadPattern        = errors.New("ERR invalid pattern")
)
