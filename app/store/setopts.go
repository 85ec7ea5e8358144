package store

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// SetFlag is a bit set of SET options.
type SetFlag uint16

const (
	FlagNX SetFlag = 1 << iota
	FlagXX
	FlagGet
	FlagEX
	FlagPX
	FlagEXAT
	FlagPXAT
	FlagKeepTTL
	FlagPersist
)

const (
	existenceFlags  = FlagNX | FlagXX
	expirationFlags = FlagEX | FlagPX | FlagEXAT | FlagPXAT | FlagKeepTTL | FlagPersist
	deadlineFlags   = FlagEX | FlagPX | FlagEXAT | FlagPXAT
)

// Has reports whether every bit of mask is set.
func (f SetFlag) Has(mask SetFlag) bool {
	return f&mask == mask
}

// SetOptions is the parsed tail of a SET command.
type SetOptions struct {
	Flags SetFlag
	// Deadline is set when one of EX, PX, EXAT or PXAT was given.
	Deadline *Deadline
}

// ParseSetOptions parses the tokens after SET's key and value. At most one
// flag of {NX, XX} and one of {EX, PX, EXAT, PXAT, KEEPTTL, PERSIST} may be
// given; GET is independent. Relative expirations are measured from now.
func ParseSetOptions(tokens []string, now time.Time) (SetOptions, error) {
	var opts SetOptions

	for i := 0; i < len(tokens); i++ {
		token := strings.ToUpper(tokens[i])

		var flag SetFlag
		switch token {
		case "NX":
			flag = FlagNX
		case "XX":
			flag = FlagXX
		case "GET":
			opts.Flags |= FlagGet
			continue
		case "KEEPTTL":
			flag = FlagKeepTTL
		case "PERSIST":
			flag = FlagPersist
		case "EX":
			flag = FlagEX
		case "PX":
			flag = FlagPX
		case "EXAT":
			flag = FlagEXAT
		case "PXAT":
			flag = FlagPXAT
		default:
			return SetOptions{}, ErrSyntax
		}

		family := existenceFlags
		if flag&expirationFlags != 0 {
			family = expirationFlags
		}
		if opts.Flags&family != 0 {
			return SetOptions{}, ErrSyntax
		}
		opts.Flags |= flag

		if flag&deadlineFlags == 0 {
			continue
		}
		if i+1 >= len(tokens) {
			return SetOptions{}, ErrSyntax
		}
		i++
		deadline, err := parseExpiry(flag, tokens[i], now)
		if err != nil {
			return SetOptions{}, err
		}
		opts.Deadline = &deadline
	}

	return opts, nil
}

func parseExpiry(flag SetFlag, token string, now time.Time) (Deadline, error) {
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return Deadline{}, ErrNotInteger
	}
	if n <= 0 {
		return Deadline{}, ErrInvalidExpireTime
	}

	switch flag {
	case FlagEX:
		if n > int64(math.MaxInt64/time.Second) {
			return Deadline{}, ErrInvalidExpireTime
		}
		return ExpiresIn(now, time.Duration(n)*time.Second), nil
	case FlagPX:
		if n > int64(math.MaxInt64/time.Millisecond) {
			return Deadline{}, ErrInvalidExpireTime
		}
		return ExpiresIn(now, time.Duration(n)*time.Millisecond), nil
	case FlagEXAT:
		if n > math.MaxInt64/1000 {
			return Deadline{}, ErrInvalidExpireTime
		}
		return ExpiresAtUnixSeconds(n), nil
	default:
		return ExpiresAtUnixMillis(n), nil
	}
}
