package resp

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Decode error kinds. Every error returned by ParseRESP matches exactly one
// of them with errors.Is; the underlying cause, when there is one, is joined
// to the kind.
var (
	ErrUnexpectedEOF      = errors.New("unexpected end of input")
	ErrMissingCRLF        = errors.New("missing CRLF")
	ErrEmptyLine          = errors.New("empty line")
	ErrInvalidBulkLength  = errors.New("invalid bulk length")
	ErrTruncatedBulk      = errors.New("truncated bulk string")
	ErrInvalidArrayLength = errors.New("invalid multibulk length")
	ErrParseNumber        = errors.New("invalid number")
	ErrNotSupported       = errors.New("unsupported type prefix")
	ErrSyntax             = errors.New("null with payload")
	ErrDepthExceeded      = errors.New("nesting too deep")
)

var protocolErrors = []error{
	ErrUnexpectedEOF, ErrMissingCRLF, ErrEmptyLine, ErrInvalidBulkLength,
	ErrTruncatedBulk, ErrInvalidArrayLength, ErrParseNumber, ErrNotSupported,
	ErrSyntax, ErrDepthExceeded,
}

const (
	// MaxDepth bounds array nesting.
	MaxDepth = 64
	// MaxBulkLength matches Redis' default proto-max-bulk-len.
	MaxBulkLength = 512 << 20
	// MaxArrayLength matches the multibulk limit Redis applies to clients.
	MaxArrayLength = 1 << 20

	// Claimed lengths are only trusted up to these sizes before the data
	// arrives; larger values grow as they are read.
	arrayPrealloc = 1024
	bulkPrealloc  = 64 << 10
)

// IsProtocolError reports whether err is one of the decode error kinds.
func IsProtocolError(err error) bool {
	for _, kind := range protocolErrors {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// ErrorKind returns the decode kind carried by err, or err itself.
func ErrorKind(err error) error {
	for _, kind := range protocolErrors {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return err
}

// ParseRESP reads the next RESP value from the stream. A stream that ends
// before the first byte yields ErrUnexpectedEOF joined with io.EOF, so
// callers can tell a clean close with errors.Is(err, io.EOF).
func ParseRESP(r *bufio.Reader) (RespValue, error) {
	return parse(r, 0)
}

// Parse decodes exactly one value from data. Trailing bytes are ignored.
func Parse(data []byte) (RespValue, error) {
	return ParseRESP(bufio.NewReader(bytes.NewReader(data)))
}

func parse(r *bufio.Reader, depth int) (RespValue, error) {
	if depth >= MaxDepth {
		return RespValue{}, ErrDepthExceeded
	}

	line, err := readLine(r)
	if err != nil {
		return RespValue{}, err
	}

	prefix, payload := line[0], line[1:]
	switch prefix {
	case '+':
		return Simple(payload), nil
	case '-':
		return Error(payload), nil
	case ':':
		n, err := parseInt(payload)
		if err != nil {
			return RespValue{}, err
		}
		return Integer(n), nil
	case ',':
		f, err := parseDouble(payload)
		if err != nil {
			return RespValue{}, err
		}
		return Double(f), nil
	case '_':
		if payload != "" {
			return RespValue{}, ErrSyntax
		}
		return Null(), nil
	case '$':
		return parseBulk(r, payload)
	case '*':
		n, err := parseInt(payload)
		if err != nil {
			return RespValue{}, err
		}
		if n == -1 {
			return Null(), nil
		}
		if n < -1 || n > MaxArrayLength {
			return RespValue{}, ErrInvalidArrayLength
		}
		items := make([]RespValue, 0, min(n, arrayPrealloc))
		for range n {
			item, err := parse(r, depth+1)
			if err != nil {
				return RespValue{}, err
			}
			items = append(items, item)
		}
		return RespValue{ArrayType, items}, nil
	default:
		return RespValue{}, fmt.Errorf("%w: %q", ErrNotSupported, prefix)
	}
}

func parseBulk(r *bufio.Reader, payload string) (RespValue, error) {
	n, err := parseInt(payload)
	if err != nil {
		return RespValue{}, err
	}
	if n == -1 {
		return Null(), nil
	}
	if n < -1 || n > MaxBulkLength {
		return RespValue{}, ErrInvalidBulkLength
	}

	var b bytes.Buffer
	b.Grow(int(min(n+2, bulkPrealloc)))
	if _, err := io.CopyN(&b, r, n+2); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return RespValue{}, fmt.Errorf("%w: %w", ErrTruncatedBulk, io.ErrUnexpectedEOF)
		}
		return RespValue{}, err
	}
	buf := b.Bytes()
	if buf[n] != '\r' || buf[n+1] != '\n' {
		return RespValue{}, ErrMissingCRLF
	}
	return Bulk(string(buf[:n])), nil
}

// readLine returns the next line without its CRLF terminator.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", err
		}
		if line == "" {
			return "", fmt.Errorf("%w: %w", ErrUnexpectedEOF, io.EOF)
		}
		return "", fmt.Errorf("%w: %w", ErrMissingCRLF, io.ErrUnexpectedEOF)
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return "", ErrMissingCRLF
	}
	line = line[:len(line)-2]
	if line == "" {
		return "", ErrEmptyLine
	}
	return line, nil
}

func parseInt(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrParseNumber, err)
	}
	return n, nil
}

func parseDouble(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrParseNumber, err)
	}
	return f, nil
}
