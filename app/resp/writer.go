package resp

import (
	"bufio"
	"io"
	"math"
	"strconv"
)

// ResponseWriter writes replies to a client connection. Replies are
// buffered until Flush.
//
// It speaks RESP2 so that stock clients work unchanged: null is written as
// the null bulk string and doubles as bulk strings.
type ResponseWriter struct {
	w   *bufio.Writer
	buf []byte
}

// NewResponseWriter creates a new RESP response writer.
func NewResponseWriter(w io.Writer) *ResponseWriter {
	return &ResponseWriter{w: bufio.NewWriter(w)}
}

func (w *ResponseWriter) WriteValue(v RespValue) error {
	w.buf = appendValue(w.buf[:0], v, false)
	_, err := w.w.Write(w.buf)
	return err
}

func (w *ResponseWriter) Flush() error {
	return w.w.Flush()
}

// Marshal encodes v in RESP3 form: null as "_" and doubles with ",".
func Marshal(v RespValue) []byte {
	return appendValue(nil, v, true)
}

func appendValue(b []byte, v RespValue, resp3 bool) []byte {
	switch v.Type {
	case SimpleString:
		return appendLine(b, '+', v.Str())
	case ErrorType:
		return appendLine(b, '-', v.Str())
	case IntegerType:
		b = append(b, ':')
		b = strconv.AppendInt(b, v.Int(), 10)
		return append(b, '\r', '\n')
	case BulkString:
		return appendBulk(b, v.Str())
	case DoubleType:
		f, _ := v.Value.(float64)
		if !resp3 {
			return appendBulk(b, formatDouble(f))
		}
		return appendLine(b, ',', formatDouble(f))
	case ArrayType:
		items := v.Items()
		b = append(b, '*')
		b = strconv.AppendInt(b, int64(len(items)), 10)
		b = append(b, '\r', '\n')
		for _, item := range items {
			b = appendValue(b, item, resp3)
		}
		return b
	default:
		if resp3 {
			return append(b, '_', '\r', '\n')
		}
		return append(b, "$-1\r\n"...)
	}
}

func appendLine(b []byte, prefix byte, s string) []byte {
	b = append(b, prefix)
	b = append(b, s...)
	return append(b, '\r', '\n')
}

func appendBulk(b []byte, s string) []byte {
	b = append(b, '$')
	b = strconv.AppendInt(b, int64(len(s)), 10)
	b = append(b, '\r', '\n')
	b = append(b, s...)
	return append(b, '\r', '\n')
}

func formatDouble(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
