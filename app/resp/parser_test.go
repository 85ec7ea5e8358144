package resp

import (
	"bufio"
	"errors"
	"io"
	"math"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  RespValue
	}{
		{"simple", "+OK\r\n", Simple("OK")},
		{"error", "-ERR boom\r\n", Error("ERR boom")},
		{"integer", ":-42\r\n", Integer(-42)},
		{"bulk", "$5\r\nHello\r\n", Bulk("Hello")},
		{"empty bulk", "$0\r\n\r\n", Bulk("")},
		{"bulk with crlf inside", "$4\r\na\r\nb\r\n", Bulk("a\r\nb")},
		{"null bulk", "$-1\r\n", Null()},
		{"null array", "*-1\r\n", Null()},
		{"null", "_\r\n", Null()},
		{"double", ",3.5\r\n", Double(3.5)},
		{"empty array", "*0\r\n", Array()},
		{
			"command",
			"*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n",
			Array(Bulk("SET"), Bulk("k"), Bulk("v")),
		},
		{
			"nested",
			"*2\r\n*1\r\n:1\r\n+x\r\n",
			Array(Array(Integer(1)), Simple("x")),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDoubleSpecials(t *testing.T) {
	v, err := Parse([]byte(",inf\r\n"))
	require.NoError(t, err)
	assert.True(t, math.IsInf(v.Value.(float64), 1))

	v, err = Parse([]byte(",-inf\r\n"))
	require.NoError(t, err)
	assert.True(t, math.IsInf(v.Value.(float64), -1))

	v, err = Parse([]byte(",nan\r\n"))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v.Value.(float64)))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty input", "", ErrUnexpectedEOF},
		{"no terminator", "+OK", ErrMissingCRLF},
		{"bare newline", "+OK\n", ErrMissingCRLF},
		{"empty line", "\r\n", ErrEmptyLine},
		{"truncated bulk", "$5\r\nHel\r\n", ErrTruncatedBulk},
		{"bulk without terminator", "$2\r\nhiXY", ErrMissingCRLF},
		{"negative bulk length", "$-2\r\n", ErrInvalidBulkLength},
		{"negative array length", "*-5\r\n", ErrInvalidArrayLength},
		{"integer payload", ":12a\r\n", ErrParseNumber},
		{"bulk length payload", "$x\r\n", ErrParseNumber},
		{"double payload", ",1.2.3\r\n", ErrParseNumber},
		{"unknown prefix", "!oops\r\n", ErrNotSupported},
		{"null with payload", "_x\r\n", ErrSyntax},
		{"array cut short", "*2\r\n+a\r\n", ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsProtocolError(err))
			assert.Equal(t, tt.want, ErrorKind(err))
		})
	}
}

func TestParseDepthLimit(t *testing.T) {
	input := strings.Repeat("*1\r\n", MaxDepth+1) + ":1\r\n"
	_, err := Parse([]byte(input))
	assert.ErrorIs(t, err, ErrDepthExceeded)

	input = strings.Repeat("*1\r\n", MaxDepth-1) + ":1\r\n"
	_, err = Parse([]byte(input))
	assert.NoError(t, err)
}

func TestParseClaimedLengthsDoNotPreallocate(t *testing.T) {
	inputs := []string{
		strings.Repeat("*1048576\r\n", 40),
		"$536870912\r\nshort",
	}
	for _, input := range inputs {
		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)
		_, err := Parse([]byte(input))
		runtime.ReadMemStats(&after)

		require.Error(t, err)
		assert.True(t, IsProtocolError(err))
		assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(8<<20), "input %.20q", input)
	}
}

func TestParseRESPStream(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("+PONG\r\n!bad\r\n:7\r\n"))

	v, err := ParseRESP(r)
	require.NoError(t, err)
	assert.Equal(t, Simple("PONG"), v)

	// A rejected frame leaves the stream positioned at the next one.
	_, err = ParseRESP(r)
	assert.ErrorIs(t, err, ErrNotSupported)

	v, err = ParseRESP(r)
	require.NoError(t, err)
	assert.Equal(t, Integer(7), v)

	_, err = ParseRESP(r)
	assert.True(t, errors.Is(err, io.EOF), "clean end of stream is visible as io.EOF")
}

func TestStrings(t *testing.T) {
	args, err := Array(Bulk("GET"), Simple("k")).Strings()
	require.NoError(t, err)
	assert.Equal(t, []string{"GET", "k"}, args)

	_, err = Array(Bulk("GET"), Integer(1)).Strings()
	assert.Error(t, err)

	_, err = Bulk("GET").Strings()
	assert.Error(t, err)
}
