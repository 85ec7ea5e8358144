package resp

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseWriterRESP2(t *testing.T) {
	var buf bytes.Buffer
	w := NewResponseWriter(&buf)

	require.NoError(t, w.WriteValue(OK))
	require.NoError(t, w.WriteValue(Null()))
	require.NoError(t, w.WriteValue(Integer(-3)))
	require.NoError(t, w.WriteValue(Errorf("ERR unknown command '%s'", "nope")))
	require.NoError(t, w.WriteValue(BulkArray([]string{"a", ""})))
	require.NoError(t, w.WriteValue(Double(1.5)))
	assert.Zero(t, buf.Len(), "nothing reaches the connection before Flush")

	require.NoError(t, w.Flush())
	assert.Equal(t,
		"+OK\r\n"+
			"$-1\r\n"+
			":-3\r\n"+
			"-ERR unknown command 'nope'\r\n"+
			"*2\r\n$1\r\na\r\n$0\r\n\r\n"+
			"$3\r\n1.5\r\n",
		buf.String())
}

func TestMarshal(t *testing.T) {
	assert.Equal(t, "_\r\n", string(Marshal(Null())))
	assert.Equal(t, ",inf\r\n", string(Marshal(Double(math.Inf(1)))))
	assert.Equal(t, "*0\r\n", string(Marshal(Array())))
	assert.Equal(t, "*2\r\n$3\r\nGET\r\n_\r\n", string(Marshal(Array(Bulk("GET"), Null()))))
}

func TestMarshalParseRoundTrip(t *testing.T) {
	values := []RespValue{
		Simple("OK"),
		Error("WRONGTYPE x"),
		Integer(math.MinInt64),
		Bulk("bin\x00ary\r\n"),
		Double(-0.25),
		Null(),
		Array(BulkArray([]string{"x", "y"}), Integer(1), Array()),
	}
	for _, v := range values {
		got, err := Parse(Marshal(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}
