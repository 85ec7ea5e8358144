package httpapi

import (
	"strconv"
	"strings"

	"github.com/tikarammardi/ledis/app/resp"
)

// Render formats a reply the way redis-cli prints it.
func Render(v resp.RespValue) string {
	var b strings.Builder
	render(&b, v, "")
	return b.String()
}

func render(b *strings.Builder, v resp.RespValue, indent string) {
	switch v.Type {
	case resp.SimpleString:
		b.WriteString(v.Str())
	case resp.ErrorType:
		b.WriteString("(error) ")
		b.WriteString(v.Str())
	case resp.IntegerType:
		b.WriteString("(integer) ")
		b.WriteString(strconv.FormatInt(v.Int(), 10))
	case resp.BulkString:
		b.WriteString(strconv.Quote(v.Str()))
	case resp.NullType:
		b.WriteString("(nil)")
	case resp.DoubleType:
		f, _ := v.Value.(float64)
		b.WriteString("(double) ")
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case resp.ArrayType:
		items := v.Items()
		if len(items) == 0 {
			b.WriteString("(empty list)")
			return
		}
		width := len(strconv.Itoa(len(items)))
		for i, item := range items {
			if i > 0 {
				b.WriteByte('\n')
				b.WriteString(indent)
			}
			label := strconv.Itoa(i + 1)
			b.WriteString(strings.Repeat(" ", width-len(label)))
			b.WriteString(label)
			b.WriteString(") ")
			render(b, item, indent+strings.Repeat(" ", width+2))
		}
	}
}
