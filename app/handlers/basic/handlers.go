package basic

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tikarammardi/ledis/app/resp"
)

// PingHandler handles PING commands
type PingHandler struct{}

// NewPingHandler creates a new PING handler
func NewPingHandler() *PingHandler {
	return &PingHandler{}
}

// Handle processes the PING command
func (h *PingHandler) Handle(argv []string, _ time.Time) resp.RespValue {
	switch len(argv) {
	case 1:
		return resp.Simple("PONG")
	case 2:
		return resp.Bulk(argv[1])
	default:
		return resp.Error("ERR wrong number of arguments for 'ping' command")
	}
}

// EchoHandler handles ECHO commands
type EchoHandler struct{}

// NewEchoHandler creates a new ECHO handler
func NewEchoHandler() *EchoHandler {
	return &EchoHandler{}
}

// Handle processes the ECHO command
func (h *EchoHandler) Handle(argv []string, _ time.Time) resp.RespValue {
	return resp.Bulk(argv[1])
}

// KeyCounter reports the size of the keyspace.
type KeyCounter interface {
	Len(now time.Time) int
}

// ServerConfig interface for server configuration
type ServerConfig interface {
	GetServerInfo() map[string]string
}

// InfoHandler handles INFO commands
type InfoHandler struct {
	config ServerConfig
	keys   KeyCounter
}

// NewInfoHandler creates a new INFO handler
func NewInfoHandler(config ServerConfig, keys KeyCounter) *InfoHandler {
	return &InfoHandler{config: config, keys: keys}
}

// Handle processes the INFO command. Only the server and keyspace sections
// exist; asking for any other section yields an empty reply.
func (h *InfoHandler) Handle(argv []string, now time.Time) resp.RespValue {
	section := "all"
	if len(argv) > 1 {
		section = strings.ToLower(argv[1])
	}

	var b strings.Builder
	if section == "all" || section == "default" || section == "server" {
		info := h.config.GetServerInfo()
		names := make([]string, 0, len(info))
		for name := range info {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteString("# Server\r\n")
		for _, name := range names {
			b.WriteString(name + ":" + info[name] + "\r\n")
		}
	}
	if section == "all" || section == "default" || section == "keyspace" {
		if b.Len() > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString("# Keyspace\r\n")
		if n := h.keys.Len(now); n > 0 {
			b.WriteString("db0:keys=" + strconv.Itoa(n) + "\r\n")
		}
	}
	return resp.Bulk(b.String())
}

// DBSizeHandler handles DBSIZE commands
type DBSizeHandler struct {
	keys KeyCounter
}

// NewDBSizeHandler creates a new DBSIZE handler
func NewDBSizeHandler(keys KeyCounter) *DBSizeHandler {
	return &DBSizeHandler{keys: keys}
}

// Handle processes the DBSIZE command
func (h *DBSizeHandler) Handle(_ []string, now time.Time) resp.RespValue {
	return resp.Integer(int64(h.keys.Len(now)))
}
