package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tikarammardi/ledis/app/resp"
)

// maxQueryBytes bounds a /query body.
const maxQueryBytes = 1 << 20

// Executor runs one command.
type Executor interface {
	Execute(name string, args []string) resp.RespValue
}

// CommandRequest is the body of POST /v1/commands.
type CommandRequest struct {
	Command string   `json:"command" binding:"required"`
	Args    []string `json:"args"`
}

// Reply is the JSON form of a command reply.
type Reply struct {
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewRouter returns the HTTP front end over executor. Commands run without a
// session, so MULTI and friends are refused.
func NewRouter(executor Executor, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.Any("/query", func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.String(http.StatusBadRequest, "Invalid request method. Use POST instead.")
			return
		}
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxQueryBytes))
		if err != nil {
			c.String(http.StatusBadRequest, "(error) %v", err)
			return
		}
		argv := strings.Fields(string(body))
		if len(argv) == 0 {
			c.String(http.StatusBadRequest, "(error) ERR empty command")
			return
		}
		logger.Debug("query", "command", argv[0], "args", len(argv)-1)
		c.String(http.StatusOK, Render(executor.Execute(argv[0], argv[1:])))
	})

	v1 := router.Group("/v1")
	v1.POST("/commands", func(c *gin.Context) {
		var req CommandRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, toReply(executor.Execute(req.Command, req.Args)))
	})

	return router
}

func toReply(v resp.RespValue) Reply {
	switch v.Type {
	case resp.ErrorType:
		return Reply{Type: v.Type.String(), Error: v.Str()}
	case resp.ArrayType:
		items := v.Items()
		values := make([]Reply, len(items))
		for i, item := range items {
			values[i] = toReply(item)
		}
		return Reply{Type: v.Type.String(), Value: values}
	default:
		return Reply{Type: v.Type.String(), Value: v.Value}
	}
}
