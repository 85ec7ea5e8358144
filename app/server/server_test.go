package server

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tikarammardi/ledis/app/processor"
	"github.com/tikarammardi/ledis/app/store"
)

type staticAddress string

func (a staticAddress) GetAddress() string { return string(a) }

func startServer(t *testing.T) (*Server, string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.New(store.WithLogger(logger))
	dispatcher := processor.NewDispatcher(st, logger, processor.NewHandlerFactory(st).CreateAllCommands()...)
	srv := NewServer(processor.NewCommandProcessor(dispatcher), staticAddress("127.0.0.1:0"), logger)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, listener) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return srv, listener.Addr().String()
}

func newClient(t *testing.T, addr string) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:             addr,
		Protocol:         2,
		DisableIndentity: true,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestServerWithGoRedis(t *testing.T) {
	_, addr := startServer(t)
	client := newClient(t, addr)
	ctx := context.Background()

	require.Equal(t, "PONG", client.Ping(ctx).Val())

	require.NoError(t, client.Set(ctx, "name", "val", 0).Err())
	assert.Equal(t, "val", client.Get(ctx, "name").Val())

	err := client.Do(ctx, "SET", "name", "other", "NX").Err()
	assert.ErrorIs(t, err, redis.Nil)
	assert.Equal(t, "val", client.Get(ctx, "name").Val())

	_, err = client.Get(ctx, "missing").Result()
	assert.ErrorIs(t, err, redis.Nil)

	require.NoError(t, client.Set(ctx, "session", "x", 10*time.Second).Err())
	assert.Equal(t, 10*time.Second, client.TTL(ctx, "session").Val())

	assert.Equal(t, int64(3), client.RPush(ctx, "l", "a", "b", "c").Val())
	assert.Equal(t, []string{"a", "b", "c"}, client.LRange(ctx, "l", 0, -1).Val())
	assert.Equal(t, "a", client.LPop(ctx, "l").Val())

	assert.Equal(t, int64(2), client.SAdd(ctx, "s", "a", "b").Val())
	assert.Equal(t, []string{"a", "b"}, client.SMembers(ctx, "s").Val())

	err = client.Do(ctx, "SET", "k", "v", "EX", "5", "PX", "100").Err()
	require.Error(t, err)
	assert.Equal(t, "ERR syntax error", err.Error())

	err = client.LPush(ctx, "name", "x").Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WRONGTYPE")
}

func TestServerTransactions(t *testing.T) {
	_, addr := startServer(t)
	client := newClient(t, addr)
	ctx := context.Background()

	cmds, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, "counter", "1", 0)
		pipe.Incr(ctx, "counter")
		return nil
	})
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, int64(2), cmds[1].(*redis.IntCmd).Val())
}

func TestServerRecoversFromProtocolErrors(t *testing.T) {
	_, addr := startServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	reader := bufio.NewReader(conn)

	_, err = conn.Write([]byte("*1\r\n$x\r\n"))
	require.NoError(t, err)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "-ERR Protocol error: invalid number\r\n", line)

	_, err = conn.Write([]byte("*1\r\n$4\r\nPING\r\n*2\r\n$4\r\nECHO\r\n$2\r\nhi\r\n"))
	require.NoError(t, err)
	line, err = reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "+PONG\r\n", line)
	line, _ = reader.ReadString('\n')
	assert.Equal(t, "$2\r\n", line)
	line, _ = reader.ReadString('\n')
	assert.Equal(t, "hi\r\n", line)
}

func TestServerStopClosesSessions(t *testing.T) {
	srv, addr := startServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("*1\r\n$4\r\nPING\r\n"))
	require.NoError(t, err)
	reader := bufio.NewReader(conn)
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	_, err = reader.ReadString('\n')
	require.NoError(t, err)

	require.NoError(t, srv.Stop())
	_, err = reader.ReadString('\n')
	assert.Error(t, err)
}
