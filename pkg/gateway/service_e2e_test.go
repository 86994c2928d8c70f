package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"avicbot/pkg/bus"
	"avicbot/pkg/channel"
	"avicbot/pkg/config"
	"avicbot/pkg/metrics"
	"avicbot/pkg/responder"
)

// scriptedAdapter feeds fixed messages through the handler and records the
// replies, stopping on a shutdown reply the way the chat transport does.
type scriptedAdapter struct {
	name    string
	inbound []bus.InboundMessage
	err     error
	hold    bool

	mu       sync.Mutex
	outbound []bus.OutboundMessage
	done     chan struct{}
}

func (a *scriptedAdapter) Name() string {
	return a.name
}

func (a *scriptedAdapter) Run(ctx context.Context, handler channel.Handler) error {
	defer close(a.done)

	for _, inbound := range a.inbound {
		outbound, ok := handler(ctx, inbound)
		if !ok {
			continue
		}

		a.mu.Lock()
		a.outbound = append(a.outbound, outbound)
		a.mu.Unlock()

		if outbound.Shutdown {
			return nil
		}
	}

	if a.err != nil {
		return a.err
	}
	if a.hold {
		<-ctx.Done()
	}

	return nil
}

func (a *scriptedAdapter) outbounds() []bus.OutboundMessage {
	a.mu.Lock()
	defer a.mu.Unlock()

	outbound := make([]bus.OutboundMessage, len(a.outbound))
	copy(outbound, a.outbound)
	return outbound
}

func newE2EService(t *testing.T, cfg *config.Config, adapter channel.Adapter) *Service {
	t.Helper()

	table := responder.Defaults(responder.Settings{
		Nick:    "avicbot",
		Channel: "#noobenheim",
		Roll:    func(int) int { return 4 },
	})

	svc, err := NewService(cfg, responder.New(table, "avicennasis"), adapter, metrics.New(), slog.Default())
	require.NoError(t, err)
	return svc
}

func TestGatewayServiceRunRepliesUntilShutdown(t *testing.T) {
	adapter := &scriptedAdapter{
		name: "twitch",
		inbound: []bus.InboundMessage{
			{Channel: "#noobenheim", Sender: "viewer", Text: "!say hello world"},
			{Channel: "#noobenheim", Sender: "viewer", Text: "nothing to see here"},
			{Channel: "#noobenheim", Sender: "viewer", Text: "!die"},
			{Channel: "#noobenheim", Sender: "viewer", Text: "!random"},
			{Channel: "#noobenheim", Sender: "avicennasis", Text: "!die avicbot"},
			{Channel: "#noobenheim", Sender: "viewer", Text: "!say too late"},
		},
		done: make(chan struct{}),
	}

	svc := newE2EService(t, &config.Config{}, adapter)
	require.NoError(t, svc.Run(context.Background()))

	outbounds := adapter.outbounds()
	require.Len(t, outbounds, 3)
	require.Equal(t, []string{"hello world"}, outbounds[0].Lines)
	require.Equal(t, []string{"4."}, outbounds[1].Lines)
	require.True(t, outbounds[2].Shutdown)
	require.Equal(t, "Ok, Bye :(", outbounds[2].Lines[len(outbounds[2].Lines)-1])

	status := svc.currentStatus("ok")
	require.Equal(t, int64(5), status.MessagesHandled)
	require.False(t, status.Channels["twitch"].Running)
}

func TestGatewayServiceRunReturnsTransportError(t *testing.T) {
	adapter := &scriptedAdapter{
		name: "twitch",
		err:  errors.New("end of stream"),
		done: make(chan struct{}),
	}

	svc := newE2EService(t, &config.Config{}, adapter)
	err := svc.Run(context.Background())
	require.ErrorIs(t, err, adapter.err)
	require.Contains(t, err.Error(), "run twitch channel")

	status := svc.currentStatus("ok")
	require.Equal(t, "end of stream", status.Channels["twitch"].Error)
}

func TestGatewayServiceReadyzFollowsChannel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	port := freeTCPPort(t)
	cfg := &config.Config{
		Status: config.StatusConfig{Enabled: true, Host: "127.0.0.1", Port: port},
	}

	adapter := &scriptedAdapter{name: "twitch", hold: true, done: make(chan struct{})}
	svc := newE2EService(t, cfg, adapter)

	errCh := make(chan error, 1)
	go func() {
		errCh <- svc.Run(ctx)
	}()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	require.Equal(t, http.StatusOK, waitHTTPStatus(t, base+"/healthz", 2*time.Second))
	require.Equal(t, http.StatusOK, waitHTTPStatus(t, base+"/readyz", 2*time.Second))
	require.Equal(t, http.StatusOK, waitHTTPStatus(t, base+"/metrics", 2*time.Second))

	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for service run to exit")
	}
	require.False(t, svc.isReady())
}

func TestGatewayServiceStatusServerFailureStopsChannel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	port := listener.Addr().(*net.TCPAddr).Port
	cfg := &config.Config{
		Status: config.StatusConfig{Enabled: true, Host: "127.0.0.1", Port: port},
	}

	adapter := &scriptedAdapter{name: "twitch", hold: true, done: make(chan struct{})}
	svc := newE2EService(t, cfg, adapter)

	err = svc.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "start status server")

	select {
	case <-adapter.done:
	case <-time.After(time.Second):
		t.Fatal("adapter was not stopped")
	}
}

func waitHTTPStatus(t *testing.T, url string, timeout time.Duration) int {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		response, err := http.Get(url)
		if err == nil {
			statusCode := response.StatusCode
			require.NoError(t, response.Body.Close())
			return statusCode
		}

		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s: %v", url, err)
		}

		time.Sleep(25 * time.Millisecond)
	}
}

func freeTCPPort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	addr, ok := listener.Addr().(*net.TCPAddr)
	require.True(t, ok)
	return addr.Port
}
