package protocol_test

import (
	"context"
	"net"
	"time"

	"github.com/SandboxServers/MeridianConsole-sub006/pkg/ipc/frame"
	"github.com/SandboxServers/MeridianConsole-sub006/pkg/ipc/protocol"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handlers.Run", func() {
	var (
		clientConn, serverConn net.Conn
		client                 *frame.Framer
	)

	BeforeEach(func() {
		clientConn, serverConn = net.Pipe()
		client = frame.New(clientConn)
	})

	AfterEach(func() {
		_ = clientConn.Close()
		_ = serverConn.Close()
	})

	It("dispatches each message type to its handler, strictly in order", func() {
		var seen []string

		h := &protocol.Handlers{
			OnCommand:   func(ctx context.Context, m *protocol.CommandMessage) { seen = append(seen, "command:"+string(m.Command)) },
			OnInput:     func(ctx context.Context, m *protocol.InputMessage) { seen = append(seen, "input:"+m.Input) },
			OnHeartbeat: func(ctx context.Context, m *protocol.HeartbeatMessage) { seen = append(seen, "heartbeat") },
			OnShutdown:  func(ctx context.Context, m *protocol.ShutdownMessage) { seen = append(seen, "shutdown") },
		}

		serverFramer := frame.New(serverConn)
		runDone := make(chan error, 1)
		go func() { runDone <- h.Run(context.Background(), serverFramer, time.Second) }()

		ctx := context.Background()
		Expect(client.WriteFrame(ctx, []byte(`{"type":"command","command":"GetStatus"}`))).To(Succeed())
		Expect(client.WriteFrame(ctx, []byte(`{"type":"input","input":"ping"}`))).To(Succeed())
		Expect(client.WriteFrame(ctx, []byte(`{"type":"heartbeat","sequence":1}`))).To(Succeed())
		Expect(client.WriteFrame(ctx, []byte(`{"type":"shutdown"}`))).To(Succeed())

		Eventually(func() []string { return seen }, time.Second).Should(Equal([]string{
			"command:GetStatus", "input:ping", "heartbeat", "shutdown",
		}))

		_ = clientConn.Close()
		Eventually(runDone, time.Second).Should(Receive(BeNil()))
	})

	It("ignores unknown and malformed frames without stopping the loop", func() {
		var seen []string
		h := &protocol.Handlers{
			OnHeartbeat: func(ctx context.Context, m *protocol.HeartbeatMessage) { seen = append(seen, "heartbeat") },
		}

		serverFramer := frame.New(serverConn)
		go func() { _ = h.Run(context.Background(), serverFramer, time.Second) }()

		ctx := context.Background()
		Expect(client.WriteFrame(ctx, []byte(`{"type":"bogus"}`))).To(Succeed())
		Expect(client.WriteFrame(ctx, []byte(`not json`))).To(Succeed())
		Expect(client.WriteFrame(ctx, []byte(`{"type":"heartbeat","sequence":7}`))).To(Succeed())

		Eventually(func() []string { return seen }, time.Second).Should(Equal([]string{"heartbeat"}))
	})
})
