package frame_test

import (
	"context"
	"encoding/binary"
	"net"
	"time"

	"github.com/SandboxServers/MeridianConsole-sub006/internal/apperr"
	"github.com/SandboxServers/MeridianConsole-sub006/pkg/ipc/frame"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Framer", func() {
	var (
		clientConn, serverConn net.Conn
		client, server         *frame.Framer
		ctx                    context.Context
	)

	BeforeEach(func() {
		clientConn, serverConn = net.Pipe()
		client = frame.New(clientConn)
		server = frame.New(serverConn)
		ctx = context.Background()
	})

	AfterEach(func() {
		_ = clientConn.Close()
		_ = serverConn.Close()
	})

	Context("round trip", func() {
		It("delivers exactly the bytes written", func() {
			payload := []byte(`{"type":"heartbeat","sequence":1}`)

			done := make(chan error, 1)
			go func() { done <- client.WriteFrame(ctx, payload) }()

			got, err := server.ReadFrame(ctx, time.Second)
			Expect(err).ToNot(HaveOccurred())
			Expect(<-done).ToNot(HaveOccurred())
			Expect(got).To(Equal(payload))
		})

		It("preserves the order of several frames written on one connection", func() {
			msgs := [][]byte{[]byte("one"), []byte("two"), []byte("three")}

			go func() {
				for _, m := range msgs {
					_ = client.WriteFrame(ctx, m)
				}
			}()

			for _, want := range msgs {
				got, err := server.ReadFrame(ctx, time.Second)
				Expect(err).ToNot(HaveOccurred())
				Expect(got).To(Equal(want))
			}
		})
	})

	Context("clean close", func() {
		It("reports ErrEndOfStream when the peer closes before sending a length prefix", func() {
			go func() { _ = clientConn.Close() }()

			_, err := server.ReadFrame(ctx, time.Second)
			Expect(err).To(Equal(frame.ErrEndOfStream))
		})
	})

	Context("oversize frames", func() {
		It("rejects a length prefix beyond MaxPayload without attempting to read a body", func() {
			var lenBuf [frame.LengthPrefixSize]byte
			binary.LittleEndian.PutUint32(lenBuf[:], 300000)

			go func() { _, _ = clientConn.Write(lenBuf[:]) }()

			_, err := server.ReadFrame(ctx, time.Second)
			Expect(apperr.IsCode(err, apperr.FrameOversize)).To(BeTrue())
		})

		It("refuses to write a payload larger than MaxPayload", func() {
			big := make([]byte, frame.MaxPayload+1)
			err := client.WriteFrame(ctx, big)
			Expect(apperr.IsCode(err, apperr.FrameOversize)).To(BeTrue())
		})
	})

	Context("zero length frames", func() {
		It("rejects a zero length prefix", func() {
			var lenBuf [frame.LengthPrefixSize]byte
			binary.LittleEndian.PutUint32(lenBuf[:], 0)

			go func() { _, _ = clientConn.Write(lenBuf[:]) }()

			_, err := server.ReadFrame(ctx, time.Second)
			Expect(apperr.IsCode(err, apperr.FrameZeroLength)).To(BeTrue())
		})
	})

	Context("concurrent writers", func() {
		It("never interleaves two concurrent WriteFrame calls", func() {
			a := []byte(`{"type":"output","data":"aaaaaaaaaa"}`)
			b := []byte(`{"type":"output","data":"bbbbbbbbbb"}`)

			errs := make(chan error, 2)
			go func() { errs <- client.WriteFrame(ctx, a) }()
			go func() { errs <- client.WriteFrame(ctx, b) }()

			first, err1 := server.ReadFrame(ctx, time.Second)
			Expect(err1).ToNot(HaveOccurred())
			second, err2 := server.ReadFrame(ctx, time.Second)
			Expect(err2).ToNot(HaveOccurred())

			Expect(<-errs).ToNot(HaveOccurred())
			Expect(<-errs).ToNot(HaveOccurred())

			got := map[string]bool{string(first): true, string(second): true}
			Expect(got[string(a)]).To(BeTrue())
			Expect(got[string(b)]).To(BeTrue())
		})
	})
})
