package protocol_test

import (
	"strings"

	"github.com/SandboxServers/MeridianConsole-sub006/internal/apperr"
	"github.com/SandboxServers/MeridianConsole-sub006/pkg/ipc/protocol"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Decode", func() {
	It("decodes a command message", func() {
		msg, err := protocol.Decode([]byte(`{"type":"command","command":"Stop","correlationId":"X","timeoutSeconds":2}`))
		Expect(err).ToNot(HaveOccurred())

		cmd, ok := msg.(*protocol.CommandMessage)
		Expect(ok).To(BeTrue())
		Expect(cmd.Command).To(Equal(protocol.CommandStop))
		Expect(cmd.CorrelationID).To(Equal("X"))
		Expect(*cmd.TimeoutSeconds).To(Equal(2))
	})

	It("decodes an input message", func() {
		msg, err := protocol.Decode([]byte(`{"type":"input","input":"hello"}`))
		Expect(err).ToNot(HaveOccurred())
		in, ok := msg.(*protocol.InputMessage)
		Expect(ok).To(BeTrue())
		Expect(in.Input).To(Equal("hello"))
	})

	It("decodes a heartbeat message", func() {
		msg, err := protocol.Decode([]byte(`{"type":"heartbeat","sequence":42}`))
		Expect(err).ToNot(HaveOccurred())
		hb, ok := msg.(*protocol.HeartbeatMessage)
		Expect(ok).To(BeTrue())
		Expect(hb.Sequence).To(Equal(int64(42)))
	})

	It("decodes a shutdown message", func() {
		msg, err := protocol.Decode([]byte(`{"type":"shutdown","reason":"redeploy"}`))
		Expect(err).ToNot(HaveOccurred())
		sd, ok := msg.(*protocol.ShutdownMessage)
		Expect(ok).To(BeTrue())
		Expect(sd.Reason).To(Equal("redeploy"))
	})

	It("reports ProtocolMissingType when type is absent", func() {
		_, err := protocol.Decode([]byte(`{"command":"Stop"}`))
		Expect(apperr.IsCode(err, apperr.ProtocolMissingType)).To(BeTrue())
	})

	It("reports ProtocolMalformedJSON on invalid JSON", func() {
		_, err := protocol.Decode([]byte(`{not json`))
		Expect(apperr.IsCode(err, apperr.ProtocolMalformedJSON)).To(BeTrue())
	})

	It("reports ProtocolUnknownType on an unrecognized tag", func() {
		_, err := protocol.Decode([]byte(`{"type":"wat"}`))
		Expect(apperr.IsCode(err, apperr.ProtocolUnknownType)).To(BeTrue())
	})
})

var _ = Describe("TruncateLine", func() {
	It("passes short lines through untouched", func() {
		Expect(protocol.TruncateLine("short")).To(Equal("short"))
	})

	It("truncates lines over 64 KiB with the literal suffix", func() {
		long := strings.Repeat("a", protocol.MaxLineBytes+100)
		got := protocol.TruncateLine(long)

		Expect(len(got)).To(Equal(protocol.MaxLineBytes))
		Expect(got).To(HaveSuffix("... [TRUNCATED]"))
	})
})

var _ = Describe("Encode", func() {
	It("encodes a status message that Decode rejects as an outbound-only type", func() {
		now := protocol.Now()
		pid := 1234
		msg := protocol.NewStatus("Running", &pid, nil, "", now)

		payload, err := protocol.Encode(msg)
		Expect(err).ToNot(HaveOccurred())

		decoded, err := protocol.Decode(payload)
		Expect(err).To(HaveOccurred()) // status is an outbound-only type, unknown to Decode
		Expect(decoded).To(BeNil())
		Expect(apperr.IsCode(err, apperr.ProtocolUnknownType)).To(BeTrue())
	})
})
