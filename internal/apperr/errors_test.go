package apperr_test

import (
	"errors"
	"fmt"

	"github.com/SandboxServers/MeridianConsole-sub006/internal/apperr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Error", func() {
	Context("construction", func() {
		It("carries its code and message", func() {
			err := apperr.New(apperr.FrameOversize, "frame too large")
			Expect(err.Code()).To(Equal(apperr.FrameOversize))
			Expect(err.Error()).To(ContainSubstring("frame too large"))
			Expect(err.Trace()).ToNot(BeEmpty())
		})

		It("has no parent by default", func() {
			err := apperr.New(apperr.FrameOversize, "frame too large")
			Expect(err.HasParent()).To(BeFalse())
		})
	})

	Context("wrapping", func() {
		It("wraps an underlying error as its parent", func() {
			cause := errors.New("short read")
			err := apperr.Wrap(apperr.FrameShortRead, "reading length prefix", cause)

			Expect(err.HasParent()).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("reading length prefix"))
			Expect(err.Error()).To(ContainSubstring("short read"))
		})

		It("supports errors.Is through the standard Unwrap([]error) contract", func() {
			cause := fmt.Errorf("boom")
			err := apperr.Wrap(apperr.ProcessSpawnFailed, "spawn failed", cause)

			Expect(errors.Is(err, cause)).To(BeTrue())
		})
	})

	Context("code hierarchy", func() {
		It("IsCode only matches the error's own code", func() {
			inner := apperr.New(apperr.ReservationNotFound, "no such token")
			outer := apperr.Wrap(apperr.ReservationNotPending, "cannot claim", inner)

			Expect(outer.IsCode(apperr.ReservationNotPending)).To(BeTrue())
			Expect(outer.IsCode(apperr.ReservationNotFound)).To(BeFalse())
		})

		It("HasCode searches the full parent chain", func() {
			inner := apperr.New(apperr.ReservationNotFound, "no such token")
			outer := apperr.Wrap(apperr.ReservationNotPending, "cannot claim", inner)

			Expect(outer.HasCode(apperr.ReservationNotFound)).To(BeTrue())
		})

		It("package-level HasCode helper handles plain errors gracefully", func() {
			Expect(apperr.HasCode(errors.New("plain"), apperr.FrameOversize)).To(BeFalse())
		})
	})

	Context("Add", func() {
		It("ignores nil parents", func() {
			err := apperr.New(apperr.ConfigInvalid, "bad config")
			err.Add(nil, nil)
			Expect(err.HasParent()).To(BeFalse())
		})

		It("accumulates multiple parents", func() {
			err := apperr.New(apperr.ConfigInvalid, "bad config")
			err.Add(errors.New("field a"), errors.New("field b"))
			Expect(err.HasParent()).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("field a"))
			Expect(err.Error()).To(ContainSubstring("field b"))
		})
	})
})
