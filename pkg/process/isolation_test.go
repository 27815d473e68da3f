//go:build !windows

package process

import (
	"os/exec"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("resource group isolation", func() {
	It("force-kills every process in the group on Terminate", func() {
		group, err := newResourceGroup(ResourceLimits{})
		Expect(err).ToNot(HaveOccurred())
		defer group.Close()

		cmd := exec.Command("sleep", "30")
		cmd.SysProcAttr = setSysProcAttr()
		Expect(cmd.Start()).To(Succeed())

		Expect(group.Assign(cmd.Process.Pid)).To(Succeed())
		Expect(group.Terminate()).To(Succeed())

		done := make(chan error, 1)
		go func() { done <- cmd.Wait() }()

		Eventually(done, 2*time.Second).Should(Receive())
	})

	It("Close is idempotent", func() {
		group, err := newResourceGroup(ResourceLimits{})
		Expect(err).ToNot(HaveOccurred())

		Expect(group.Close()).To(Succeed())
		Expect(group.Close()).To(Succeed())
	})

	It("Terminate on an unassigned group is a no-op", func() {
		group, err := newResourceGroup(ResourceLimits{})
		Expect(err).ToNot(HaveOccurred())
		defer group.Close()

		Expect(group.Terminate()).To(Succeed())
	})

	It("applies a memory limit without error when cgroups are writable", func() {
		group, err := newResourceGroup(ResourceLimits{MemoryMB: 64, MaxChildProcesses: 16})
		Expect(err).ToNot(HaveOccurred())
		defer group.Close()

		cmd := exec.Command("true")
		cmd.SysProcAttr = setSysProcAttr()
		Expect(cmd.Start()).To(Succeed())
		_ = group.Assign(cmd.Process.Pid)
		_ = cmd.Wait()
	})
})
