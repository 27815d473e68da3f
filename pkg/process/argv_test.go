package process_test

import (
	"math/rand"
	"strings"

	"github.com/SandboxServers/MeridianConsole-sub006/pkg/process"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseArgv", func() {
	It("splits on unescaped whitespace", func() {
		Expect(process.ParseArgv("one two three")).To(Equal([]string{"one", "two", "three"}))
	})

	It("keeps whitespace literal inside double quotes", func() {
		Expect(process.ParseArgv(`one "two three" four`)).To(Equal([]string{"one", "two three", "four"}))
	})

	It("collapses repeated whitespace between tokens", func() {
		Expect(process.ParseArgv("one   two")).To(Equal([]string{"one", "two"}))
	})

	It("parses the documented worked example", func() {
		// Decoded raw argument string: a "b c" \ d\"
		input := "a \"b c\" \\ d\\\""
		Expect(process.ParseArgv(input)).To(Equal([]string{"a", "b c", "\\", `d"`}))
	})

	It("preserves a bare trailing backslash as the last literal character", func() {
		Expect(process.ParseArgv(`foo\`)).To(Equal([]string{`foo\`}))
	})

	It("yields the accumulated content when a quote is left open at end of string", func() {
		Expect(process.ParseArgv(`"unterminated`)).To(Equal([]string{"unterminated"}))
	})

	It("never emits empty tokens from plain whitespace", func() {
		Expect(process.ParseArgv("   ")).To(BeEmpty())
	})

	It("does emit an explicit empty-quoted token", func() {
		Expect(process.ParseArgv(`a "" b`)).To(Equal([]string{"a", "", "b"}))
	})
})

var _ = Describe("argv round trip", func() {
	It("round trips arbitrary printable argv lists through EscapeArgv/ParseArgv", func() {
		rng := rand.New(rand.NewSource(1))
		alphabet := []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_./:")

		randomToken := func() string {
			n := 1 + rng.Intn(8)
			var b strings.Builder
			for i := 0; i < n; i++ {
				b.WriteRune(alphabet[rng.Intn(len(alphabet))])
			}
			return b.String()
		}

		for trial := 0; trial < 200; trial++ {
			count := rng.Intn(5)
			argv := make([]string, count)
			for i := range argv {
				argv[i] = randomToken()
			}

			rendered := process.EscapeArgv(argv)
			got := process.ParseArgv(rendered)

			if count == 0 {
				Expect(got).To(BeEmpty())
			} else {
				Expect(got).To(Equal(argv))
			}
		}
	})
})
