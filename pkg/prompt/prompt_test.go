package prompt_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/parleylabs/parley/pkg/chat"
	"github.com/parleylabs/parley/pkg/prompt"
)

var _ = Describe("Builder", func() {
	var builder *prompt.Builder

	BeforeEach(func() {
		builder = prompt.NewBuilder("Nova")
	})

	Describe("Build", func() {
		It("starts with the persona as the system line", func() {
			out, err := builder.Build("Hello there", chat.StyleStandard)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HavePrefix("System: You are Nova, a helpful AI assistant."))
		})

		It("ends with the user input as the final human turn", func() {
			out, err := builder.Build("What is Go?", chat.StyleStandard)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveSuffix("\nHuman: What is Go?"))
		})

		It("includes all three example turns in order", func() {
			out, err := builder.Build("ping", chat.StyleStandard)
			Expect(err).NotTo(HaveOccurred())

			first := strings.Index(out, "Human: Can you introduce yourself?")
			second := strings.Index(out, "Human: What can you do for me?")
			third := strings.Index(out, "Human: Tell me something fun about AI.")
			Expect(first).To(BeNumerically(">", 0))
			Expect(second).To(BeNumerically(">", first))
			Expect(third).To(BeNumerically(">", second))
		})

		It("interpolates the chatbot name into the introduction example", func() {
			out, err := builder.Build("ping", chat.StyleStandard)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("AI: Of course! I'm Nova, your friendly AI helper. I'm here to answer your questions and assist you."))
		})

		It("alternates Human and AI lines for the example turns", func() {
			out, err := builder.Build("ping", chat.StyleStandard)
			Expect(err).NotTo(HaveOccurred())

			lines := strings.Split(out, "\n")
			Expect(lines).To(HaveLen(8))
			Expect(lines[0]).To(HavePrefix("System: "))
			for i := 1; i < 7; i += 2 {
				Expect(lines[i]).To(HavePrefix("Human: "))
				Expect(lines[i+1]).To(HavePrefix("AI: "))
			}
			Expect(lines[7]).To(Equal("Human: ping"))
		})

		It("rejects empty input", func() {
			_, err := builder.Build("", chat.StyleStandard)
			Expect(err).To(MatchError(prompt.ErrEmptyInput))
		})

		It("rejects whitespace-only input", func() {
			_, err := builder.Build("   \t\n", chat.StyleStandard)
			Expect(err).To(MatchError(prompt.ErrEmptyInput))
		})

		DescribeTable("persona selection",
			func(style chat.ResponseStyle, phrase string) {
				out, err := builder.Build("ping", style)
				Expect(err).NotTo(HaveOccurred())
				Expect(out).To(ContainSubstring(phrase))
			},
			Entry("standard", chat.StyleStandard, "a helpful AI assistant."),
			Entry("creative", chat.StyleCreative, "an imaginative AI assistant. Be creative and think outside the box while responding."),
			Entry("factual", chat.StyleFactual, "a precise AI assistant. Stick to verified facts only. If unsure, explicitly state that."),
			Entry("unknown falls back to standard", chat.ResponseStyle("whimsical"), "a helpful AI assistant."),
			Entry("mixed case is normalized", chat.ResponseStyle("Creative"), "an imaginative AI assistant."),
		)

		It("produces identical output for identical inputs", func() {
			a, err := builder.Build("same question", chat.StyleCreative)
			Expect(err).NotTo(HaveOccurred())
			b, err := builder.Build("same question", chat.StyleCreative)
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(Equal(b))
		})
	})

	Describe("BuildSearch", func() {
		It("leads with the search policy before the persona", func() {
			out, err := builder.BuildSearch("latest Go release?", chat.StyleStandard)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HavePrefix("System: You are an intelligent AI assistant with access to real-time internet search capabilities"))
			Expect(out).To(ContainSubstring("You are Nova, a helpful AI assistant."))

			policy := strings.Index(out, "internet search capabilities")
			persona := strings.Index(out, "You are Nova,")
			Expect(persona).To(BeNumerically(">", policy))
		})

		It("swaps the factual hedge for a search directive", func() {
			out, err := builder.BuildSearch("ping", chat.StyleFactual)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Always use search tools to verify recent information."))
			Expect(out).NotTo(ContainSubstring("If unsure, explicitly state that."))
		})

		It("keeps the non-factual personas unchanged", func() {
			out, err := builder.BuildSearch("ping", chat.StyleCreative)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Be creative and think outside the box while responding."))
		})

		It("keeps the example turns and final human line", func() {
			out, err := builder.BuildSearch("What happened today?", chat.StyleStandard)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Human: Can you introduce yourself?"))
			Expect(out).To(HaveSuffix("\nHuman: What happened today?"))
		})

		It("rejects empty input", func() {
			_, err := builder.BuildSearch("  ", chat.StyleStandard)
			Expect(err).To(MatchError(prompt.ErrEmptyInput))
		})
	})
})
