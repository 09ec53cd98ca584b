package chat_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/parleylabs/parley/pkg/chat"
)

var _ = Describe("Conversation", func() {
	var conv *chat.Conversation

	BeforeEach(func() {
		conv = chat.NewConversation("test-session")
	})

	It("starts empty with the standard style", func() {
		Expect(conv.Len()).To(BeZero())
		Expect(conv.ResponseStyle()).To(Equal(chat.StyleStandard))
	})

	Describe("AddUserMessage", func() {
		It("appends a user message", func() {
			conv.AddUserMessage("hello there")

			entries := conv.History()
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Role).To(Equal(chat.RoleUser))
			Expect(entries[0].Content).To(Equal("hello there"))
			Expect(entries[0].Timestamp).NotTo(BeZero())
		})

		It("tags the message with the current response style", func() {
			conv.SetResponseStyle(chat.StyleCreative)
			conv.AddUserMessage("paint me a picture")

			msgs := conv.Messages()
			Expect(msgs[0].Metadata).To(HaveKeyWithValue("response_type", "creative"))
		})
	})

	Describe("AddAssistantMessage", func() {
		It("appends an assistant message with metadata", func() {
			conv.AddAssistantMessage("an answer", map[string]any{"model": "llama3.2"})

			msgs := conv.Messages()
			Expect(msgs).To(HaveLen(1))
			Expect(msgs[0].Role).To(Equal(chat.RoleAssistant))
			Expect(msgs[0].Metadata).To(HaveKeyWithValue("model", "llama3.2"))
		})

		It("accepts nil metadata", func() {
			conv.AddAssistantMessage("plain", nil)

			Expect(conv.Messages()[0].Metadata).To(BeNil())
		})
	})

	Describe("History", func() {
		It("preserves insertion order", func() {
			conv.AddUserMessage("question")
			conv.AddAssistantMessage("answer", nil)
			conv.AddUserMessage("follow-up")

			entries := conv.History()
			Expect(entries).To(HaveLen(3))
			Expect(entries[0].Role).To(Equal(chat.RoleUser))
			Expect(entries[1].Role).To(Equal(chat.RoleAssistant))
			Expect(entries[2].Role).To(Equal(chat.RoleUser))
		})
	})

	Describe("Clear", func() {
		It("empties the history regardless of prior content", func() {
			conv.AddUserMessage("one")
			conv.AddAssistantMessage("two", nil)

			conv.Clear()

			Expect(conv.History()).To(BeEmpty())
			Expect(conv.Len()).To(BeZero())
		})

		It("keeps the response style", func() {
			conv.SetResponseStyle(chat.StyleFactual)
			conv.AddUserMessage("check this")

			conv.Clear()

			Expect(conv.ResponseStyle()).To(Equal(chat.StyleFactual))
		})
	})

	Describe("SetResponseStyle", func() {
		It("affects only subsequently added messages", func() {
			conv.AddUserMessage("before")
			conv.SetResponseStyle(chat.StyleFactual)
			conv.AddUserMessage("after")

			msgs := conv.Messages()
			Expect(msgs[0].Metadata).To(HaveKeyWithValue("response_type", "standard"))
			Expect(msgs[1].Metadata).To(HaveKeyWithValue("response_type", "factual"))
		})

		It("normalizes unknown styles to standard", func() {
			conv.SetResponseStyle(chat.ResponseStyle("sarcastic"))

			Expect(conv.ResponseStyle()).To(Equal(chat.StyleStandard))
		})
	})
})

var _ = Describe("ResponseStyle", func() {
	DescribeTable("Normalize",
		func(in chat.ResponseStyle, want chat.ResponseStyle) {
			Expect(in.Normalize()).To(Equal(want))
		},
		Entry("standard stays standard", chat.StyleStandard, chat.StyleStandard),
		Entry("creative stays creative", chat.StyleCreative, chat.StyleCreative),
		Entry("factual stays factual", chat.StyleFactual, chat.StyleFactual),
		Entry("empty falls back to standard", chat.ResponseStyle(""), chat.StyleStandard),
		Entry("unknown falls back to standard", chat.ResponseStyle("weird"), chat.StyleStandard),
	)
})

var _ = Describe("ChatRequest", func() {
	It("defaults the session id when unset", func() {
		req := chat.ChatRequest{UserInput: "hi"}

		Expect(req.Session()).To(Equal(chat.DefaultSessionID))
	})

	It("keeps an explicit session id", func() {
		req := chat.ChatRequest{UserInput: "hi", SessionID: "mine"}

		Expect(req.Session()).To(Equal("mine"))
	})
})
