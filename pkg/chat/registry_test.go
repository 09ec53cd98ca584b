package chat_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/parleylabs/parley/pkg/chat"
)

var _ = Describe("SessionRegistry", func() {
	var registry *chat.SessionRegistry

	BeforeEach(func() {
		registry = chat.NewSessionRegistry()
	})

	Describe("GetOrCreate", func() {
		It("creates a history on first reference", func() {
			h := registry.GetOrCreate("session-1")

			Expect(h).NotTo(BeNil())
			Expect(h.Len()).To(BeZero())
		})

		It("returns the same history for the same id", func() {
			first := registry.GetOrCreate("session-1")
			second := registry.GetOrCreate("session-1")

			Expect(first).To(BeIdenticalTo(second))
		})

		It("shares appended messages across references", func() {
			registry.GetOrCreate("session-1").Append(chat.NewMessage(chat.RoleUser, "hello"))

			again := registry.GetOrCreate("session-1")
			Expect(again.Len()).To(Equal(1))
			Expect(again.Messages()[0].Content).To(Equal("hello"))
		})

		It("keeps separate histories for separate ids", func() {
			registry.GetOrCreate("session-a").Append(chat.NewMessage(chat.RoleUser, "a"))

			Expect(registry.GetOrCreate("session-b").Len()).To(BeZero())
		})
	})

	Describe("Sessions", func() {
		It("returns no ids for an empty registry", func() {
			Expect(registry.Sessions()).To(BeEmpty())
		})

		It("returns known ids in sorted order", func() {
			registry.GetOrCreate("zebra")
			registry.GetOrCreate("alpha")
			registry.GetOrCreate("mango")

			Expect(registry.Sessions()).To(Equal([]string{"alpha", "mango", "zebra"}))
		})

		It("does not duplicate repeated ids", func() {
			registry.GetOrCreate("one")
			registry.GetOrCreate("one")

			Expect(registry.Sessions()).To(HaveLen(1))
		})
	})
})

var _ = Describe("History", func() {
	It("appends in chronological order", func() {
		h := &chat.History{}
		h.Append(chat.NewMessage(chat.RoleUser, "first"))
		h.Append(chat.NewMessage(chat.RoleAssistant, "second"))
		h.Append(chat.NewMessage(chat.RoleUser, "third"))

		msgs := h.Messages()
		Expect(msgs).To(HaveLen(3))
		Expect(msgs[0].Content).To(Equal("first"))
		Expect(msgs[1].Content).To(Equal("second"))
		Expect(msgs[2].Content).To(Equal("third"))
	})

	It("grows by exactly one per append", func() {
		h := &chat.History{}
		for i := 1; i <= 5; i++ {
			h.Append(chat.NewMessage(chat.RoleUser, "msg"))
			Expect(h.Len()).To(Equal(i))
		}
	})

	It("returns a copy from Messages", func() {
		h := &chat.History{}
		h.Append(chat.NewMessage(chat.RoleUser, "original"))

		msgs := h.Messages()
		msgs[0].Content = "mutated"

		Expect(h.Messages()[0].Content).To(Equal("original"))
	})

	It("empties on Clear", func() {
		h := &chat.History{}
		h.Append(chat.NewMessage(chat.RoleUser, "one"))
		h.Append(chat.NewMessage(chat.RoleAssistant, "two"))

		h.Clear()

		Expect(h.Len()).To(BeZero())
		Expect(h.Messages()).To(BeEmpty())
	})
})
