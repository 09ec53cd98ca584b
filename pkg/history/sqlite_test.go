package history_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/parleylabs/parley/pkg/chat"
	"github.com/parleylabs/parley/pkg/history"
)

var _ = Describe("SQLiteStore", func() {
	var (
		store *history.SQLiteStore
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		store, err = history.NewSQLiteStore(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if store != nil {
			store.Close()
		}
	})

	Describe("NewSQLiteStore", func() {
		It("creates a store with a file database", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "parley.db")

			s, err := history.NewSQLiteStore(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("SaveTurn and Messages", func() {
		It("stores a turn and returns it in order", func() {
			user := chat.NewMessage(chat.RoleUser, "System: ...\nHuman: hello")
			assistant := chat.NewMessage(chat.RoleAssistant, "Hello! How can I help?")

			Expect(store.SaveTurn(ctx, "s1", user, assistant)).To(Succeed())

			got, err := store.Messages(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(2))
			Expect(got[0].Role).To(Equal(chat.RoleUser))
			Expect(got[0].Content).To(Equal("System: ...\nHuman: hello"))
			Expect(got[1].Role).To(Equal(chat.RoleAssistant))
			Expect(got[1].Content).To(Equal("Hello! How can I help?"))
		})

		It("keeps turns in insertion order across saves", func() {
			for _, q := range []string{"first", "second", "third"} {
				user := chat.NewMessage(chat.RoleUser, q)
				assistant := chat.NewMessage(chat.RoleAssistant, "answer")
				Expect(store.SaveTurn(ctx, "s1", user, assistant)).To(Succeed())
			}

			got, err := store.Messages(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(6))
			Expect(got[0].Content).To(Equal("first"))
			Expect(got[2].Content).To(Equal("second"))
			Expect(got[4].Content).To(Equal("third"))
		})

		It("round-trips message metadata", func() {
			user := chat.NewMessage(chat.RoleUser, "hello")
			assistant := chat.NewMessage(chat.RoleAssistant, "hi")
			assistant.Metadata = map[string]any{"response_type": "creative", "temperature": 1.0}

			Expect(store.SaveTurn(ctx, "s1", user, assistant)).To(Succeed())

			got, err := store.Messages(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got[1].Metadata).To(HaveKeyWithValue("response_type", "creative"))
			Expect(got[1].Metadata).To(HaveKeyWithValue("temperature", 1.0))
		})

		It("returns an empty slice for unknown sessions", func() {
			got, err := store.Messages(ctx, "never-seen")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeEmpty())
		})

		It("keeps sessions separate", func() {
			Expect(store.SaveTurn(ctx, "a",
				chat.NewMessage(chat.RoleUser, "from a"),
				chat.NewMessage(chat.RoleAssistant, "to a"),
			)).To(Succeed())
			Expect(store.SaveTurn(ctx, "b",
				chat.NewMessage(chat.RoleUser, "from b"),
				chat.NewMessage(chat.RoleAssistant, "to b"),
			)).To(Succeed())

			got, err := store.Messages(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(2))
			Expect(got[0].Content).To(Equal("from a"))
		})
	})

	Describe("Sessions", func() {
		It("lists sessions with stored messages, sorted", func() {
			for _, id := range []string{"cli_b", "default_session", "cli_a"} {
				Expect(store.SaveTurn(ctx, id,
					chat.NewMessage(chat.RoleUser, "q"),
					chat.NewMessage(chat.RoleAssistant, "r"),
				)).To(Succeed())
			}

			got, err := store.Sessions(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal([]string{"cli_a", "cli_b", "default_session"}))
		})

		It("returns an empty slice for an empty store", func() {
			got, err := store.Sessions(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeEmpty())
		})
	})

	Describe("Clear", func() {
		It("removes only the named session", func() {
			Expect(store.SaveTurn(ctx, "a",
				chat.NewMessage(chat.RoleUser, "q"),
				chat.NewMessage(chat.RoleAssistant, "r"),
			)).To(Succeed())
			Expect(store.SaveTurn(ctx, "b",
				chat.NewMessage(chat.RoleUser, "q"),
				chat.NewMessage(chat.RoleAssistant, "r"),
			)).To(Succeed())

			Expect(store.Clear(ctx, "a")).To(Succeed())

			got, err := store.Messages(ctx, "a")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeEmpty())

			got, err = store.Messages(ctx, "b")
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(2))
		})

		It("is a no-op for unknown sessions", func() {
			Expect(store.Clear(ctx, "never-seen")).To(Succeed())
		})
	})
})
