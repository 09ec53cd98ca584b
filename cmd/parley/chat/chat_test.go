package chatcmder

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Chat Command", func() {
	var (
		tmpDir   string
		upstream *httptest.Server
	)

	writeConfig := func(endpoint string) string {
		cfg := fmt.Sprintf(`ai_model:
  name: test-model
  backend: local
  endpoint: %s
chatbot:
  name: Nova
ui:
  page_title: Parley
  layout: centered
  app_title: Parley Chat
  app_message: Ask away
cache:
  enabled: false
database:
  url: ""
`, endpoint)
		path := filepath.Join(tmpDir, "settings.yaml")
		Expect(os.WriteFile(path, []byte(cfg), 0o644)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	AfterEach(func() {
		if upstream != nil {
			upstream.Close()
			upstream = nil
		}
	})

	It("streams replies and handles session commands", func() {
		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/x-ndjson")
			fmt.Fprintln(w, `{"model":"test-model","message":{"role":"assistant","content":"Hello"},"done":false}`)
			fmt.Fprintln(w, `{"model":"test-model","message":{"role":"assistant","content":" there"},"done":false}`)
			fmt.Fprintln(w, `{"model":"test-model","message":{"role":"assistant","content":""},"done":true}`)
		}))
		configPath := writeConfig(upstream.URL)

		cmd := NewChatCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetIn(strings.NewReader("Hi\n/style factual\n/style nonsense\n/clear\n/quit\n"))
		cmd.SetArgs([]string{"--config", configPath})

		Expect(cmd.Execute()).To(Succeed())

		output := out.String()
		Expect(output).To(ContainSubstring("Parley Chat"))
		Expect(output).To(ContainSubstring("Hello there"))
		Expect(output).To(ContainSubstring("Response style set to factual."))
		Expect(output).To(ContainSubstring(`Unknown style "nonsense", keeping factual.`))
		Expect(output).To(ContainSubstring("Conversation cleared."))
		Expect(output).To(ContainSubstring("Bye!"))
	})

	It("leaves cleanly on end of input", func() {
		configPath := writeConfig("http://127.0.0.1:1")

		cmd := NewChatCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetIn(strings.NewReader(""))
		cmd.SetArgs([]string{"--config", configPath})

		Expect(cmd.Execute()).To(Succeed())
	})
})
