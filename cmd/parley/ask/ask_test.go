package askcmder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ask Command", func() {
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

	runAsk := func(args ...string) (string, error) {
		cmd := NewAskCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		cmd.SetArgs(args)
		err := cmd.Execute()
		return out.String(), err
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

	It("prints the model answer", func() {
		var gotReq map[string]any
		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/chat"))
			Expect(json.NewDecoder(r.Body).Decode(&gotReq)).To(Succeed())
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"model":"test-model","message":{"role":"assistant","content":"Canned answer."},"done":true}`)
		}))
		configPath := writeConfig(upstream.URL)

		out, err := runAsk("--config", configPath, "What", "is", "Go?")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Canned answer."))

		Expect(gotReq["model"]).To(Equal("test-model"))
		messages := gotReq["messages"].([]any)
		first := messages[0].(map[string]any)
		Expect(first["role"]).To(Equal("user"))
		Expect(first["content"]).To(ContainSubstring("You are Nova"))
		Expect(first["content"]).To(ContainSubstring("What is Go?"))
	})

	It("applies the factual style temperature", func() {
		var gotReq map[string]any
		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(json.NewDecoder(r.Body).Decode(&gotReq)).To(Succeed())
			fmt.Fprint(w, `{"model":"test-model","message":{"role":"assistant","content":"1970."},"done":true}`)
		}))
		configPath := writeConfig(upstream.URL)

		out, err := runAsk("--config", configPath, "--style", "factual", "--meta", "When was Unix born?")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("1970."))
		Expect(out).To(ContainSubstring("confidence: 1.0"))
		Expect(out).To(ContainSubstring("temperature: 0.3"))

		options := gotReq["options"].(map[string]any)
		Expect(options["temperature"]).To(BeNumerically("==", 0.3))
	})

	It("degrades to an error message when the model is unreachable", func() {
		configPath := writeConfig("http://127.0.0.1:1")

		out, err := runAsk("--config", configPath, "Anyone home?")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("Error generating response:"))
	})

	It("fails when the settings file is missing", func() {
		_, err := runAsk("--config", filepath.Join(tmpDir, "missing.yaml"), "Hi")
		Expect(err).To(HaveOccurred())
	})
})
