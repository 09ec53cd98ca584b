package comparecmder

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

var _ = Describe("Compare Command", func() {
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

	It("answers once per style with its own temperature", func() {
		var temperatures []float64
		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req map[string]any
			Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
			options := req["options"].(map[string]any)
			temp := options["temperature"].(float64)
			temperatures = append(temperatures, temp)

			body := fmt.Sprintf(`{"model":"test-model","message":{"role":"assistant","content":"answer at %.1f"},"done":true}`, temp)
			fmt.Fprint(w, body)
		}))
		configPath := writeConfig(upstream.URL)

		cmd := NewCompareCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs([]string{"--config", configPath, "Describe the ocean"})

		Expect(cmd.Execute()).To(Succeed())

		output := out.String()
		Expect(output).To(ContainSubstring("=== standard (temperature 0.7) ==="))
		Expect(output).To(ContainSubstring("=== creative (temperature 1.0) ==="))
		Expect(output).To(ContainSubstring("=== factual (temperature 0.3) ==="))
		Expect(output).To(ContainSubstring("answer at 0.7"))
		Expect(output).To(ContainSubstring("answer at 1.0"))
		Expect(output).To(ContainSubstring("answer at 0.3"))
		Expect(temperatures).To(Equal([]float64{0.7, 1.0, 0.3}))
	})
})
