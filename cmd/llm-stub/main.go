// llm-stub is a local stand-in for the remote completion service. It
// answers both addressing conventions and can inject failures for manual
// retry testing.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens int `json:"max_tokens"`
}

func main() {
	var (
		addr      string
		fail      int
		status    int
		quota     bool
		retryHint int
	)
	flag.StringVar(&addr, "addr", ":8081", "Listen address")
	flag.IntVar(&fail, "fail", 0, "Fail the first N completion requests")
	flag.IntVar(&status, "fail.status", 503, "Status code for injected failures")
	flag.BoolVar(&quota, "fail.quota", false, "Make injected failures look like quota exhaustion")
	flag.IntVar(&retryHint, "fail.retryAfter", 0, "Retry-After seconds on injected failures (0 omits the header)")
	flag.Parse()

	var calls int64
	handler := func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		n := atomic.AddInt64(&calls, 1)
		if n <= int64(fail) {
			if retryHint > 0 {
				w.Header().Set("Retry-After", fmt.Sprint(retryHint))
			}
			w.WriteHeader(status)
			if quota {
				fmt.Fprint(w, `{"error":{"type":"insufficient_quota","message":"You exceeded your current quota."}}`)
			} else {
				fmt.Fprint(w, `{"error":{"message":"injected failure"}}`)
			}
			return
		}

		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		user := ""
		if len(req.Messages) >= 2 {
			user = req.Messages[1].Content
		}
		title := "item"
		for _, line := range strings.Split(user, "\n") {
			if strings.HasPrefix(line, "Title: ") {
				title = strings.TrimPrefix(line, "Title: ")
				break
			}
		}
		content := "- Stub summary of \"" + title + "\".\n- Content length: " +
			fmt.Sprint(len(user)) + " chars.\n- No remote model was consulted."

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}

	mux := http.NewServeMux()
	// Generic convention.
	mux.HandleFunc("/v1/chat/completions", handler)
	mux.HandleFunc("/chat/completions", handler)
	// Managed-cloud convention.
	mux.HandleFunc("/openai/deployments/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	})

	log.Printf("llm-stub listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
