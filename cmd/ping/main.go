// Container health probe for the server image:
//
//	HEALTHCHECK CMD ["/ping"]
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"notedash/internal/config"
)

const (
	defaultPort    = 8080
	healthEndpoint = "/healthz"
	requestTimeout = 2 * time.Second

	// exit codes
	codeRequestFailed     = 2
	codeBadHTTPStatus     = 3
	codeDecodeError       = 4
	codeReportedUnhealthy = 5
)

type healthResp struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Error   string `json:"error"`
}

func main() {
	port := defaultPort
	if cfg, err := config.Load(); err == nil {
		port = cfg.AppPort
	}

	code, msg := probe(&http.Client{Timeout: requestTimeout}, fmt.Sprintf("http://localhost:%d%s", port, healthEndpoint))
	log.Print(msg)
	os.Exit(code)
}

// probe returns the exit code and a log line for one health request
func probe(client *http.Client, url string) (int, string) {
	resp, err := client.Get(url)
	if err != nil {
		return codeRequestFailed, fmt.Sprintf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var h healthResp
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil && !errors.Is(err, io.EOF) {
		return codeDecodeError, fmt.Sprintf("decode error: %v", err)
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		return codeReportedUnhealthy, fmt.Sprintf("%s backend unhealthy: %s", h.Backend, h.Error)
	case resp.StatusCode != http.StatusOK:
		return codeBadHTTPStatus, fmt.Sprintf("unexpected HTTP status %d", resp.StatusCode)
	case h.Status != "" && h.Status != "ok":
		return codeReportedUnhealthy, fmt.Sprintf("service reported %q", h.Status)
	}
	return 0, fmt.Sprintf("service healthy (backend %s)", h.Backend)
}
