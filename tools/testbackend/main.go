// Command testbackend is a minimal HTTP origin used as an end-to-end test
// double for the proxy: it answers every path with an identifying response
// and /health with 200, adapted from
// felipeagger-go-loadbalancer/tools/test_backend.go's raw ping/pong TCP
// listener into an HTTP origin matching this proxy's wire protocol.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

func main() {
	port := "9001"
	if len(os.Args) > 1 {
		port = os.Args[1]
	}

	hostname, _ := os.Hostname()
	pid := os.Getpid()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		body := fmt.Sprintf("HOST: %s | PID: %d | TIME: %s\n", hostname, pid, time.Now().Format(time.RFC3339))
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(body))
	})

	addr := ":" + port
	log.Printf("test backend listening on %s (HOST: %s | PID: %d)", addr, hostname, pid)
	log.Fatal(http.ListenAndServe(addr, mux))
}
