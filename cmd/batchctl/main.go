// Package main provides batchctl, a CLI client that uploads a batch of files
// to the orchestrator and prints the normalized results.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/domain"
)

// progressEvent is one event pushed over the progress WebSocket.
type progressEvent struct {
	Type    string          `json:"type"`
	Ts      int64           `json:"ts"`
	BatchID string          `json:"batch_id"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// watcher streams progress events from the orchestrator.
type watcher struct {
	conn   *websocket.Conn
	events chan progressEvent
}

// newWatcher connects to the progress WebSocket and subscribes to all
// batches. The batch id is not known until the upload returns, so the
// wildcard watch is the only way to catch the first events.
func newWatcher(serverURL string) (*watcher, error) {
	wsURL := strings.Replace(serverURL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}

	if err := conn.WriteJSON(map[string]string{"type": "watch", "batch_id": "*"}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write watch: %w", err)
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read watch_ack: %w", err)
	}
	var ack struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &ack); err != nil || ack.Type != "watch_ack" {
		conn.Close()
		return nil, fmt.Errorf("expected watch_ack, got: %s", data)
	}

	w := &watcher{
		conn:   conn,
		events: make(chan progressEvent, 64),
	}
	go w.readLoop()
	return w, nil
}

func (w *watcher) readLoop() {
	defer close(w.events)
	for {
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Printf("Read error: %v", err)
			}
			return
		}
		var evt progressEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			log.Printf("Unmarshal error: %v", err)
			continue
		}
		w.events <- evt
	}
}

func (w *watcher) Close() error {
	return w.conn.Close()
}

// upload posts the files as one multipart batch and decodes the result.
func upload(serverURL string, paths []string) (*domain.BatchResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		part, err := writer.CreateFormFile("files", filepath.Base(path))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("build form: %w", err)
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		f.Close()
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("build form: %w", err)
	}

	resp, err := http.Post(serverURL+"/v1/batches", writer.FormDataContentType(), &buf)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result domain.BatchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

func printEvent(evt progressEvent) {
	ts := time.UnixMilli(evt.Ts).Format("15:04:05.000")
	if len(evt.Payload) > 0 {
		fmt.Printf("[%s] %-22s %s %s\n", ts, evt.Type, evt.BatchID, evt.Payload)
	} else {
		fmt.Printf("[%s] %-22s %s\n", ts, evt.Type, evt.BatchID)
	}
}

func printResults(result *domain.BatchResult) {
	for _, r := range result.Results {
		fmt.Printf("\n[%s] %s (%s)\n", strings.ToUpper(string(r.Status)), r.DisplayTitle, r.FileName)
		if r.StatusReason != "" {
			fmt.Printf("  reason: %s\n", r.StatusReason)
		}
		if len(r.Sections) > 0 {
			fmt.Printf("  sections: %d\n", len(r.Sections))
		}
		for _, insight := range r.Insights {
			fmt.Printf("  insight: %s\n", insight)
		}
		for _, rec := range r.Recommendations {
			fmt.Printf("  recommendation: %s\n", rec)
		}
	}

	if len(result.ConsolidatedRecommendations) > 0 {
		fmt.Println("\nConsolidated recommendations:")
		for i, rec := range result.ConsolidatedRecommendations {
			fmt.Printf("  %d. %s\n", i+1, rec)
		}
	}

	s := result.Summary
	fmt.Printf("\nBatch %s: %d files, %d tasks, %d unmatched, %d ok, %d degraded, %d failed (%dms)\n",
		result.BatchID, s.FileCount, s.TaskCount, s.NoMatchCount, s.OkCount, s.DegradedCount, s.FailedCount, s.DurationMs)
}

func main() {
	server := flag.String("server", "http://localhost:8080", "orchestrator base URL")
	watch := flag.Bool("watch", false, "stream progress events while the batch runs")
	flag.Parse()

	log.SetFlags(log.Ltime)

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: batchctl [-server URL] [-watch] file.csv...")
		os.Exit(1)
	}

	var w *watcher
	if *watch {
		var err error
		w, err = newWatcher(*server)
		if err != nil {
			log.Fatalf("Failed to connect watcher: %v", err)
		}
		defer w.Close()
	}

	type uploadOutcome struct {
		batch *domain.BatchResult
		err   error
	}
	resultCh := make(chan uploadOutcome, 1)
	go func() {
		batch, err := upload(*server, paths)
		resultCh <- uploadOutcome{batch: batch, err: err}
	}()

	var batch *domain.BatchResult
	if w == nil {
		outcome := <-resultCh
		if outcome.err != nil {
			log.Fatalf("Upload failed: %v", outcome.err)
		}
		batch = outcome.batch
	} else {
		// Print events as they stream in; stop once the upload has returned
		// and batch_done has been seen for the batch it created.
		done := make(map[string]bool)
		events := w.events
		pending := resultCh
		for {
			select {
			case outcome := <-pending:
				if outcome.err != nil {
					log.Fatalf("Upload failed: %v", outcome.err)
				}
				batch = outcome.batch
				pending = nil
			case evt, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				printEvent(evt)
				if evt.Type == "batch_done" {
					done[evt.BatchID] = true
				}
			}
			if batch != nil && done[batch.BatchID] {
				break
			}
			if pending == nil && events == nil {
				log.Printf("Watch connection closed before batch_done")
				break
			}
		}
	}

	printResults(batch)
}
