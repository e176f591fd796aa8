// Package main is the capture client: it watches a snapshot directory,
// submits image batches to the ClassPulse server, and prints the session
// report on exit. The webcam (or any other source) only has to drop image
// files into the watched directory.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"
)

type options struct {
	serverURL      string
	watchDir       string
	jobID          string
	apiKey         string
	batchSize      int
	pollInterval   time.Duration
	statusInterval time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.serverURL, "server", "http://localhost:8080", "ClassPulse server base URL")
	flag.StringVar(&opts.watchDir, "dir", "webcam_captures", "directory to watch for snapshots")
	flag.StringVar(&opts.jobID, "job", "", "job id (default: session_<timestamp>)")
	flag.StringVar(&opts.apiKey, "api-key", os.Getenv("CLASSPULSE_API_KEY"), "API key, if the server requires one")
	flag.IntVar(&opts.batchSize, "batch-size", 5, "snapshots per analysis batch")
	flag.DurationVar(&opts.pollInterval, "poll-interval", 5*time.Second, "how often to scan for new snapshots")
	flag.DurationVar(&opts.statusInterval, "status-interval", 10*time.Second, "how often to print the latest status")
	flag.Parse()

	if opts.jobID == "" {
		opts.jobID = "session_" + time.Now().Format("20060102_150405")
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &client{
		baseURL: strings.TrimRight(opts.serverURL, "/"),
		apiKey:  opts.apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}

	fmt.Printf("Started monitoring session with job ID: %s\n", opts.jobID)
	fmt.Printf("Watching %s for snapshots...\n", opts.watchDir)

	seen := make(map[string]bool)
	var pending []string

	pollTicker := time.NewTicker(opts.pollInterval)
	defer pollTicker.Stop()
	statusTicker := time.NewTicker(opts.statusInterval)
	defer statusTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Final partial batch, then the report.
			if len(pending) > 0 {
				c.submitBatch(opts.jobID, pending)
			}
			fmt.Println("\nWaiting for final processing...")
			time.Sleep(5 * time.Second)
			c.printReport(opts.jobID)
			return nil

		case <-pollTicker.C:
			fresh, err := scanDir(opts.watchDir, seen)
			if err != nil {
				fmt.Fprintln(os.Stderr, "scan error:", err)
				continue
			}
			pending = append(pending, fresh...)
			for len(pending) >= opts.batchSize {
				batch := pending[:opts.batchSize]
				pending = pending[opts.batchSize:]
				c.submitBatch(opts.jobID, batch)
			}

		case <-statusTicker.C:
			c.printStatus(opts.jobID)
		}
	}
}

// scanDir returns unseen snapshot files in name order and marks them seen.
func scanDir(dir string, seen map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var fresh []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
		default:
			continue
		}
		path := filepath.Join(dir, e.Name())
		if seen[path] {
			continue
		}
		seen[path] = true
		fresh = append(fresh, path)
	}
	sort.Strings(fresh)
	return fresh, nil
}

// --- server client ---

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func (c *client) submitBatch(jobID string, paths []string) {
	body := map[string]any{
		"job_id":      jobID,
		"image_paths": paths,
	}

	var resp struct {
		Data struct {
			Status        string `json:"status"`
			Message       string `json:"message"`
			QueuePosition *int   `json:"queue_position"`
		} `json:"data"`
	}
	if err := c.post("/api/v1/analyze", body, &resp); err != nil {
		fmt.Fprintln(os.Stderr, "submit error:", err)
		return
	}

	fmt.Printf("\nAnalysis Request Status: %s\n", resp.Data.Status)
	if resp.Data.QueuePosition != nil {
		fmt.Printf("Queue Position: %d\n", *resp.Data.QueuePosition)
	}
	fmt.Printf("Message: %s\n", resp.Data.Message)
}

func (c *client) printStatus(jobID string) {
	var resp struct {
		Data map[string]any `json:"data"`
	}
	if err := c.get("/api/v1/jobs/"+jobID+"/status", &resp); err != nil {
		return // job may simply have no entries yet
	}

	fmt.Println("\nCurrent Student Status:")
	fmt.Println(strings.Repeat("=", 50))
	for _, k := range []string{"timestamp", "attentiveness_rating", "eye_contact_score", "posture_score", "focus_duration"} {
		if v, ok := resp.Data[k]; ok {
			fmt.Printf("%s: %v\n", k, v)
		}
	}
	fmt.Println(strings.Repeat("=", 50))
}

func (c *client) printReport(jobID string) {
	var resp struct {
		Data struct {
			Metrics struct {
				TotalEntries         int     `json:"total_entries"`
				AverageAttentiveness float64 `json:"average_attentiveness"`
				AverageEyeContact    float64 `json:"average_eye_contact"`
				AveragePosture       float64 `json:"average_posture"`
				TotalFocusDuration   int     `json:"total_focus_duration"`
			} `json:"metrics"`
			Analysis string `json:"analysis"`
			Message  string `json:"message"`
		} `json:"data"`
	}
	if err := c.get("/api/v1/jobs/"+jobID+"/report", &resp); err != nil {
		fmt.Fprintln(os.Stderr, "report error:", err)
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("SESSION SUMMARY")
	fmt.Println(strings.Repeat("=", 50))

	if resp.Data.Message != "" {
		fmt.Println(resp.Data.Message)
		return
	}

	m := resp.Data.Metrics
	fmt.Println("\nMETRICS:")
	fmt.Printf("Total Entries: %d\n", m.TotalEntries)
	fmt.Printf("Average Attentiveness: %.2f/10\n", m.AverageAttentiveness)
	fmt.Printf("Average Eye Contact: %.2f/10\n", m.AverageEyeContact)
	fmt.Printf("Average Posture: %.2f/10\n", m.AveragePosture)
	fmt.Printf("Total Focus Duration: %d seconds\n", m.TotalFocusDuration)

	fmt.Println("\nDETAILED ANALYSIS:")
	fmt.Println(resp.Data.Analysis)
	fmt.Println(strings.Repeat("=", 50))
}

func (c *client) post(path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *client) get(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *client) do(req *http.Request, out any) error {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
