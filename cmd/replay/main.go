// Replay tool for testing FraudGuard against labeled fraud data.
//
// Usage:
//   go run cmd/replay/main.go -csv /path/to/checks.csv -url http://localhost:8080
//
// The CSV has a header row and the columns:
//   user_id,transaction_id,amount_minor,device_id,ip_address,is_fraud
//
// Each row is sent to POST /risk/assess; DECLINE and BLOCK count as fraud
// verdicts. The tool reports precision, recall, F1-score, and the confusion
// matrix against the is_fraud labels.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

type checkRow struct {
	UserID        string
	TransactionID string
	AmountMinor   int64
	DeviceID      string
	IPAddress     string
	IsFraud       bool
}

type assessRequest struct {
	UserID        string             `json:"userId"`
	TransactionID string             `json:"transactionId,omitempty"`
	Amount        int64              `json:"amount,omitempty"`
	Device        *deviceFingerprint `json:"deviceFingerprint,omitempty"`
}

type deviceFingerprint struct {
	DeviceID  string `json:"deviceId"`
	IPAddress string `json:"ipAddress"`
}

type assessResponse struct {
	Assessment struct {
		RiskScore int    `json:"riskScore"`
		RiskLevel string `json:"riskLevel"`
		Decision  string `json:"decision"`
	} `json:"assessment"`
}

type counters struct {
	truePositive  atomic.Int64
	falsePositive atomic.Int64
	trueNegative  atomic.Int64
	falseNegative atomic.Int64
	errors        atomic.Int64
}

func main() {
	csvPath := flag.String("csv", "", "path to labeled check data")
	baseURL := flag.String("url", "http://localhost:8080", "fraudguard base URL")
	workers := flag.Int("workers", 8, "concurrent senders")
	limit := flag.Int("limit", 0, "max rows to replay (0 = all)")
	flag.Parse()

	if *csvPath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay -csv <file> [-url <base>] [-workers N] [-limit N]")
		os.Exit(2)
	}

	rows, err := readRows(*csvPath, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", *csvPath, err)
		os.Exit(1)
	}
	fmt.Printf("replaying %d checks against %s with %d workers\n", len(rows), *baseURL, *workers)

	client := &http.Client{Timeout: 10 * time.Second}
	var c counters

	start := time.Now()
	jobs := make(chan checkRow)
	var wg sync.WaitGroup
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for row := range jobs {
				replayOne(client, *baseURL, row, &c)
			}
		}()
	}
	for _, row := range rows {
		jobs <- row
	}
	close(jobs)
	wg.Wait()

	printReport(&c, len(rows), time.Since(start))
}

func readRows(path string, limit int) ([]checkRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	if _, err := r.Read(); err != nil { // header
		return nil, err
	}

	var rows []checkRow
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < 6 {
			continue
		}

		amount, _ := strconv.ParseInt(rec[2], 10, 64)
		isFraud := rec[5] == "1" || rec[5] == "true"

		rows = append(rows, checkRow{
			UserID:        rec[0],
			TransactionID: rec[1],
			AmountMinor:   amount,
			DeviceID:      rec[3],
			IPAddress:     rec[4],
			IsFraud:       isFraud,
		})

		if limit > 0 && len(rows) >= limit {
			break
		}
	}
	return rows, nil
}

func replayOne(client *http.Client, baseURL string, row checkRow, c *counters) {
	req := assessRequest{
		UserID:        row.UserID,
		TransactionID: row.TransactionID,
		Amount:        row.AmountMinor,
	}
	if row.DeviceID != "" || row.IPAddress != "" {
		req.Device = &deviceFingerprint{DeviceID: row.DeviceID, IPAddress: row.IPAddress}
	}

	body, _ := json.Marshal(req)
	resp, err := client.Post(baseURL+"/risk/assess", "application/json", bytes.NewReader(body))
	if err != nil {
		c.errors.Add(1)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.errors.Add(1)
		io.Copy(io.Discard, resp.Body)
		return
	}

	var out assessResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.errors.Add(1)
		return
	}

	flagged := out.Assessment.Decision == "DECLINE" || out.Assessment.Decision == "BLOCK"
	switch {
	case flagged && row.IsFraud:
		c.truePositive.Add(1)
	case flagged && !row.IsFraud:
		c.falsePositive.Add(1)
	case !flagged && row.IsFraud:
		c.falseNegative.Add(1)
	default:
		c.trueNegative.Add(1)
	}
}

func printReport(c *counters, total int, elapsed time.Duration) {
	tp := float64(c.truePositive.Load())
	fp := float64(c.falsePositive.Load())
	fn := float64(c.falseNegative.Load())

	precision := 0.0
	if tp+fp > 0 {
		precision = tp / (tp + fp)
	}
	recall := 0.0
	if tp+fn > 0 {
		recall = tp / (tp + fn)
	}
	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	fmt.Println()
	fmt.Printf("checks:     %d in %s (%.0f/s)\n", total, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	fmt.Printf("errors:     %d\n", c.errors.Load())
	fmt.Println()
	fmt.Println("confusion matrix:")
	fmt.Printf("  true positive:  %d\n", c.truePositive.Load())
	fmt.Printf("  false positive: %d\n", c.falsePositive.Load())
	fmt.Printf("  true negative:  %d\n", c.trueNegative.Load())
	fmt.Printf("  false negative: %d\n", c.falseNegative.Load())
	fmt.Println()
	fmt.Printf("precision:  %.3f\n", precision)
	fmt.Printf("recall:     %.3f\n", recall)
	fmt.Printf("f1-score:   %.3f\n", f1)
}
