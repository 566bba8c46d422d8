// Command werbatch scores an offline dataset of prediction/reference pairs
// and prints the aggregate word error rate as text, Markdown, or JSON.
//
// Input is JSONL, one pair per line:
//
//	{"prediction": "this is the prediction", "reference": "this is the reference"}
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/asrbench/werval/internal/wer"
)

type pairRecord struct {
	Prediction string `json:"prediction"`
	Reference  string `json:"reference"`
}

type pairResult struct {
	Seq             int     `json:"seq"`
	Errors          int     `json:"errors"`
	ReferenceTokens int     `json:"reference_tokens"`
	Rate            float64 `json:"rate"` // per-pair rate, informational only
}

type report struct {
	Pairs           int          `json:"pairs"`
	Errors          int          `json:"errors"`
	ReferenceTokens int          `json:"reference_tokens"`
	WER             float64      `json:"wer"`
	Worst           []pairResult `json:"worst,omitempty"`
}

func main() {
	input := flag.String("input", "-", "JSONL dataset path, or - for stdin")
	workers := flag.Int("workers", runtime.NumCPU(), "concurrent scoring workers")
	format := flag.String("format", "text", "output format: text, markdown, or json")
	worst := flag.Int("worst", 5, "number of worst-scoring pairs to list (0 disables)")
	flag.Parse()

	in := os.Stdin
	if *input != "-" {
		f, err := os.Open(*input)
		if err != nil {
			fatalf("open input: %v", err)
		}
		defer f.Close()
		in = f
	}

	records, err := readDataset(in)
	if err != nil {
		fatalf("read dataset: %v", err)
	}
	if len(records) == 0 {
		fatalf("dataset is empty")
	}

	rep, err := scoreDataset(records, *workers, *worst)
	if err != nil {
		fatalf("score: %v", err)
	}

	switch *format {
	case "text":
		fmt.Print(renderText(rep))
	case "markdown":
		fmt.Print(renderMarkdown(rep))
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			fatalf("encode report: %v", err)
		}
	default:
		fatalf("unknown format %q", *format)
	}
}

func readDataset(r io.Reader) ([]pairRecord, error) {
	var records []pairRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec pairRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, scanner.Err()
}

// scoreDataset scores pairs on a bounded worker pool. Accumulation is
// commutative addition, so completion order does not affect the rate.
func scoreDataset(records []pairRecord, workers, worstN int) (*report, error) {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	results := make([]pairResult, len(records))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				predTokens := wer.Tokenize(records[i].Prediction)
				refTokens := wer.Tokenize(records[i].Reference)
				r := pairResult{
					Seq:             i + 1,
					Errors:          wer.Distance(predTokens, refTokens),
					ReferenceTokens: len(refTokens),
				}
				if r.ReferenceTokens > 0 {
					r.Rate = float64(r.Errors) / float64(r.ReferenceTokens)
				}
				results[i] = r
			}
		}()
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var totals wer.Counts
	for _, r := range results {
		totals.Add(wer.Counts{Errors: r.Errors, ReferenceTokens: r.ReferenceTokens})
	}

	rate, err := totals.Rate()
	if err != nil {
		return nil, err
	}

	rep := &report{
		Pairs:           len(records),
		Errors:          totals.Errors,
		ReferenceTokens: totals.ReferenceTokens,
		WER:             rate,
	}
	if worstN > 0 {
		rep.Worst = worstPairs(results, worstN)
	}
	return rep, nil
}

func worstPairs(results []pairResult, n int) []pairResult {
	sorted := make([]pairResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Rate > sorted[j].Rate
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func renderText(r *report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "pairs: %d\n", r.Pairs)
	fmt.Fprintf(&sb, "errors: %d\n", r.Errors)
	fmt.Fprintf(&sb, "reference tokens: %d\n", r.ReferenceTokens)
	fmt.Fprintf(&sb, "WER: %.4f\n", r.WER)
	return sb.String()
}

func renderMarkdown(r *report) string {
	var sb strings.Builder

	sb.WriteString("## WER Results\n\n")
	sb.WriteString("| Pairs | Errors | Reference Tokens | WER |\n")
	sb.WriteString("|-------|--------|------------------|-----|\n")
	fmt.Fprintf(&sb, "| %d | %d | %d | %.2f%% |\n", r.Pairs, r.Errors, r.ReferenceTokens, r.WER*100)

	if len(r.Worst) > 0 {
		sb.WriteString("\n### Worst pairs\n\n")
		sb.WriteString("| Pair | Errors | Reference Tokens | Rate |\n")
		sb.WriteString("|------|--------|------------------|------|\n")
		for _, p := range r.Worst {
			fmt.Fprintf(&sb, "| %d | %d | %d | %.2f%% |\n", p.Seq, p.Errors, p.ReferenceTokens, p.Rate*100)
		}
	}

	sb.WriteString("\n")
	return sb.String()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "werbatch: "+format+"\n", args...)
	os.Exit(1)
}
