package eval

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Reporter formats and outputs evaluation results.
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new reporter that writes to the given writer.
func NewReporter(w io.Writer) *Reporter {
	if w == nil {
		w = os.Stdout
	}
	return &Reporter{writer: w}
}

// PrintSummary prints a human-readable summary of results.
func (r *Reporter) PrintSummary(result *EvalResult) {
	w := r.writer

	fmt.Fprintln(w)
	fmt.Fprintln(w, "╔════════════════════════════════════════════════════════════════╗")
	fmt.Fprintln(w, "║           Coreference Evaluation Results                       ║")
	fmt.Fprintln(w, "╚════════════════════════════════════════════════════════════════╝")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "📊 Suite: %s\n", result.SuiteName)
	fmt.Fprintf(w, "📅 Time:  %s\n", result.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "⏱️  Duration: %v\n", result.Duration.Round(time.Millisecond))
	if len(result.Sieves) > 0 {
		fmt.Fprintf(w, "🧪 Sieves: %s\n", strings.Join(result.Sieves, " → "))
	}
	fmt.Fprintln(w)

	passRate := 0.0
	if result.TotalTests > 0 {
		passRate = float64(result.PassedTests) / float64(result.TotalTests) * 100
	}
	statusIcon := "✅"
	if result.FailedTests > 0 {
		statusIcon = "⚠️"
	}
	if passRate < 50 {
		statusIcon = "❌"
	}

	fmt.Fprintf(w, "%s Documents: %d/%d passed (%.1f%%)\n",
		statusIcon, result.PassedTests, result.TotalTests, passRate)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "┌─────────────────────────────────────────────────────────────────┐")
	fmt.Fprintln(w, "│                     Aggregate Metrics                           │")
	fmt.Fprintln(w, "├─────────────────────────────────────────────────────────────────┤")
	r.printScore(w, "MUC", result.Aggregate.MUC, result.Thresholds.MUC)
	fmt.Fprintln(w, "├─────────────────────────────────────────────────────────────────┤")
	r.printScore(w, "B³", result.Aggregate.BCubed, result.Thresholds.BCubed)
	fmt.Fprintln(w, "├─────────────────────────────────────────────────────────────────┤")
	r.printScore(w, "Pairwise", result.Aggregate.Pairwise, result.Thresholds.Pairwise)
	fmt.Fprintln(w, "├─────────────────────────────────────────────────────────────────┤")
	r.printMetricRow(w, "Average F1", result.Aggregate.Average(), -1)
	fmt.Fprintln(w, "└─────────────────────────────────────────────────────────────────┘")
	fmt.Fprintln(w)
}

func (r *Reporter) printScore(w io.Writer, name string, s Score, threshold float64) {
	r.printMetricRow(w, name+" P", s.Precision, -1)
	r.printMetricRow(w, name+" R", s.Recall, -1)
	r.printMetricRow(w, name+" F1", s.F1, threshold)
}

// printMetricRow prints a single metric row with optional threshold comparison.
func (r *Reporter) printMetricRow(w io.Writer, name string, value float64, threshold float64) {
	bar := r.progressBar(value, 20)
	status := " "
	if threshold >= 0 {
		if value >= threshold {
			status = "✓"
		} else {
			status = "✗"
		}
	}

	threshStr := ""
	if threshold >= 0 {
		threshStr = fmt.Sprintf(" (target: %.2f)", threshold)
	}

	fmt.Fprintf(w, "│ %s %-14s %s %.3f%s\n", status, name, bar, value, threshStr)
}

// progressBar creates a visual progress bar.
func (r *Reporter) progressBar(value float64, width int) string {
	filled := int(value * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s]", bar)
}

// PrintDetails prints detailed per-document results.
func (r *Reporter) PrintDetails(result *EvalResult) {
	w := r.writer

	fmt.Fprintln(w)
	fmt.Fprintln(w, "┌─────────────────────────────────────────────────────────────────┐")
	fmt.Fprintln(w, "│                     Per-Document Results                        │")
	fmt.Fprintln(w, "└─────────────────────────────────────────────────────────────────┘")
	fmt.Fprintln(w)

	for i, tr := range result.Results {
		status := "✅"
		if tr.Error != "" {
			status = "❌"
		} else if tr.Metrics.MUC.F1 < result.Thresholds.MUC {
			status = "⚠️"
		}

		fmt.Fprintf(w, "%s Document %d: %s (part %d)\n", status, i+1, truncate(tr.DocID, 50), tr.Part)
		fmt.Fprintf(w, "   Mentions: %d | Merges: %d | Duration: %v\n", tr.Mentions, tr.Merges, tr.Duration.Round(time.Microsecond))

		if tr.Error != "" {
			fmt.Fprintf(w, "   Error: %s\n", tr.Error)
		} else {
			fmt.Fprintf(w, "   MUC: %.2f | B³: %.2f | Pairwise: %.2f\n",
				tr.Metrics.MUC.F1, tr.Metrics.BCubed.F1, tr.Metrics.Pairwise.F1)
		}
		fmt.Fprintln(w)
	}
}

// PrintJSON outputs results as JSON.
func (r *Reporter) PrintJSON(result *EvalResult) error {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// SaveJSON saves results to a JSON file.
func (r *Reporter) SaveJSON(result *EvalResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// PrintCompact prints a one-line summary.
func (r *Reporter) PrintCompact(result *EvalResult) {
	status := "PASS"
	if result.FailedTests > 0 {
		status = "FAIL"
	}

	fmt.Fprintf(r.writer, "[%s] %d/%d docs | MUC=%.2f B3=%.2f Pairwise=%.2f Avg=%.2f | %v\n",
		status,
		result.PassedTests, result.TotalTests,
		result.Aggregate.MUC.F1,
		result.Aggregate.BCubed.F1,
		result.Aggregate.Pairwise.F1,
		result.Aggregate.Average(),
		result.Duration.Round(time.Millisecond),
	)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
