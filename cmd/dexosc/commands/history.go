package commands

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dexcom-osc-bridge/dexosc-go/pkg/history"
)

// HistoryFilterOptions are the shared filter flags of the history commands.
type HistoryFilterOptions struct {
	Action    string
	TimeStart string
	TimeEnd   string
}

func (o HistoryFilterOptions) build() (history.Filter, error) {
	var f history.Filter
	if o.Action != "" {
		a, err := history.ParseAction(o.Action)
		if err != nil {
			return f, err
		}
		f.Action = &a
	}
	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return f, fmt.Errorf("invalid --from: %w", err)
		}
		f.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return f, fmt.Errorf("invalid --to: %w", err)
		}
		f.TimeEnd = &t
	}
	return f, nil
}

func (o *HistoryFilterOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Action, "action", "", "only events with this action (sent, suppressed, failed, started, stopped)")
	cmd.Flags().StringVar(&o.TimeStart, "from", "", "only events at or after this time (RFC3339)")
	cmd.Flags().StringVar(&o.TimeEnd, "to", "", "only events before this time (RFC3339)")
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect a bridge history file",
		Long: `Read history files written by 'dexosc run --history-file'.

Examples:
  dexosc history view --action sent bridge.dlog
  dexosc history stats bridge.dlog
  dexosc history export --format csv -o bridge.csv bridge.dlog`,
	}

	var viewOpts HistoryFilterOptions
	view := &cobra.Command{
		Use:   "view <file>",
		Short: "Print events in human-readable form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := viewOpts.build()
			if err != nil {
				return err
			}
			return RunView(args[0], f, cmd.OutOrStdout())
		},
	}
	viewOpts.register(view)

	stats := &cobra.Command{
		Use:   "stats <file>",
		Short: "Summarize a history file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunStats(args[0], cmd.OutOrStdout())
		},
	}

	var exportOpts HistoryFilterOptions
	var format, output string
	export := &cobra.Command{
		Use:   "export <file>",
		Short: "Export events as JSON lines or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exportOpts.build()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if output != "" {
				out, err := os.OpenFile(output, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer out.Close()
				w = out
			}
			return RunExport(args[0], f, format, w)
		},
	}
	exportOpts.register(export)
	export.Flags().StringVar(&format, "format", "jsonl", "output format: jsonl or csv")
	export.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	cmd.AddCommand(view, stats, export)
	return cmd
}

// RunView prints matching events to w.
func RunView(path string, filter history.Filter, w io.Writer) error {
	return eachEvent(path, filter, func(e history.Event) error {
		formatEvent(w, e)
		return nil
	})
}

func formatEvent(w io.Writer, e history.Event) {
	ts := e.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z")
	fmt.Fprintf(w, "%s %-10s", ts, e.Action)

	switch e.Action {
	case history.ActionSent, history.ActionSuppressed:
		fmt.Fprintf(w, " %q", e.Message)
	case history.ActionFailed:
		if e.Value != 0 {
			fmt.Fprintf(w, " %q", e.Message)
		}
		fmt.Fprintf(w, " error=%q", e.Error)
	}
	if e.Endpoint != "" {
		fmt.Fprintf(w, " -> %s", e.Endpoint)
	}
	if e.Duration > 0 {
		fmt.Fprintf(w, " (%s)", e.Duration.Round(time.Millisecond))
	}
	fmt.Fprintln(w)
}

// RunStats prints a summary of the file to w.
func RunStats(path string, w io.Writer) error {
	reader, err := history.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer reader.Close()

	stats, err := history.Collect(reader)
	if err != nil {
		return fmt.Errorf("failed to read event: %w", err)
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, s *history.Stats) {
	fmt.Fprintln(w, "=== Bridge History ===")
	fmt.Fprintln(w)

	if s.Total > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n", s.Start.Format(time.RFC3339), s.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", s.End.Sub(s.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", s.Total)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Action:")
	for _, a := range history.Actions {
		if n := s.ByAction[a]; n > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", a.String()+":", n)
		}
	}

	if s.Readings > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Glucose (mg/dL): min %d, max %d, mean %.1f over %d readings\n",
			s.Min, s.Max, s.Mean(), s.Readings)
	}

	if s.LastError != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Last Error: %s\n", s.LastError)
	}
}

// RunExport writes matching events to w as "jsonl" or "csv".
func RunExport(path string, filter history.Filter, format string, w io.Writer) error {
	switch format {
	case "jsonl":
		enc := json.NewEncoder(w)
		return eachEvent(path, filter, func(e history.Event) error {
			return enc.Encode(exportRecord(e))
		})
	case "csv":
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"timestamp", "action", "value", "trend", "message", "endpoint", "error", "duration_ms"}); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		err := eachEvent(path, filter, func(e history.Event) error {
			value := ""
			if e.Value != 0 {
				value = strconv.Itoa(e.Value)
			}
			return cw.Write([]string{
				e.Timestamp.UTC().Format(time.RFC3339Nano),
				e.Action.String(),
				value,
				e.Trend,
				e.Message,
				e.Endpoint,
				e.Error,
				strconv.FormatInt(e.Duration.Milliseconds(), 10),
			})
		})
		cw.Flush()
		if err != nil {
			return err
		}
		return cw.Error()
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

type jsonEvent struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	Value      int       `json:"value,omitempty"`
	Trend      string    `json:"trend,omitempty"`
	Glyph      string    `json:"glyph,omitempty"`
	Message    string    `json:"message,omitempty"`
	Endpoint   string    `json:"endpoint,omitempty"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms,omitempty"`
}

func exportRecord(e history.Event) jsonEvent {
	return jsonEvent{
		Timestamp:  e.Timestamp.UTC(),
		Action:     e.Action.String(),
		Value:      e.Value,
		Trend:      e.Trend,
		Glyph:      e.Glyph,
		Message:    e.Message,
		Endpoint:   e.Endpoint,
		Error:      e.Error,
		DurationMS: e.Duration.Milliseconds(),
	}
}

func eachEvent(path string, filter history.Filter, fn func(history.Event) error) error {
	reader, err := history.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer reader.Close()

	for {
		e, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
}
