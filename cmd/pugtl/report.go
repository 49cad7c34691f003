package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ZaguanLabs/pugtl/rewrite"
)

func writeJSONReport(w io.Writer, report *rewrite.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}

func writeTextReport(w io.Writer, report *rewrite.Report) {
	for _, f := range report.Files {
		switch {
		case f.Err != nil:
			fmt.Fprintf(w, "%s: error: %v\n", f.Path, f.Err)
		case report.DryRun:
			for _, c := range f.Stats.Candidates {
				where := string(c.Kind)
				if c.Attr != "" {
					where += " " + c.Attr
				}
				fmt.Fprintf(w, "%s:%d [%s] %s\n", f.Path, c.Line, where, c.Text)
			}
		case f.Changed:
			fmt.Fprintf(w, "%s: %d translated, %d cached, %d failed\n",
				f.Path, f.Stats.Translated, f.Stats.Cached, f.Stats.Failed)
		}
	}

	t := report.Totals
	if report.DryRun {
		fmt.Fprintf(w, "%d files, %d candidate spans (dry run, nothing written)\n",
			len(report.Files), len(t.Candidates))
		return
	}
	fmt.Fprintf(w, "%d files, %d changed, %d failed; spans: %d translated, %d cached, %d failed (%s)\n",
		len(report.Files), report.Changed, report.Failed,
		t.Translated, t.Cached, t.Failed, report.Duration.Round(time.Millisecond))
}
