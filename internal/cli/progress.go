package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements extract.ProgressReporter with a progress bar.
type CLIProgressReporter struct {
	out       io.Writer
	quiet     bool
	bar       *progressbar.ProgressBar
	total     int
	startTime time.Time
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	if out == nil {
		out = os.Stdout
	}
	return &CLIProgressReporter{
		out:       out,
		quiet:     quiet,
		startTime: time.Now(),
	}
}

func (c *CLIProgressReporter) OnCountComplete(total int) {
	c.total = total
	if c.quiet || total == 0 {
		return
	}

	fmt.Fprintf(c.out, "Extracting %s objects\n", formatNumber(total))
	c.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Extracting"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("obj/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnProgress(fraction float64, label string) {
	if c.quiet || c.bar == nil {
		return
	}
	c.bar.Set(int(math.Round(fraction * float64(c.total))))
}

func (c *CLIProgressReporter) OnError(message string) {
	if c.bar != nil {
		c.bar.Exit()
		fmt.Fprintln(c.out)
		c.bar = nil
	}
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "✗ Error: %s\n", message)
}

func (c *CLIProgressReporter) OnFinished(label string) {
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
	}
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "✓ Finished: %s in %.1fs\n", label, time.Since(c.startTime).Seconds())
}

// formatNumber adds thousands separators to n.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
