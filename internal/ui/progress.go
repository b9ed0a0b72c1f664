package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// ProgressBar tracks execution across the selected test cases, with
// running ok/failed counters next to the bar.
type ProgressBar struct {
	bar   *progressbar.ProgressBar
	total int
}

// NewProgressBar creates a progress bar over count test cases.
func NewProgressBar(count int) *ProgressBar {
	p := &ProgressBar{total: count}
	p.bar = progressbar.NewOptions(count,
		progressbar.OptionSetDescription(p.describe(0, 0)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return p
}

// Update advances the bar to the current counters. A case counts as ok
// when none of its requested phases ended in a negative state.
func (p *ProgressBar) Update(ok, failed int) {
	p.bar.Set(ok + failed)
	p.bar.Describe(p.describe(ok, failed))
}

// Finish completes the bar.
func (p *ProgressBar) Finish() {
	p.bar.Finish()
}

func (p *ProgressBar) describe(ok, failed int) string {
	return fmt.Sprintf("%s %s, %s",
		color.CyanString("case %d/%d:", ok+failed, p.total),
		color.GreenString("%d ok", ok),
		color.RedString("%d failed", failed))
}
