// Package snapshot renders a running dashboard in headless Chrome and saves
// a full-page screenshot.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Options controls one capture
type Options struct {
	URL          string
	Width        int64
	Height       int64
	Timeout      time.Duration
	WaitSelector string        // Element that must be visible before capturing
	Settle       time.Duration // Extra wait for client-side charts to draw
	Visible      bool          // Show the browser window instead of running headless
}

// withDefaults fills unset fields
func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1280
	}
	if o.Height <= 0 {
		o.Height = 900
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.WaitSelector == "" {
		o.WaitSelector = "#summary"
	}
	if o.Settle < 0 {
		o.Settle = 0
	}
	return o
}

// Capture loads the page and returns a full-page PNG screenshot
func Capture(ctx context.Context, opts Options) ([]byte, error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("snapshot URL is required")
	}
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", !opts.Visible),
		chromedp.WindowSize(int(opts.Width), int(opts.Height)),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, opts.Timeout)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(opts.Width, opts.Height),
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible(opts.WaitSelector, chromedp.ByQuery),
		chromedp.Sleep(opts.Settle),
		chromedp.FullScreenshot(&buf, 100),
	); err != nil {
		return nil, fmt.Errorf("capturing %s: %w", opts.URL, err)
	}

	return buf, nil
}
