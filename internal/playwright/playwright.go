// Package playwright captures a PNG of the rendered report with a headless browser.
package playwright

import (
	"context"
	"fmt"
	"time"

	"github.com/kamilpajak/ciscope/internal/server"
	"github.com/playwright-community/playwright-go"
)

// ViewportWidth matches the report container plus page padding.
const ViewportWidth = 1000

// ScreenshotHTML serves html on a loopback port and saves a full-page PNG to outPath.
// The Playwright driver and Chromium must already be installed.
func ScreenshotHTML(html []byte, outPath string) error {
	srv, err := server.Start(html, "analysis-report.html", "text/html; charset=utf-8")
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	}()

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("could not start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("could not launch browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		Viewport: &playwright.Size{Width: ViewportWidth, Height: 800},
	})
	if err != nil {
		return fmt.Errorf("could not create page: %w", err)
	}

	if _, err = page.Goto(srv.URL(), playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return fmt.Errorf("could not navigate: %w", err)
	}

	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(outPath),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return fmt.Errorf("could not take screenshot: %w", err)
	}
	return nil
}
