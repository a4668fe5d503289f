package service

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const DefaultPageTimeout = 20 * time.Second

// Either marker satisfies the check: the results total or the
// narrative brief.
const markerExpr = `document.querySelector("#total-sales") !== null || document.querySelector("#brief") !== null`

// PageVerifier loads a participant's published page in a headless
// browser and checks for the required DOM markers. Each check gets its
// own browser instance, torn down on every exit path, so no rendering
// state leaks between participants.
type PageVerifier struct {
	timeout time.Duration
}

func NewPageVerifier(timeout time.Duration) *PageVerifier {
	if timeout <= 0 {
		timeout = DefaultPageTimeout
	}
	return &PageVerifier{timeout: timeout}
}

func (v *PageVerifier) Check(pageURL string) (bool, string) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(),
		chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	ctx, cancel := context.WithTimeout(browserCtx, v.timeout)
	defer cancel()

	var found bool
	err := chromedp.Run(ctx,
		chromedp.Navigate(pageURL),
		chromedp.Evaluate(markerExpr, &found),
	)
	if err != nil {
		return false, fmt.Sprintf("Error loading page: %v", err)
	}
	if found {
		return true, "Required element exists"
	}
	return false, "Element missing"
}
