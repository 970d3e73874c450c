package webcapture

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const (
	maxBodySize      = 5 << 20
	scheduleWaitTime = 5 * time.Second
	bodyDrainTimeout = 5 * time.Second
)

// Session is one browser owned by a single Fetch. Close must release every resource.
type Session interface {
	Visit(ctx context.Context, url string, date time.Time, extraTokens []string) (Capture, error)
	Close() error
}

// Opener starts a Session.
type Opener func(ctx context.Context) (Session, error)

// BrowserOptions configures Chrome sessions.
type BrowserOptions struct {
	Headless        bool
	UserAgent       string
	Proxy           string
	PageLoadTimeout time.Duration
	SettleWait      time.Duration
	InteractionWait time.Duration
}

// chromeSlots allows one Chrome per process; a session holds its slot until Close.
var chromeSlots = make(chan struct{}, 1)

func acquireChrome(ctx context.Context) error {
	select {
	case chromeSlots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for browser slot: %w", ctx.Err())
	}
}

func releaseChrome() { <-chromeSlots }

type chromeSession struct {
	opts    BrowserOptions
	dir     string
	ctx     context.Context
	cancels []context.CancelFunc
	once    sync.Once
}

// ChromeOpener launches headless Chrome through chromedp.
func ChromeOpener(opts BrowserOptions) Opener {
	return func(ctx context.Context) (Session, error) {
		if err := acquireChrome(ctx); err != nil {
			return nil, err
		}

		dir, err := os.MkdirTemp("", "webcapture_chrome_")
		if err != nil {
			releaseChrome()
			return nil, fmt.Errorf("create chrome temp dir: %w", err)
		}

		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-blink-features", "AutomationControlled"),
			chromedp.WindowSize(1920, 1080),
			chromedp.UserDataDir(dir),
		)
		if opts.UserAgent != "" {
			allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
		}
		if opts.Proxy != "" {
			allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
		}

		s := &chromeSession{opts: opts, dir: dir}
		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
		browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
			slog.Debug("chromedp", "message", fmt.Sprintf(format, v...))
		}))
		s.ctx = browserCtx
		s.cancels = []context.CancelFunc{cancelBrowser, cancelAlloc}

		// Starts the browser process.
		if err := chromedp.Run(browserCtx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("start chrome: %w", err)
		}
		return s, nil
	}
}

func (s *chromeSession) Close() error {
	var err error
	s.once.Do(func() {
		for _, cancel := range s.cancels {
			cancel()
		}
		err = os.RemoveAll(s.dir)
		releaseChrome()
	})
	return err
}

// Visit opens url in a fresh tab, records matching JSON responses, runs the schedule
// interactions and snapshots the rendered DOM.
func (s *chromeSession) Visit(ctx context.Context, url string, date time.Time, extraTokens []string) (Capture, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.ctx)
	defer cancelTab()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	rec := newRecorder(tabCtx, extraTokens)
	chromedp.ListenTarget(tabCtx, rec.handle)

	loadCtx, cancelLoad := context.WithTimeout(tabCtx, s.opts.PageLoadTimeout)
	err := chromedp.Run(loadCtx,
		network.Enable(),
		chromedp.EmulateViewport(1920, 1080),
		chromedp.Navigate(url),
	)
	cancelLoad()
	if err != nil {
		return Capture{}, fmt.Errorf("navigate %s: %w", url, err)
	}

	if err := chromedp.Run(tabCtx, chromedp.Sleep(s.opts.SettleWait)); err != nil {
		return Capture{}, err
	}
	if err := interact(tabCtx, date); err != nil {
		slog.Debug("webcapture: page interaction failed", "url", url, "error", err)
	}
	if err := chromedp.Run(tabCtx, chromedp.Sleep(s.opts.InteractionWait)); err != nil {
		return Capture{}, err
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		slog.Debug("webcapture: DOM snapshot failed", "url", url, "error", err)
	}

	return Capture{Responses: rec.drain(bodyDrainTimeout), HTML: html}, nil
}

// recorder collects response bodies. Bodies are fetched outside the event callback since
// chromedp forbids blocking calls there. Once drain starts no new fetches are spawned.
type recorder struct {
	ctx      context.Context
	extra    []string
	getBody  func(ctx context.Context, id network.RequestID) ([]byte, error)
	mu       sync.Mutex
	methods  map[network.RequestID]string
	pending  map[network.RequestID]CapturedResponse
	done     []CapturedResponse
	draining bool
	wg       sync.WaitGroup
}

func newRecorder(ctx context.Context, extra []string) *recorder {
	return &recorder{
		ctx:     ctx,
		extra:   extra,
		getBody: chromeResponseBody,
		methods: map[network.RequestID]string{},
		pending: map[network.RequestID]CapturedResponse{},
	}
}

func chromeResponseBody(ctx context.Context, id network.RequestID) ([]byte, error) {
	var body []byte
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		body, err = network.GetResponseBody(id).Do(ctx)
		return err
	}))
	return body, err
}

func (r *recorder) handle(ev interface{}) {
	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		if e.Request == nil {
			return
		}
		r.mu.Lock()
		r.methods[e.RequestID] = e.Request.Method
		r.mu.Unlock()
	case *network.EventResponseReceived:
		if e.Response == nil || !ShouldCapture(e.Response.URL, r.extra) || !IsJSON(e.Response.MimeType) {
			return
		}
		r.mu.Lock()
		r.pending[e.RequestID] = CapturedResponse{
			URL:          e.Response.URL,
			Method:       r.methods[e.RequestID],
			ResourceType: string(e.Type),
			MimeType:     e.Response.MimeType,
			Status:       int(e.Response.Status),
		}
		r.mu.Unlock()
	case *network.EventLoadingFailed:
		r.mu.Lock()
		delete(r.pending, e.RequestID)
		delete(r.methods, e.RequestID)
		r.mu.Unlock()
	case *network.EventLoadingFinished:
		r.mu.Lock()
		resp, ok := r.pending[e.RequestID]
		delete(r.pending, e.RequestID)
		delete(r.methods, e.RequestID)
		if !ok || r.draining || e.EncodedDataLength > maxBodySize {
			r.mu.Unlock()
			return
		}
		r.wg.Add(1)
		r.mu.Unlock()
		go r.fetchBody(e.RequestID, resp)
	}
}

func (r *recorder) fetchBody(id network.RequestID, resp CapturedResponse) {
	defer r.wg.Done()
	body, err := r.getBody(r.ctx, id)
	if err != nil {
		slog.Debug("webcapture: response body unavailable", "url", resp.URL, "error", err)
		return
	}
	resp.Body = body
	r.mu.Lock()
	r.done = append(r.done, resp)
	r.mu.Unlock()
}

func (r *recorder) drain(timeout time.Duration) []CapturedResponse {
	r.mu.Lock()
	r.draining = true
	r.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(timeout):
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CapturedResponse, len(r.done))
	copy(out, r.done)
	return out
}

// interact nudges the page into requesting schedule data: waits for a schedule container,
// fills a date input, clicks the matching day and any "Schedule" control.
func interact(ctx context.Context, date time.Time) error {
	waitCtx, cancel := context.WithTimeout(ctx, scheduleWaitTime)
	_ = chromedp.Run(waitCtx, chromedp.WaitReady(`[class*="schedule"], [class*="class"], .booking-calendar`, chromedp.ByQuery))
	cancel()

	var clicked bool
	return chromedp.Run(ctx, chromedp.Evaluate(interactionScript(date), &clicked))
}

func interactionScript(date time.Time) string {
	return fmt.Sprintf(`(() => {
  let acted = false;
  const input = document.querySelector('input[type="date"], [class*="date-picker"] input, input[class*="date-picker"]');
  if (input) {
    input.value = %q;
    input.dispatchEvent(new Event('input', {bubbles: true}));
    input.dispatchEvent(new Event('change', {bubbles: true}));
    acted = true;
  }
  const day = Array.from(document.querySelectorAll('button')).find(b => b.textContent.trim() === %q);
  if (day) { day.click(); acted = true; }
  const view = Array.from(document.querySelectorAll('button, a')).find(el => /schedule/i.test(el.textContent || ''));
  if (view && view.tagName === 'BUTTON') { view.click(); acted = true; }
  return acted;
})()`, date.Format("2006-01-02"), fmt.Sprint(date.Day()))
}
