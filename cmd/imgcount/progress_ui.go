package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/imgcount/internal/app/run"
	"github.com/John-Robertt/imgcount/internal/config"
	"github.com/John-Robertt/imgcount/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端下的进度输出。
//
// 所有内容写 stderr，不影响 stdout 的报告；详情页是整批抓取的，
// 等待期间由 keepalive 定期输出一行。
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	total int
	done  int
	ok    int
	fail  int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(cfg config.Config) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	fmt.Fprintf(p.w, "[%s] imgcount run\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	if cfg.File != "" {
		fmt.Fprintf(p.w, "  file: %s\n", cfg.File)
	}
	fmt.Fprintf(p.w, "  catalog: %s (country=%s, page_limit=%d)\n",
		truncate(cfg.CatalogBaseURL, 120), cfg.Country, cfg.PageLimit,
	)
	fmt.Fprintf(p.w, "  lookup: %s (api_key=%s)\n", truncate(cfg.LookupBaseURL, 120), onOff(cfg.LookupAPIKey != ""))
	fmt.Fprintf(p.w, "  detail: %s\n", truncate(cfg.DetailBaseURL, 120))
	fmt.Fprintf(p.w, "  proxy: %s\n", formatProxy(cfg.ProxyURL))
	fmt.Fprintf(p.w, "  count: %s\n", formatCountMode(cfg.Selector))
	fmt.Fprintln(p.w)

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case run.PhaseTotal:
		fmt.Fprintf(p.w, "目录总数: total=%d pages=%d (%s)\n",
			intField(fields, "total"), intField(fields, "pages"), formatShortDuration(dur),
		)
	case run.PhaseCatalog:
		fmt.Fprintf(p.w, "目录: movies=%d (%s)\n", intField(fields, "movies"), formatShortDuration(dur))
	case run.PhaseResolve:
		fromCatalog := intField(fields, "from_catalog")
		fromLookup := intField(fields, "from_lookup")
		unresolved := intField(fields, "unresolved")
		fmt.Fprintf(p.w, "IMDb 编号: catalog=%d lookup=%d unresolved=%d (%s)\n\n",
			fromCatalog, fromLookup, unresolved, formatShortDuration(dur),
		)
		p.total = fromCatalog + fromLookup + unresolved
		if p.total > 0 && !p.tickerStarted {
			p.startTickerLocked()
		}
	case run.PhaseDetails:
		fmt.Fprintf(p.w, "\n详情页: counted=%d failed=%d images=%d (%s)\n",
			intField(fields, "counted"), intField(fields, "failed"), intField(fields, "images"), formatShortDuration(dur),
		)
		p.stopTickerLocked()
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}

	p.lastPrinted = time.Now()
}

func (p *progressUI) OnItemDone(done, total int, d domain.DetailInfo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = done
	p.total = total

	id := d.IMDbID
	if id == "" {
		id = "-"
	}
	if d.OK() {
		p.ok++
		fmt.Fprintf(p.w, "[%d/%d] %s OK count=%d\n", done, total, id, *d.Count)
	} else {
		p.fail++
		fmt.Fprintf(p.w, "[%d/%d] %s FAIL %s: %s\n", done, total, id, d.ErrorCode, truncate(d.ErrorMsg, 160))
	}

	p.lastPrinted = time.Now()
	if p.done >= p.total {
		p.stopTickerLocked()
	}
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}
	stop := p.stopCh

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && p.done >= p.total {
					p.mu.Unlock()
					return
				}
				if time.Since(p.lastPrinted) > threshold {
					fmt.Fprintf(p.w, "进度: done=%d/%d ok=%d fail=%d elapsed=%s\n",
						p.done, p.total, p.ok, p.fail, formatElapsed(time.Since(p.startedAt)),
					)
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func (p *progressUI) stopTickerLocked() {
	if !p.tickerStarted {
		return
	}
	close(p.stopCh)
	p.tickerStarted = false
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func formatCountMode(selector string) string {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return "<img> 标签"
	}
	return "选择器 " + truncate(selector, 80)
}

func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (" + truncate(raw, 120) + ")"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	switch x := fields[key].(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	default:
		return 0
	}
}
