package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/John-Robertt/spritekit/internal/app/run"
	"github.com/John-Robertt/spritekit/internal/config"
	"github.com/John-Robertt/spritekit/internal/domain"
)

var _ run.Observer = (*progressUI)(nil)

// progressUI 是交互终端的逐行进度输出。
//
// 所有过程信息写到 stderr（或 fallback 到 stdout），不污染 stdout 的 JSON 输出契约；
// run 层只发事件，CLI 决定如何展示。
type progressUI struct {
	w io.Writer

	startedAt time.Time
	// 每个阶段已输出的文件行数（用于 [stage #n] 前缀）。
	counts map[string]int
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{w: w, counts: map[string]int{}}
}

func (p *progressUI) OnStart(eff config.EffectiveConfig) {
	now := time.Now()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	fmt.Fprintf(p.w, "[%s] spritekit\n", now.Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  dir: %s\n", eff.Dir)
	fmt.Fprintf(p.w, "  size: %dx%d\n", eff.Width, eff.Height)
	fmt.Fprintf(p.w, "  max_generation: %d\n", eff.MaxGeneration)
	fmt.Fprintf(p.w, "  catalog: %s\n", truncate(eff.CatalogURL, 120))
	fmt.Fprintf(p.w, "  image_host: %s\n", truncate(eff.ImageHost, 120))
	fmt.Fprintf(p.w, "  proxy: %s\n", formatProxy(eff.ProxyURL))
	fmt.Fprintln(p.w)
}

func (p *progressUI) OnStageDone(st domain.StageResult, fields map[string]any, dur time.Duration) {
	ts := time.Now().Format("15:04:05")
	switch st.Name {
	case domain.StageCatalog:
		fmt.Fprintf(p.w, "[%s] 目录: entities=%d entries=%d page=%s (%s, %s)\n",
			ts, intField(fields, "entities"), intField(fields, "entries"),
			truncate(stringField(fields, "page"), 80), humanize.Bytes(uint64(intField(fields, "bytes"))), formatShortDuration(dur),
		)
	case domain.StageDownload:
		fmt.Fprintf(p.w, "[%s] 下载: written=%d failed=%d total=%s (%s)\n",
			ts, st.Written, st.Failed, humanize.Bytes(uint64(intField(fields, "bytes"))), formatShortDuration(dur),
		)
	default:
		line := fmt.Sprintf("[%s] %s: seen=%d written=%d skipped=%d failed=%d (%s)",
			ts, st.Name, st.Seen, st.Written, st.Skipped, st.Failed, formatShortDuration(dur),
		)
		if msg := stringField(fields, "error"); msg != "" {
			line += " 配置错误：" + truncate(msg, 120)
		}
		fmt.Fprintln(p.w, line)
	}
	if st.Name == domain.StageBitDepth {
		fmt.Fprintf(p.w, "总耗时: %s\n", formatElapsed(time.Since(p.startedAt)))
	}
}

func (p *progressUI) OnFile(stage string, fr domain.FileResult) {
	p.counts[stage]++
	n := p.counts[stage]

	switch fr.Status {
	case domain.FileStatusFailed:
		fmt.Fprintf(p.w, "[%s #%d] %s FAIL %s: %s\n", stage, n, fr.Name, fr.ErrorCode, truncate(fr.ErrorMsg, 160))
	case domain.FileStatusSkipped:
		fmt.Fprintf(p.w, "[%s #%d] %s SKIP\n", stage, n, fr.Name)
	default:
		fmt.Fprintf(p.w, "[%s #%d] %s OK\n", stage, n, fr.Name)
	}
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

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

func intField(fields map[string]any, key string) int {
	if fields == nil {
		return 0
	}
	v, ok := fields[key]
	if !ok {
		return 0
	}
	switch x := v.(type) {
	case int:
		return x
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	default:
		return 0
	}
}
