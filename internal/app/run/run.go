package run

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/John-Robertt/spritekit/internal/catalog"
	"github.com/John-Robertt/spritekit/internal/config"
	"github.com/John-Robertt/spritekit/internal/domain"
	"github.com/John-Robertt/spritekit/internal/download"
	"github.com/John-Robertt/spritekit/internal/infra/fsx"
	"github.com/John-Robertt/spritekit/internal/infra/httpx"
	"github.com/John-Robertt/spritekit/internal/provider"
	"github.com/John-Robertt/spritekit/internal/provider/pokemondb"
	"github.com/John-Robertt/spritekit/internal/transform"
)

// Deps 是可替换的外部协作者；零值表示使用真实实现（pokemondb + httpx）。
type Deps struct {
	Provider provider.Provider
	Fetcher  download.Fetcher
}

// LockPath 返回工作目录的锁文件路径（位于目录旁，不进入目录快照）。
func LockPath(dir string) string {
	return filepath.Clean(dir) + ".lock"
}

// Execute 执行一次完整流程，并返回对外稳定的 RunReport。
// 只有传输错误（以及目录/锁等前置失败）会中止运行；逐文件错误只计入对应阶段。
func Execute(ctx context.Context, eff config.EffectiveConfig, deps Deps) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, deps, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出进度/阶段信息（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, deps Deps, obs Observer) domain.RunReport {
	if obs != nil {
		obs.OnStart(eff)
	}

	rr := domain.RunReport{
		Dir:       eff.Dir,
		StartedAt: time.Now().UTC(),
		Stages:    make([]domain.StageResult, 0, len(domain.Stages)),
	}
	finish := func() domain.RunReport {
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}
	fatal := func(stage, code string, err error) domain.RunReport {
		rr.Fatal = &domain.FatalError{Stage: stage, ErrorCode: code, ErrorMsg: err.Error()}
		return finish()
	}

	if err := fsx.EnsureDir(eff.Dir); err != nil {
		return fatal(domain.StageCatalog, domain.ErrCodeIOFailed, fmt.Errorf("创建工作目录失败：%w", err))
	}

	lock := flock.New(LockPath(eff.Dir))
	locked, err := lock.TryLock()
	if err != nil {
		return fatal(domain.StageCatalog, domain.ErrCodeLocked, fmt.Errorf("获取目录锁失败：%w", err))
	}
	if !locked {
		return fatal(domain.StageCatalog, domain.ErrCodeLocked, fmt.Errorf("工作目录正被另一个进程使用：%s", LockPath(eff.Dir)))
	}
	defer func() { _ = lock.Unlock() }()

	f := deps.Fetcher
	p := deps.Provider
	if p == nil {
		p = pokemondb.Provider{PageURL: eff.CatalogURL}
	}
	if f == nil {
		catalogPage := pokemondb.Provider{PageURL: eff.CatalogURL}
		c, err := httpx.NewClient(httpx.Options{
			ProxyURL:    eff.ProxyURL,
			HostHeaders: map[string]http.Header{catalogPage.Host(): pokemondb.RequestHeader()},
		})
		if err != nil {
			return fatal(domain.StageCatalog, domain.ErrCodeConfig, fmt.Errorf("proxy.url 无效：%w", err))
		}
		f = download.HTTPFetcher{Client: c}
	}

	// catalog：抓取目录页 -> 实体列表 -> 下载目录。
	started := time.Now()
	entities, pageURL, size, err := provider.FetchParse(ctx, p, f, eff.MaxGeneration)
	if err != nil {
		code := domain.ErrCodeParse
		if download.IsTransport(err) {
			code = domain.ErrCodeTransport
		}
		rr.Stages = append(rr.Stages, domain.StageResult{Name: domain.StageCatalog})
		return fatal(domain.StageCatalog, code, err)
	}
	entries := catalog.Build(entities, catalog.Options{ImageHost: eff.ImageHost})
	catSt := domain.StageResult{Name: domain.StageCatalog, Seen: len(entities)}
	rr.Stages = append(rr.Stages, catSt)
	if obs != nil {
		obs.OnStageDone(catSt, map[string]any{
			"page":     pageURL,
			"bytes":    size,
			"entities": len(entities),
			"entries":  len(entries),
		}, time.Since(started))
	}

	// download：传输错误致命。
	started = time.Now()
	var progress download.Progress
	if obs != nil {
		progress = func(_, _ int, _ domain.CatalogEntry, fr domain.FileResult, _ int) {
			obs.OnFile(domain.StageDownload, fr)
		}
	}
	dl, err := download.Run(ctx, entries, f, eff.Dir, progress)
	rr.Stages = append(rr.Stages, dl.Stage)
	if err != nil {
		return fatal(domain.StageDownload, domain.ErrCodeTransport, err)
	}
	if obs != nil {
		obs.OnStageDone(dl.Stage, map[string]any{"bytes": dl.Bytes}, time.Since(started))
	}

	// 变换阶段：固定顺序，每个阶段在入口快照目录。
	var report transform.Report
	if obs != nil {
		report = func(stage string, fr domain.FileResult) { obs.OnFile(stage, fr) }
	}
	stages := []struct {
		name string
		fn   func() (domain.StageResult, error)
	}{
		{domain.StageResize, func() (domain.StageResult, error) {
			return transform.Resize(eff.Dir, eff.Width, eff.Height, report)
		}},
		{domain.StageHueSat, func() (domain.StageResult, error) { return transform.AugmentHueSat(eff.Dir, report) }},
		{domain.StageMirror, func() (domain.StageResult, error) { return transform.Mirror(eff.Dir, report) }},
		{domain.StageBitDepth, func() (domain.StageResult, error) { return transform.NormalizeBitDepth(eff.Dir, report) }},
	}
	for _, s := range stages {
		started = time.Now()
		st, err := s.fn()
		st.Name = s.name
		fields := map[string]any{}
		if err != nil {
			var ce *transform.ConfigurationError
			if !errors.As(err, &ce) {
				// 目录无法列出：后续阶段同样无法进行。
				rr.Stages = append(rr.Stages, st)
				return fatal(s.name, domain.ErrCodeIOFailed, err)
			}
			// 配置错误：记录到阶段（该阶段不做任何事），后续阶段照常执行。
			st.Failed++
			st.Errors = append(st.Errors, domain.FileResult{
				Status:    domain.FileStatusFailed,
				ErrorCode: domain.ErrCodeConfig,
				ErrorMsg:  err.Error(),
			})
			fields["error"] = err.Error()
		}
		rr.Stages = append(rr.Stages, st)
		if obs != nil {
			obs.OnStageDone(st, fields, time.Since(started))
		}
	}

	return finish()
}
