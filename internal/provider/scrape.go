package provider

import (
	"context"
	"fmt"

	"github.com/John-Robertt/spritekit/internal/domain"
	"github.com/John-Robertt/spritekit/internal/download"
)

// FetchParse 抓取目录页并解析出实体列表（只保留 generation <= maxGeneration 的实体）。
//
// 返回值：
// - entities：按页面顺序的实体列表
// - pageURL：实际抓取的目录页地址
// - html：抓取到的原始 HTML 字节数（用于进度展示）
func FetchParse(ctx context.Context, p Provider, f download.Fetcher, maxGeneration int) (entities []domain.Entity, pageURL string, size int, err error) {
	if p == nil {
		return nil, "", 0, fmt.Errorf("provider 不能为空")
	}
	if f == nil {
		return nil, "", 0, fmt.Errorf("fetcher 不能为空")
	}

	h, pageURL, err := p.Fetch(ctx, f)
	if err != nil {
		return nil, pageURL, 0, &Error{Provider: p.Name(), Stage: "fetch", Err: err}
	}
	entities, err = p.Parse(h, maxGeneration)
	if err != nil {
		return nil, pageURL, len(h), &Error{Provider: p.Name(), Stage: "parse", Err: err}
	}
	return entities, pageURL, len(h), nil
}

// Error 是 provider 阶段的可追溯错误。
// 上层可以据此把失败归类为 transport_failed / parse_failed。
type Error struct {
	Provider string // provider name（小写）
	Stage    string // "fetch" 或 "parse"
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider=%s stage=%s: %v", e.Provider, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
