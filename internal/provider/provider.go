package provider

import (
	"context"

	"github.com/John-Robertt/spritekit/internal/domain"
	"github.com/John-Robertt/spritekit/internal/download"
)

// Provider 把“站点变化”限制在 provider 包内部；核心流程只依赖统一接口与稳定的 []domain.Entity。
//
// 约束：
// - Fetch 不做缓存、不做重试（重试由 httpx 统一实现）
// - Parse 必须是纯函数：相同输入 => 相同输出
type Provider interface {
	Name() string
	Fetch(ctx context.Context, f download.Fetcher) (html []byte, pageURL string, err error)
	Parse(html []byte, maxGeneration int) ([]domain.Entity, error)
}
