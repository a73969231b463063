package catalog

import (
	"strconv"
	"strings"

	"github.com/John-Robertt/spritekit/internal/domain"
)

// DefaultImageHost 是 sprite 图片的默认域名。
const DefaultImageHost = "https://img.pokemondb.net"

// MultiFormBase 是唯一一个按子形态索引 sprite 的实体（规范化后的 token）。
const MultiFormBase = "Arceus"

// MultiForms 是 MultiFormBase 的固定子形态列表。
var MultiForms = []string{
	"normal", "bug", "dark", "dragon", "electric", "fighting", "fire", "flying", "ghost",
	"grass", "ground", "ice", "poison", "psychic", "rock", "steel", "water",
}

// Resolver 给出某一世代可用的 release context。
type Resolver func(generation int) []domain.ReleaseContext

// Options 控制目录构建；零值即默认行为。
type Options struct {
	ImageHost string
	Resolver  Resolver

	// MultiFormBase/MultiForms 为空时使用包级默认值。
	MultiFormBase string
	MultiForms    []string
}

// Build 枚举 实体 × 变体 × release context（× 子形态），生成确定性的下载目录。
//
// 约束：
// - 每一轮都从原始显示名重新规范化，不跨迭代携带任何被改写过的名字
// - Index 从 1 开始，在整个嵌套遍历中严格递增且不重置
// - 多形态实体只产出 "<base>-<form>" 条目，不产出裸名条目
func Build(entities []domain.Entity, opts Options) []domain.CatalogEntry {
	host := strings.TrimRight(strings.TrimSpace(opts.ImageHost), "/")
	if host == "" {
		host = DefaultImageHost
	}
	resolve := opts.Resolver
	if resolve == nil {
		resolve = ReleaseContexts
	}
	base := opts.MultiFormBase
	if base == "" {
		base = MultiFormBase
	}
	forms := opts.MultiForms
	if len(forms) == 0 {
		forms = MultiForms
	}

	out := make([]domain.CatalogEntry, 0, len(entities)*4)
	next := 1
	add := func(ctx domain.ReleaseContext, v domain.SpriteVariant, token string) {
		out = append(out, domain.CatalogEntry{
			Index:     next,
			Token:     token,
			RemoteURL: host + "/sprites/" + string(ctx) + "/" + v.Token() + "/" + token + ".png",
			LocalName: strconv.Itoa(next) + token + ".png",
		})
		next++
	}

	for _, e := range entities {
		ctxs := resolve(e.Generation)
		for _, v := range domain.Variants {
			for _, ctx := range ctxs {
				token := Normalize(e.DisplayName)
				if token != base {
					add(ctx, v, token)
					continue
				}
				for _, form := range forms {
					add(ctx, v, base+"-"+form)
				}
			}
		}
	}
	return out
}
