package domain

// Entity 是目录中的一个实体（例如一个物种）。
//
// 约束：
// - DisplayName 保持站点原样（含 ♀/♂/空格/标点），规范化由 catalog 负责
// - Generation 取值 1..5；由目录页所在的世代分段决定
type Entity struct {
	DisplayName string
	Generation  int
}

// ReleaseContext 是一个 sprite 来源分组（某一代游戏的版本族），例如 "black-white"。
type ReleaseContext string

// SpriteVariant 是同一实体的不同配色版本。
type SpriteVariant int

const (
	VariantStandard SpriteVariant = iota
	VariantAlternate
)

// Variants 是构建目录时固定的变体遍历顺序。
var Variants = []SpriteVariant{VariantStandard, VariantAlternate}

// Token 返回变体在远程 URL 中的路径段。
func (v SpriteVariant) Token() string {
	switch v {
	case VariantAlternate:
		return "shiny"
	default:
		return "normal"
	}
}

// String 与 Token 相同（便于日志与测试输出）。
func (v SpriteVariant) String() string { return v.Token() }

// CatalogEntry 是一条已解析的下载任务（远程地址 + 本地文件名）。
//
// 不变量：同一次运行内 LocalName 唯一（由严格递增的 Index 前缀保证）。
type CatalogEntry struct {
	Index     int
	Token     string
	RemoteURL string
	LocalName string
}
