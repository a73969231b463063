package catalog

import "github.com/John-Robertt/spritekit/internal/domain"

// 各游戏版本族（release context）。sprite 只存在于实体首次登场及之后的世代。
const (
	BlackWhite          domain.ReleaseContext = "black-white"
	HeartGoldSoulSilver domain.ReleaseContext = "heartgold-soulsilver"
	Platinum            domain.ReleaseContext = "platinum"
	DiamondPearl        domain.ReleaseContext = "diamond-pearl"
	Emerald             domain.ReleaseContext = "emerald"
	RubySapphire        domain.ReleaseContext = "ruby-sapphire"
	FireRedLeafGreen    domain.ReleaseContext = "firered-leafgreen"
)

// MaxGeneration 是本目录支持的最高世代。
const MaxGeneration = 5

// releaseContexts 按世代给出可用的 release context（越老的世代累积的旧版本族越多）。
var releaseContexts = map[int][]domain.ReleaseContext{
	5: {BlackWhite},
	4: {BlackWhite, HeartGoldSoulSilver, Platinum, DiamondPearl},
	3: {BlackWhite, HeartGoldSoulSilver, Platinum, DiamondPearl, Emerald, RubySapphire},
	2: {BlackWhite, HeartGoldSoulSilver, Platinum, DiamondPearl, Emerald, RubySapphire},
	1: {BlackWhite, HeartGoldSoulSilver, Platinum, DiamondPearl, Emerald, RubySapphire, FireRedLeafGreen},
}

// ReleaseContexts 返回 generation 对应的有序 release context 列表。
// generation 不在 1..MaxGeneration 时返回 nil。返回值是副本，调用方可以随意修改。
func ReleaseContexts(generation int) []domain.ReleaseContext {
	ctxs, ok := releaseContexts[generation]
	if !ok {
		return nil
	}
	return append([]domain.ReleaseContext(nil), ctxs...)
}
