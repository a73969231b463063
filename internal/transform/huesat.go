package transform

import (
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/John-Robertt/spritekit/internal/domain"
	"github.com/John-Robertt/spritekit/internal/infra/imgx"
)

// hue/sat 网格：7 个色相偏移 × 3 个饱和度倍率。
const (
	HueSteps = 7
	SatSteps = 3

	HueBase = -60
	HueStep = 20
	SatBase = 0.5
	SatStep = 0.5

	// identityHue/identitySat 是恒等变换（hueShift=0, satScale=1）对应的网格下标。
	identityHue = 3
	identitySat = 1

	// huePeriod 是色相环周期（半度单位，与 8 位 HSV 表示一致）。
	huePeriod = 180
)

// HueSat 是一个色相/饱和度组合。
type HueSat struct {
	HueShift int
	SatScale float64
}

// Suffix 返回写出文件名的后缀：str(hueShift) + str(int(satScale*2))。
// 例如 (-60, 0.5) -> "-601"，(0, 1.5) -> "03"。
func (hs HueSat) Suffix() string {
	return strconv.Itoa(hs.HueShift) + strconv.Itoa(int(hs.SatScale*2))
}

// HueSatGrid 返回除恒等组合之外的全部 20 个组合（按 hue 外层、sat 内层的顺序）。
func HueSatGrid() []HueSat {
	out := make([]HueSat, 0, HueSteps*SatSteps-1)
	for i := 0; i < HueSteps; i++ {
		for j := 0; j < SatSteps; j++ {
			if i == identityHue && j == identitySat {
				continue
			}
			out = append(out, HueSat{
				HueShift: HueBase + i*HueStep,
				SatScale: SatBase + float64(j)*SatStep,
			})
		}
	}
	return out
}

// AugmentHueSat 为 dir 下每张图片写出 20 个色相/饱和度变体：<原名去扩展名><后缀>.png。
// 只处理阶段入口时已存在的文件；解码/写入失败记录后跳过。
func AugmentHueSat(dir string, report Report) (domain.StageResult, error) {
	rec := newRecorder(domain.StageHueSat, report)
	names, err := rec.snapshot(dir)
	if err != nil {
		return rec.res, err
	}

	grid := HueSatGrid()
	for _, name := range names {
		src, err := imgx.Decode(filepath.Join(dir, name))
		if err != nil {
			rec.failed(name, err)
			continue
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		for _, hs := range grid {
			outName := base + hs.Suffix() + ".png"
			if err := imgx.WritePNG(filepath.Join(dir, outName), ApplyHueSat(src, hs)); err != nil {
				rec.failed(outName, err)
				continue
			}
			rec.written(outName)
		}
	}
	return rec.res, nil
}

// ApplyHueSat 返回 src 的色相/饱和度变换结果；不透明度平面原样保留。
func ApplyHueSat(src *image.NRGBA, hs HueSat) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)

	// sprite 颜色数很少，按 RGB 缓存转换结果。
	cache := make(map[[3]uint8][3]uint8, 64)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.NRGBAAt(x, y)
			key := [3]uint8{c.R, c.G, c.B}
			rgb, ok := cache[key]
			if !ok {
				rgb = shiftRGB(key, hs)
				cache[key] = rgb
			}
			dst.SetNRGBA(x, y, color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: c.A})
		}
	}
	return dst
}

func shiftRGB(rgb [3]uint8, hs HueSat) [3]uint8 {
	c := colorful.Color{R: float64(rgb[0]) / 255, G: float64(rgb[1]) / 255, B: float64(rgb[2]) / 255}
	h, s, v := c.Hsv()

	// colorful 的色相是角度 [0,360)；偏移量按半度单位换算。
	half := math.Mod(h/2+float64(hs.HueShift), huePeriod)
	if half < 0 {
		half += huePeriod
	}
	s = math.Min(math.Max(s*hs.SatScale, 0), 1)

	r, g, bl := colorful.Hsv(half*2, s, v).Clamped().RGB255()
	return [3]uint8{r, g, bl}
}
