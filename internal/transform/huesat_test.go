package transform

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/spritekit/internal/infra/imgx"
)

func TestHueSatGrid(t *testing.T) {
	grid := HueSatGrid()
	if len(grid) != HueSteps*SatSteps-1 {
		t.Fatalf("期望 20 个组合，实际 %d", len(grid))
	}
	seen := make(map[string]struct{}, len(grid))
	for _, hs := range grid {
		if hs.HueShift == 0 && hs.SatScale == 1 {
			t.Fatalf("不应包含恒等组合")
		}
		if hs.HueShift < -60 || hs.HueShift > 60 || hs.HueShift%20 != 0 {
			t.Fatalf("hueShift 越界：%d", hs.HueShift)
		}
		if _, ok := seen[hs.Suffix()]; ok {
			t.Fatalf("后缀重复：%q", hs.Suffix())
		}
		seen[hs.Suffix()] = struct{}{}
	}
	if grid[0].Suffix() != "-601" {
		t.Fatalf("首个后缀期望 -601，实际 %q", grid[0].Suffix())
	}
	if (HueSat{HueShift: 0, SatScale: 1.5}).Suffix() != "03" {
		t.Fatalf("后缀格式不符合预期")
	}
}

func TestAugmentHueSat_TwentyFilesPerSource(t *testing.T) {
	dir := t.TempDir()
	writeNRGBA(t, filepath.Join(dir, "1Bulbasaur.png"), solid(2, 2, color.NRGBA{255, 0, 0, 77}))

	res, err := AugmentHueSat(dir, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if res.Seen != 1 || res.Written != 20 || res.Failed != 0 {
		t.Fatalf("统计不符合预期：%+v", res)
	}
	names := listNames(t, dir)
	if len(names) != 21 {
		t.Fatalf("期望 1+20 个文件，实际 %d：%v", len(names), names)
	}
	if _, err := os.Stat(filepath.Join(dir, "1Bulbasaur02.png")); !os.IsNotExist(err) {
		t.Fatalf("不应写出恒等组合 1Bulbasaur02.png")
	}
	for _, want := range []string{"1Bulbasaur-601.png", "1Bulbasaur01.png", "1Bulbasaur603.png"} {
		if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
			t.Fatalf("缺少 %s：%v", want, err)
		}
	}

	// alpha 平面必须原样保留。
	got, err := imgx.Decode(filepath.Join(dir, "1Bulbasaur601.png"))
	if err != nil {
		t.Fatalf("Decode 失败：%v", err)
	}
	if a := got.NRGBAAt(0, 0).A; a != 77 {
		t.Fatalf("alpha 被修改：%d", a)
	}
}

func TestApplyHueSat_ShiftsHueAndScalesSaturation(t *testing.T) {
	red := solid(1, 1, color.NRGBA{255, 0, 0, 255})

	// 半度单位 +60 = 120°：红 -> 绿。
	if c := ApplyHueSat(red, HueSat{HueShift: 60, SatScale: 1}).NRGBAAt(0, 0); c != (color.NRGBA{0, 255, 0, 255}) {
		t.Fatalf("hue +60 期望绿色，实际 %v", c)
	}
	// -60 取模后 = 240°：红 -> 蓝。
	if c := ApplyHueSat(red, HueSat{HueShift: -60, SatScale: 1}).NRGBAAt(0, 0); c != (color.NRGBA{0, 0, 255, 255}) {
		t.Fatalf("hue -60 期望蓝色，实际 %v", c)
	}
	if c := ApplyHueSat(red, HueSat{HueShift: 0, SatScale: 0.5}).NRGBAAt(0, 0); c != (color.NRGBA{255, 128, 128, 255}) {
		t.Fatalf("sat ×0.5 不符合预期：%v", c)
	}
	// 饱和度截断：已满饱和的红色 ×1.5 仍为红色。
	if c := ApplyHueSat(red, HueSat{HueShift: 0, SatScale: 1.5}).NRGBAAt(0, 0); c != (color.NRGBA{255, 0, 0, 255}) {
		t.Fatalf("sat 截断不符合预期：%v", c)
	}
}

func TestAugmentHueSat_DecodeFailureSkipped(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "junk.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	res, err := AugmentHueSat(dir, nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if res.Failed != 1 || res.Written != 0 {
		t.Fatalf("统计不符合预期：%+v", res)
	}
	if len(listNames(t, dir)) != 1 {
		t.Fatalf("解码失败时不应写出任何文件")
	}
}
