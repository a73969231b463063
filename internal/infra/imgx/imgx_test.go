package imgx

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestDecode_UpgradesOpaqueToNRGBA(t *testing.T) {
	// JPEG 没有 alpha：解码后必须得到 alpha=255 的 NRGBA。
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, color.RGBA{200, 10, 10, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("encode jpeg 失败：%v", err)
	}
	p := filepath.Join(t.TempDir(), "a.png")
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}

	img, err := Decode(p)
	if err != nil {
		t.Fatalf("Decode 失败：%v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
		t.Fatalf("尺寸不符合预期：%v", img.Bounds())
	}
	if a := img.NRGBAAt(1, 1).A; a != 255 {
		t.Fatalf("期望 alpha=255，实际 %d", a)
	}
}

func TestDecodeRaw_PalettedKept(t *testing.T) {
	p := filepath.Join(t.TempDir(), "p.png")
	writePaletted(t, p)

	raw, err := DecodeRaw(p)
	if err != nil {
		t.Fatalf("DecodeRaw 失败：%v", err)
	}
	if !IsPaletted(raw) {
		t.Fatalf("期望调色板图，实际 %T", raw)
	}

	n, err := Decode(p)
	if err != nil {
		t.Fatalf("Decode 失败：%v", err)
	}
	if c := n.NRGBAAt(0, 0); c.A != 0 {
		t.Fatalf("透明调色板项应保持 alpha=0，实际 %v", c)
	}
	if c := n.NRGBAAt(1, 0); c != (color.NRGBA{255, 0, 0, 255}) {
		t.Fatalf("像素不符合预期：%v", c)
	}
}

func TestDecode_Invalid(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(p, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
	_, err := Decode(p)
	if !IsDecodeError(err) {
		t.Fatalf("期望 DecodeError，实际 %T %v", err, err)
	}
	if _, err := Decode(filepath.Join(t.TempDir(), "missing.png")); !IsDecodeError(err) {
		t.Fatalf("文件不存在也应归类为 DecodeError，实际 %T %v", err, err)
	}
}

func TestWritePNG_RoundTrip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	img.SetNRGBA(2, 1, color.NRGBA{1, 2, 3, 128})

	p := filepath.Join(t.TempDir(), "out.png")
	if err := WritePNG(p, img); err != nil {
		t.Fatalf("WritePNG 失败：%v", err)
	}
	got, err := Decode(p)
	if err != nil {
		t.Fatalf("Decode 失败：%v", err)
	}
	if c := got.NRGBAAt(2, 1); c != (color.NRGBA{1, 2, 3, 128}) {
		t.Fatalf("半透明像素未保留：%v", c)
	}
}

func TestWritePNG_TargetIsDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "x.png"), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	err := WritePNG(filepath.Join(dir, "x.png"), image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	if !IsEncodeError(err) {
		t.Fatalf("期望 EncodeError，实际 %T %v", err, err)
	}
}

func writePaletted(t *testing.T, path string) {
	t.Helper()
	pal := color.Palette{color.NRGBA{0, 0, 0, 0}, color.NRGBA{255, 0, 0, 255}}
	img := image.NewPaletted(image.Rect(0, 0, 2, 1), pal)
	img.SetColorIndex(1, 0, 1)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode 调色板 png 失败：%v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("写入失败：%v", err)
	}
}
