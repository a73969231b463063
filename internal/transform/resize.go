package transform

import (
	"image"
	"path/filepath"

	"github.com/disintegration/gift"

	"github.com/John-Robertt/spritekit/internal/domain"
	"github.com/John-Robertt/spritekit/internal/infra/imgx"
)

const (
	MaxWidth  = 4096
	MaxHeight = 4096
)

// ValidateSize 校验目标尺寸是否在 (0, 4096] 内。
func ValidateSize(width, height int) error {
	if width <= 0 || width > MaxWidth {
		return &ConfigurationError{Field: "width", Value: width, Min: 0, Max: MaxWidth}
	}
	if height <= 0 || height > MaxHeight {
		return &ConfigurationError{Field: "height", Value: height, Min: 0, Max: MaxHeight}
	}
	return nil
}

// Resize 把 dir 下每张图片缩放到 width×height 并原地覆盖。
//
// - 尺寸非法：返回 *ConfigurationError，不触碰任何文件
// - 已是目标尺寸：跳过（不重编码，因此重复执行结果字节不变）
// - 解码/写入失败：记录后跳过
func Resize(dir string, width, height int, report Report) (domain.StageResult, error) {
	rec := newRecorder(domain.StageResize, report)
	if err := ValidateSize(width, height); err != nil {
		return rec.res, err
	}

	names, err := rec.snapshot(dir)
	if err != nil {
		return rec.res, err
	}

	g := gift.New(gift.Resize(width, height, gift.LinearResampling))
	for _, name := range names {
		path := filepath.Join(dir, name)
		src, err := imgx.Decode(path)
		if err != nil {
			rec.failed(name, err)
			continue
		}
		b := src.Bounds()
		if b.Dx() == width && b.Dy() == height {
			rec.skipped(name)
			continue
		}

		dst := image.NewNRGBA(g.Bounds(b))
		g.Draw(dst, src)
		if err := imgx.WritePNG(path, dst); err != nil {
			rec.failed(name, err)
			continue
		}
		rec.written(name)
	}
	return rec.res, nil
}
