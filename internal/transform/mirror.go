package transform

import (
	"image"
	"path/filepath"

	"github.com/disintegration/gift"

	"github.com/John-Robertt/spritekit/internal/domain"
	"github.com/John-Robertt/spritekit/internal/infra/imgx"
)

// MirrorPrefix 是镜像文件名的前缀。
const MirrorPrefix = "M"

// Mirror 为 dir 下每张图片写出水平翻转版本：MirrorPrefix + 原文件名。
// 只处理阶段入口时已存在的文件；解码/写入失败记录后跳过。
func Mirror(dir string, report Report) (domain.StageResult, error) {
	rec := newRecorder(domain.StageMirror, report)
	names, err := rec.snapshot(dir)
	if err != nil {
		return rec.res, err
	}

	for _, name := range names {
		src, err := imgx.Decode(filepath.Join(dir, name))
		if err != nil {
			rec.failed(name, err)
			continue
		}
		outName := MirrorPrefix + name
		if err := imgx.WritePNG(filepath.Join(dir, outName), FlipHorizontal(src)); err != nil {
			rec.failed(outName, err)
			continue
		}
		rec.written(outName)
	}
	return rec.res, nil
}

// FlipHorizontal 沿竖直轴翻转 src（尺寸不变）。
func FlipHorizontal(src *image.NRGBA) *image.NRGBA {
	g := gift.New(gift.FlipHorizontal())
	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}
