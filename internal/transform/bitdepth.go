package transform

import (
	"path/filepath"

	"github.com/John-Robertt/spritekit/internal/domain"
	"github.com/John-Robertt/spritekit/internal/infra/imgx"
)

// NormalizeBitDepth 把 dir 下的调色板（索引色）图片原地转换为 NRGBA；其它图片不动。
//
// 必须最后执行：前面的阶段写出的文件都是 NRGBA，只有下载后未被重写的源图可能仍是调色板图。
func NormalizeBitDepth(dir string, report Report) (domain.StageResult, error) {
	rec := newRecorder(domain.StageBitDepth, report)
	names, err := rec.snapshot(dir)
	if err != nil {
		return rec.res, err
	}

	for _, name := range names {
		path := filepath.Join(dir, name)
		raw, err := imgx.DecodeRaw(path)
		if err != nil {
			rec.failed(name, err)
			continue
		}
		if !imgx.IsPaletted(raw) {
			rec.skipped(name)
			continue
		}
		if err := imgx.WritePNG(path, imgx.ToNRGBA(raw)); err != nil {
			rec.failed(name, err)
			continue
		}
		rec.written(name)
	}
	return rec.res, nil
}
