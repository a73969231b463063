package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/spritekit/internal/domain"
	"github.com/John-Robertt/spritekit/internal/infra/imgx"
)

// Progress 接收逐条下载结果；为 nil 时不输出。
type Progress func(idx, total int, e domain.CatalogEntry, fr domain.FileResult, bytes int)

// Result 是下载阶段的统计。
type Result struct {
	Stage domain.StageResult
	Bytes int64
}

// Run 依次下载 entries 并以 PNG 写入 dir/<LocalName>。
//
// 失败语义（固定）：
// - 传输错误：立即停止并返回 *TransportError（不重试剩余条目）
// - 解码/写入失败：记录该条后跳过，继续下一条
//
// 远程 URL 在取数前整体小写（远端路径不区分大小写）；本地文件名保持原样。
func Run(ctx context.Context, entries []domain.CatalogEntry, f Fetcher, dir string, progress Progress) (Result, error) {
	res := Result{Stage: domain.StageResult{Name: domain.StageDownload, Seen: len(entries)}}
	if f == nil {
		return res, fmt.Errorf("fetcher 不能为空")
	}

	for i, e := range entries {
		b, err := f.Fetch(ctx, strings.ToLower(e.RemoteURL))
		if err != nil {
			if !IsTransport(err) {
				err = &TransportError{URL: e.RemoteURL, Err: err}
			}
			return res, err
		}
		res.Bytes += int64(len(b))

		fr := domain.FileResult{Name: e.LocalName, Status: domain.FileStatusWritten}
		if err := save(filepath.Join(dir, e.LocalName), b); err != nil {
			fr.Status = domain.FileStatusFailed
			fr.ErrorMsg = err.Error()
			fr.ErrorCode = domain.ErrCodeEncode
			if imgx.IsDecodeError(err) {
				fr.ErrorCode = domain.ErrCodeDecode
			}
		}
		res.Stage.Record(fr)
		if progress != nil {
			progress(i+1, len(entries), e, fr, len(b))
		}
	}
	return res, nil
}

// save 解码后按原颜色模型重新编码（调色板图仍保存为调色板 PNG，留给 bit-depth 阶段处理）。
func save(path string, b []byte) error {
	img, err := imgx.DecodeBytes(filepath.Base(path), b)
	if err != nil {
		return err
	}
	return imgx.WritePNG(path, img)
}
