package transform

import (
	"fmt"

	"github.com/John-Robertt/spritekit/internal/domain"
	"github.com/John-Robertt/spritekit/internal/infra/imgx"
	"github.com/John-Robertt/spritekit/internal/scan"
)

// Report 接收逐文件结果；为 nil 时不输出。
type Report func(stage string, fr domain.FileResult)

// ConfigurationError 表示阶段参数非法（阶段不会触碰任何文件）。
type ConfigurationError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("尺寸参数非法：%s=%d（允许范围 (%d, %d]）", e.Field, e.Value, e.Min, e.Max)
}

// recorder 把逐文件结果同时计入 StageResult 并转发给 Report。
type recorder struct {
	res    domain.StageResult
	report Report
}

func newRecorder(stage string, report Report) *recorder {
	return &recorder{res: domain.StageResult{Name: stage}, report: report}
}

func (r *recorder) record(fr domain.FileResult) {
	r.res.Record(fr)
	if r.report != nil {
		r.report(r.res.Name, fr)
	}
}

func (r *recorder) written(name string) {
	r.record(domain.FileResult{Name: name, Status: domain.FileStatusWritten})
}

func (r *recorder) skipped(name string) {
	r.record(domain.FileResult{Name: name, Status: domain.FileStatusSkipped})
}

func (r *recorder) failed(name string, err error) {
	r.record(domain.FileResult{
		Name:      name,
		Status:    domain.FileStatusFailed,
		ErrorCode: errorCode(err),
		ErrorMsg:  err.Error(),
	})
}

func errorCode(err error) string {
	switch {
	case imgx.IsDecodeError(err):
		return domain.ErrCodeDecode
	case imgx.IsEncodeError(err):
		return domain.ErrCodeEncode
	default:
		return domain.ErrCodeIOFailed
	}
}

// snapshot 在阶段入口列出 dir；本阶段写出的文件不会被本阶段再次处理。
func (r *recorder) snapshot(dir string) ([]string, error) {
	names, err := scan.ListFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("列出目录失败：%w", err)
	}
	r.res.Seen = len(names)
	return names, nil
}
