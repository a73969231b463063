package domain

import (
	"encoding/json"
	"time"
)

const (
	StageCatalog  = "catalog"
	StageDownload = "download"
	StageResize   = "resize"
	StageHueSat   = "huesat"
	StageMirror   = "mirror"
	StageBitDepth = "bitdepth"
)

// Stages 是流水线固定的执行顺序。
var Stages = []string{StageCatalog, StageDownload, StageResize, StageHueSat, StageMirror, StageBitDepth}

const (
	FileStatusWritten = "written"
	FileStatusSkipped = "skipped"
	FileStatusFailed  = "failed"
)

const (
	ErrCodeTransport = "transport_failed"
	ErrCodeParse     = "parse_failed"
	ErrCodeConfig    = "config_invalid"
	ErrCodeDecode    = "decode_failed"
	ErrCodeEncode    = "encode_failed"
	ErrCodeIOFailed  = "io_failed"
	ErrCodeLocked    = "dir_locked"
)

// RunReport 是对外稳定输出（stdout JSON）的结构。
type RunReport struct {
	Dir string `json:"dir"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Fatal 非空表示运行被中止（例如传输错误）；逐文件失败不会设置它。
	Fatal *FatalError `json:"fatal,omitempty"`

	Summary ReportSummary `json:"summary"`
	Stages  []StageResult `json:"stages"`
}

type FatalError struct {
	Stage     string `json:"stage"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

type ReportSummary struct {
	Written int `json:"written"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// StageResult 是单个阶段的统计。Files 只记录失败条目（成功条目数量可能上千）。
type StageResult struct {
	Name    string       `json:"name"`
	Seen    int          `json:"seen"`
	Written int          `json:"written"`
	Skipped int          `json:"skipped"`
	Failed  int          `json:"failed"`
	Errors  []FileResult `json:"errors"`
}

type FileResult struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
}

// Record 把一条逐文件结果计入阶段统计。
func (s *StageResult) Record(fr FileResult) {
	switch fr.Status {
	case FileStatusWritten:
		s.Written++
	case FileStatusSkipped:
		s.Skipped++
	case FileStatusFailed:
		s.Failed++
		s.Errors = append(s.Errors, fr)
	}
}

// Finalize 做两件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) summary 由 stages 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	var s ReportSummary
	for i := range r.Stages {
		st := &r.Stages[i]
		if st.Errors == nil {
			st.Errors = []FileResult{}
		}
		s.Written += st.Written
		s.Skipped += st.Skipped
		s.Failed += st.Failed
	}
	if r.Stages == nil {
		r.Stages = []StageResult{}
	}
	r.Summary = s
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
