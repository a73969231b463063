package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/John-Robertt/spritekit/internal/catalog"
	"github.com/John-Robertt/spritekit/internal/provider/pokemondb"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

// FileName 是配置文件名；只在 cwd 下查找。
const FileName = "spritekit.json"

const (
	DefaultDir    = "PokemonSprites"
	DefaultWidth  = 96
	DefaultHeight = 96
)

// CLIArgs 只包含 CLI 暴露的入口，并保留“是否显式指定”的信息。
// 这能保证覆盖优先级可实现：例如 --width 0 必须能覆盖配置文件里的 width=64（随后由 resize 报告配置错误）。
type CLIArgs struct {
	Dir string

	Width    int
	WidthSet bool

	Height    int
	HeightSet bool

	MaxGeneration    int
	MaxGenerationSet bool
}

// FileConfig 对应 spritekit.json 的解析结构。数值字段为 nil 表示未指定。
type FileConfig struct {
	Dir           string       `json:"dir"`
	Width         *int         `json:"width"`
	Height        *int         `json:"height"`
	MaxGeneration *int         `json:"max_generation"`
	CatalogURL    string       `json:"catalog_url"`
	ImageHost     string       `json:"image_host"`
	Proxy         *ProxyConfig `json:"proxy"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	Dir string

	// Width/Height 不在这里做范围校验：越界由 resize 阶段以 ConfigurationError 报告。
	Width  int
	Height int

	MaxGeneration int

	CatalogURL string
	ImageHost  string
	ProxyURL   string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 读取 <cwd>/spritekit.json（可选），然后与 CLI 参数合并为最终配置。
//
// 覆盖优先级（固定）：
// - dir/width/height/max_generation：CLI > config > 内置默认
// - 其他字段：仅由 config 控制（CLI 不暴露）
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	fc, _, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	return merge(cwdAbs, cli, fc, cfgPath)
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	dir := DefaultDir
	if strings.TrimSpace(cli.Dir) != "" {
		dir = cli.Dir
	} else if strings.TrimSpace(fc.Dir) != "" {
		dir = fc.Dir
	}

	width := pick(cli.Width, cli.WidthSet, fc.Width, DefaultWidth)
	height := pick(cli.Height, cli.HeightSet, fc.Height, DefaultHeight)

	maxGen := pick(cli.MaxGeneration, cli.MaxGenerationSet, fc.MaxGeneration, catalog.MaxGeneration)
	if maxGen < 1 || maxGen > catalog.MaxGeneration {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("max_generation 必须在 [1, %d] 内，实际是 %d", catalog.MaxGeneration, maxGen)}
	}

	catalogURL := strings.TrimSpace(fc.CatalogURL)
	if catalogURL == "" {
		catalogURL = pokemondb.DefaultPageURL
	} else if err := validateHTTPURL("catalog_url", catalogURL); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	imageHost := strings.TrimRight(strings.TrimSpace(fc.ImageHost), "/")
	if imageHost == "" {
		imageHost = catalog.DefaultImageHost
	} else if err := validateHTTPURL("image_host", imageHost); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf("proxy.url 无效：%w", err)}
		}
	}

	return EffectiveConfig{
		Dir:           absCleanFrom(cwdAbs, dir),
		Width:         width,
		Height:        height,
		MaxGeneration: maxGen,
		CatalogURL:    catalogURL,
		ImageHost:     imageHost,
		ProxyURL:      proxyURL,
	}, nil
}

func pick(cliVal int, cliSet bool, fileVal *int, def int) int {
	if cliSet {
		return cliVal
	}
	if fileVal != nil {
		return *fileVal
	}
	return def
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s 无效：%q", field, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s 必须是 http/https：%q", field, raw)
	}
	return nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
