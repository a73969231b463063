package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/John-Robertt/spritekit/internal/app/run"
	"github.com/John-Robertt/spritekit/internal/config"
	"github.com/John-Robertt/spritekit/internal/domain"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		os.Exit(1)
	}
	if code := runCmd(os.Args[1:], cwd, os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

// runCmd 返回进程退出码：0 成功（逐文件失败不影响）；1 致命错误/配置错误；2 参数错误。
func runCmd(args []string, cwd string, stdout, stderr io.Writer) int {
	for _, a := range args {
		if isHelp(a) {
			printUsage(stdout)
			return 0
		}
	}

	ra, err := parseRunArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "参数错误：%v\n\n", err)
		printUsage(stderr)
		return 2
	}

	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		Dir:              ra.Dir,
		Width:            ra.Width,
		WidthSet:         ra.WidthSet,
		Height:           ra.Height,
		HeightSet:        ra.HeightSet,
		MaxGeneration:    ra.MaxGeneration,
		MaxGenerationSet: ra.MaxGenerationSet,
	})
	if err != nil {
		cwdAbs, _ := filepath.Abs(cwd)
		emitReport(stdout, stderr, reportForConfigError(cwdAbs, err))
		return 1
	}

	progressW, interactive := pickProgressWriter(stdout, stderr)
	var obs run.Observer
	if interactive {
		obs = newProgressUI(progressW)
	}

	rr := run.ExecuteWithObserver(context.Background(), eff, run.Deps{}, obs)

	emitReport(stdout, stderr, rr)
	if interactive {
		fmt.Fprintf(progressW, "dir: %s\n", eff.Dir)
	}
	if rr.Fatal != nil {
		return 1
	}
	return 0
}

type runArgs struct {
	Dir string

	Width    int
	WidthSet bool

	Height    int
	HeightSet bool

	MaxGeneration    int
	MaxGenerationSet bool
}

func parseRunArgs(args []string) (runArgs, error) {
	ra := runArgs{}

	for i := 0; i < len(args); i++ {
		a := args[i]

		name, val, hasVal := "", "", false
		if strings.HasPrefix(a, "--") {
			name, val, hasVal = strings.Cut(a, "=")
		}
		switch name {
		case "--width", "--height", "--max-gen":
			if !hasVal {
				if i+1 >= len(args) {
					return runArgs{}, fmt.Errorf("%s 需要一个值", name)
				}
				i++
				val = args[i]
			}
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return runArgs{}, fmt.Errorf("%s 必须是整数，实际是 %q", name, val)
			}
			switch name {
			case "--width":
				ra.Width, ra.WidthSet = n, true
			case "--height":
				ra.Height, ra.HeightSet = n, true
			default:
				ra.MaxGeneration, ra.MaxGenerationSet = n, true
			}
			continue
		}

		if strings.HasPrefix(a, "-") {
			return runArgs{}, fmt.Errorf("未知参数 %q", a)
		}
		if ra.Dir != "" {
			return runArgs{}, fmt.Errorf("重复的 dir：%q 与 %q", ra.Dir, a)
		}
		ra.Dir = a
	}
	return ra, nil
}

func isHelp(s string) bool {
	return s == "-h" || s == "--help" || s == "help"
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `用法：
  spritekit [dir] [--width N] [--height N] [--max-gen N]

流程（固定顺序）：
  catalog -> download -> resize -> huesat -> mirror -> bitdepth

参数：
  dir         工作目录（默认 PokemonSprites；也可在 spritekit.json 中设置）
  --width     目标宽度，(0, 4096]（默认 96）
  --height    目标高度，(0, 4096]（默认 96）
  --max-gen   只收录不高于该世代的实体，[1, 5]（默认 5）
  -h, --help  显示帮助
`)
}

func emitReport(stdout, stderr io.Writer, rr domain.RunReport) {
	summary := fmt.Sprintf("完成：written=%d skipped=%d failed=%d",
		rr.Summary.Written, rr.Summary.Skipped, rr.Summary.Failed,
	)
	if rr.Fatal != nil {
		summary = fmt.Sprintf("中止：stage=%s %s: %s", rr.Fatal.Stage, rr.Fatal.ErrorCode, rr.Fatal.ErrorMsg)
	}

	if isTTY(stdout) {
		fmt.Fprintln(stdout, summary)
		for _, st := range rr.Stages {
			for _, fr := range st.Errors {
				key := fr.Name
				if key == "" {
					key = "<" + st.Name + ">"
				}
				fmt.Fprintf(stderr, "%s %s: %s\n", key, fr.ErrorCode, fr.ErrorMsg)
			}
		}
		return
	}

	// stdout 非 TTY：stdout 必须且仅输出一个 RunReport JSON（日志/摘要走 stderr）。
	enc := json.NewEncoder(stdout)
	_ = enc.Encode(rr)
	fmt.Fprintln(stderr, summary)
}

func reportForConfigError(cwdAbs string, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		Dir:        cwdAbs,
		StartedAt:  now,
		FinishedAt: now,
		Fatal: &domain.FatalError{
			Stage:     "config",
			ErrorCode: config.Code(err),
			ErrorMsg:  err.Error(),
		},
	}
	rr.Finalize()
	return rr
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func pickProgressWriter(stdout, stderr io.Writer) (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(stderr) {
		return stderr, true
	}
	// 某些环境（例如仅重定向 stderr）下，stdout 仍是 TTY：退化输出到 stdout。
	if isTTY(stdout) {
		return stdout, true
	}
	return nil, false
}
