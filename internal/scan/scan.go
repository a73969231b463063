package scan

import (
	"os"
	"sort"
	"strings"

	"github.com/John-Robertt/spritekit/internal/infra/fsx"
)

// ListFiles 返回 dir 下（不递归）的文件名快照。
//
// 规则（硬约束）：
// - 只做一次 ReadDir：调用方在阶段入口取快照，本阶段新写出的文件不会出现在本次结果中
// - 跳过子目录与以 '.' 开头的文件（原子写临时文件）
// - 输出按文件名排序，避免不同平台/文件系统的 ReadDir 顺序差异
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, fsx.TempPrefix) {
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		names = append(names, name)
	}

	sort.Strings(names)
	return names, nil
}
