package catalog

import "strings"

// Substitution 是一条“子串 -> 替换值”规则。
type Substitution struct {
	From string
	To   string
}

// Substitutions 是显示名 -> URL token 的固定替换表（顺序即执行顺序）。
var Substitutions = []Substitution{
	{From: "♀", To: "-f"},
	{From: "♂", To: "-m"},
	{From: ":", To: "-"},
	{From: " ", To: "-"},
	{From: ".", To: ""},
	{From: "'", To: ""},
}

// Normalize 把站点显示名转换为 URL 路径安全的 token。
//
// 规则按顺序作用在同一个（已被前面规则改写过的）字符串上；不改变大小写。
// 例如："Mr. Mime" -> "Mr-Mime"，"Nidoran♀" -> "Nidoran-f"。
func Normalize(raw string) string {
	s := raw
	for _, sub := range Substitutions {
		if strings.Contains(s, sub.From) {
			s = strings.ReplaceAll(s, sub.From, sub.To)
		}
	}
	return s
}
