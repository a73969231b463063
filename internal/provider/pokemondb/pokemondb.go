package pokemondb

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/spritekit/internal/domain"
	"github.com/John-Robertt/spritekit/internal/download"
	"github.com/John-Robertt/spritekit/internal/infra/httpx"
)

// DefaultPageURL 是 sprites 目录页。
const DefaultPageURL = "https://pokemondb.net/sprites"

// Provider 实现 pokemondb 目录页的抓取与 HTML 解析。
//
// 页面结构：每个世代是一个 <h2>Generation N</h2>，其后跟若干 a.infocard，
// 链接文本即显示名（例如 "<br> Mr. Mime"）。
type Provider struct {
	// PageURL 为空时使用 DefaultPageURL。
	PageURL string
}

func (Provider) Name() string { return "pokemondb" }

func (p Provider) pageURL() string {
	if u := strings.TrimSpace(p.PageURL); u != "" {
		return u
	}
	return DefaultPageURL
}

// Host 返回目录页所在的 host（含端口），用于在 HTTP client 上登记 RequestHeader。
func (p Provider) Host() string { return httpx.HostOf(p.pageURL()) }

// RequestHeader 是目录页请求必须携带的头：站点对压缩响应处理不稳定，要求 identity 编码。
func RequestHeader() http.Header {
	return http.Header{"Accept-Encoding": []string{"identity"}}
}

// Fetch 抓取目录页。请求头由 client 按 host 附加（见 Host/RequestHeader）。
func (p Provider) Fetch(ctx context.Context, f download.Fetcher) ([]byte, string, error) {
	if f == nil {
		return nil, "", errors.New("fetcher 不能为空")
	}
	u := p.pageURL()
	b, err := f.Fetch(ctx, u)
	if err != nil {
		return nil, u, err
	}
	if len(b) == 0 {
		return nil, u, errors.New("empty response body")
	}
	return b, u, nil
}

var generationRE = regexp.MustCompile(`(?i)^generation\s+([0-9]+)$`)

// Parse 把目录页 HTML 解析为实体列表。
//
// - 实体的 Generation 取它所在的 "Generation N" 分段
// - 只保留 N <= maxGeneration 的分段（maxGeneration<=0 表示不限制）
// - 同名实体只保留首次出现
func (Provider) Parse(html []byte, maxGeneration int) ([]domain.Entity, error) {
	if len(html) == 0 {
		return nil, errors.New("html 为空")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, 1024)
	out := make([]domain.Entity, 0, 1024)
	sections := 0
	doc.Find("h2").Each(func(_ int, h *goquery.Selection) {
		gen, ok := parseGeneration(h.Text())
		if !ok {
			return
		}
		sections++
		if maxGeneration > 0 && gen > maxGeneration {
			return
		}

		section := h.NextUntil("h2")
		cards := section.Filter("a.infocard").AddSelection(section.Find("a.infocard"))
		cards.Each(func(_ int, a *goquery.Selection) {
			name := normSpace(a.Text())
			if name == "" {
				return
			}
			if _, ok := seen[name]; ok {
				return
			}
			seen[name] = struct{}{}
			out = append(out, domain.Entity{DisplayName: name, Generation: gen})
		})
	})

	if sections == 0 {
		return nil, errors.New("未找到任何 Generation 分段（疑似页面结构变化或返回了非目录页内容）")
	}
	if len(out) == 0 {
		return nil, errors.New("未解析到任何实体")
	}
	return out, nil
}

func parseGeneration(title string) (int, bool) {
	m := generationRE.FindStringSubmatch(normSpace(title))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func normSpace(s string) string { return strings.Join(strings.Fields(s), " ") }
