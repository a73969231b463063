package run

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/John-Robertt/spritekit/internal/config"
	"github.com/John-Robertt/spritekit/internal/download"
)

const catalogURL = "https://catalog.test/sprites"

// 两个第 5 世代实体：一个普通实体 + 多形态特例。
const catalogHTML = `<html><body>
<h2>Generation 5</h2>
<div class="infocard-list">
  <a class="infocard" href="/sprites/victini"><span></span><br> Victini</a>
  <a class="infocard" href="/sprites/arceus"><span></span><br> Arceus</a>
</div>
<h2>Generation 6</h2>
<div class="infocard-list">
  <a class="infocard" href="/sprites/chespin"><span></span><br> Chespin</a>
</div>
</body></html>`

// stubFetcher：目录页返回固定 HTML，其余 URL 返回 1×1 不透明 PNG。
type stubFetcher struct {
	t   *testing.T
	img []byte

	mu     sync.Mutex
	urls   []string
	failAt int // 第 failAt 次图片请求返回传输错误（0 表示不失败）
	images int
}

func newStubFetcher(t *testing.T) *stubFetcher {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("编码 PNG 失败：%v", err)
	}
	return &stubFetcher{t: t, img: buf.Bytes()}
}

func (f *stubFetcher) Fetch(ctx context.Context, u string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, u)
	if u == catalogURL {
		return []byte(catalogHTML), nil
	}
	f.images++
	if f.failAt > 0 && f.images == f.failAt {
		return nil, &download.TransportError{URL: u, StatusCode: 503}
	}
	return f.img, nil
}

func testConfig(dir string) config.EffectiveConfig {
	return config.EffectiveConfig{
		Dir:           dir,
		Width:         96,
		Height:        96,
		MaxGeneration: 5,
		CatalogURL:    catalogURL,
		ImageHost:     "https://img.test",
	}
}
