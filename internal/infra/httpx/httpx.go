package httpx

import (
	"errors"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultRetryMax = 2
	defaultBackoff  = 500 * time.Millisecond
)

// Options 描述一个 sprite 抓取 client 的网络策略；零值即默认策略（直连、2 次重试）。
type Options struct {
	ProxyURL string

	// HostHeaders 按请求 host（含端口）附加固定请求头；调用方已显式设置的头不会被覆盖。
	// 例如目录页站点需要 Accept-Encoding: identity，而图片域名不需要。
	HostHeaders map[string]http.Header

	// RetryMax<0 表示不重试；0 使用默认值。
	RetryMax int
	// Backoff 是第 n 次重试前的等待基数（实际等待 n*Backoff）；0 使用默认值。
	Backoff time.Duration
}

// Transport 在 http.Transport 之上叠加 sprite 站点的请求策略：
// 随机 UA、按 host 的固定请求头、对网络错误与 429/5xx 的有界重试。
type Transport struct {
	Base *http.Transport

	ua *uaPool

	hostHeaders map[string]http.Header

	// RetryMax 表示最大重试次数（不含首次尝试）。例如 2 表示最多 3 次尝试。
	RetryMax int
	Backoff  time.Duration

	// DisableKeepAlives 决定是否对 Request 设置 Close=true。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// 只对可重放的请求重试：GET/HEAD 且无 body。
	max := t.RetryMax
	if max < 0 || !((req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil) {
		max = 0
	}

	var (
		resp    *http.Response
		lastErr error
	)
	for attempt := 0; attempt <= max; attempt++ {
		if attempt > 0 {
			if err := t.wait(req, attempt); err != nil {
				return nil, err
			}
		}

		resp, lastErr = t.Base.RoundTrip(t.prepare(req))
		if lastErr == nil && !retryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if lastErr != nil {
			if req.Context().Err() != nil {
				return nil, lastErr
			}
			continue
		}
		if attempt < max {
			// 丢弃本次响应，连接可复用。
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			resp.Body.Close()
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	// 重试用尽：把最后一次 429/5xx 交给调用方（由 Fetcher 归类为传输错误）。
	return resp, nil
}

// prepare 克隆请求并补齐 UA 与 host 头，避免污染调用方的 request。
func (t *Transport) prepare(req *http.Request) *http.Request {
	r := req.Clone(req.Context())
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", t.ua.random())
	}
	for k, vs := range t.hostHeaders[strings.ToLower(r.URL.Host)] {
		if r.Header.Get(k) != "" {
			continue
		}
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if t.DisableKeepAlives {
		r.Close = true
	}
	return r
}

func (t *Transport) wait(req *http.Request, attempt int) error {
	d := t.Backoff * time.Duration(attempt)
	if d <= 0 {
		return req.Context().Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-req.Context().Done():
		return req.Context().Err()
	}
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// NewClient 构造用于目录页抓取与 sprite 下载的 HTTP client。
//
// 规则：
// - ProxyURL 非空：必须走代理，且禁用 keep-alive（每请求新连接）
// - 每个请求随机 UA；HostHeaders 按 host 附加
// - 有界重试 + 总超时
func NewClient(opts Options) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}

	disableKeepAlives := false
	if proxyURL := strings.TrimSpace(opts.ProxyURL); proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	retryMax := opts.RetryMax
	if retryMax == 0 {
		retryMax = defaultRetryMax
	}
	backoff := opts.Backoff
	if backoff == 0 {
		backoff = defaultBackoff
	}

	hostHeaders := make(map[string]http.Header, len(opts.HostHeaders))
	for host, h := range opts.HostHeaders {
		hostHeaders[strings.ToLower(strings.TrimSpace(host))] = h.Clone()
	}

	return &http.Client{
		Transport: &Transport{
			Base:              base,
			ua:                globalUA,
			hostHeaders:       hostHeaders,
			RetryMax:          retryMax,
			Backoff:           backoff,
			DisableKeepAlives: disableKeepAlives,
		},
		Timeout: defaultTimeout,
	}, nil
}

// HostOf 返回 rawURL 的 host（含端口，小写）；解析失败返回空串。
func HostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

type uaPool struct {
	mu  sync.Mutex
	rnd *rand.Rand
	uas []string
}

func (p *uaPool) random() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uas[p.rnd.Intn(len(p.uas))]
}

var globalUA = newUAPool()

func newUAPool() *uaPool {
	uas := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 13_6) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	}
	return &uaPool{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		uas: uas,
	}
}
