package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Fetcher 按 URL 获取字节；任何网络错误或非 2xx 状态都必须返回 *TransportError。
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TransportError 表示传输层失败。它是流水线里唯一的致命错误：遇到即中止整次运行。
type TransportError struct {
	URL        string
	StatusCode int // 0 表示没有拿到响应（网络错误）
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d：%s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("请求失败：%s：%v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport 报告 err 链中是否包含 *TransportError。
func IsTransport(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// HTTPFetcher 是基于 *http.Client 的 Fetcher。
type HTTPFetcher struct {
	Client *http.Client
	// Header 会附加到每个请求（例如 Accept-Encoding: identity）。
	Header http.Header
}

func (f HTTPFetcher) Fetch(ctx context.Context, u string) ([]byte, error) {
	if f.Client == nil {
		return nil, &TransportError{URL: u, Err: errors.New("http client 不能为空")}
	}
	if strings.TrimSpace(u) == "" {
		return nil, &TransportError{URL: u, Err: errors.New("url 不能为空")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}
	for k, vs := range f.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 读掉少量 body 以便连接复用；内容本身不重要。
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, &TransportError{URL: u, StatusCode: resp.StatusCode}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}
	return b, nil
}
