package utils

import (
	"crypto/tls"
	"net/http"
	"time"
)

// NewHTTPClient 返回共享连接池的出站客户端。timeout 为 0 时不限制
// 整个请求的时长（流式响应由调用方的 context 控制）。
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: false,
			},
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
