package utils

import (
	"net/http"
)

// StreamWriter 向浏览器直写纯文本分块响应。构造时即提交响应头，
// 之后无法再改写状态码，失败只能以断开连接收场。
type StreamWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	written int
}

func NewStreamWriter(w http.ResponseWriter) *StreamWriter {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	return &StreamWriter{w: w, flusher: flusher}
}

// Write 写出一个增量并立即冲刷
func (s *StreamWriter) Write(chunk string) error {
	n, err := s.w.Write([]byte(chunk))
	s.written += n
	if err != nil {
		return err
	}

	if s.flusher != nil {
		s.flusher.Flush()
	}

	return nil
}

// Written 已写出的字节数
func (s *StreamWriter) Written() int {
	return s.written
}
