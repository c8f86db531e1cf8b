package limiter

import (
	"sync"
	"time"

	"github.com/KarlYu130/DeepSite/pkg/logger"
)

type clientEntry struct {
	inFlight int
	lastSeen time.Time
}

// Limiter 按客户端标识限制同时进行的生成请求数。
// 请求开始前 Acquire，结束后（无论正常、提前停止还是失败）Release。
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*clientEntry
	max     int
	idleTTL time.Duration
}

// NewLimiter 创建限流器。max <= 0 表示不限制；cleanupInterval > 0 时
// 启动后台清理，定期回收超过 idleTTL 没有请求的客户端记录。
func NewLimiter(max int, idleTTL, cleanupInterval time.Duration) *Limiter {
	l := &Limiter{
		clients: make(map[string]*clientEntry),
		max:     max,
		idleTTL: idleTTL,
	}

	if cleanupInterval > 0 {
		go l.cleanupIdleClients(cleanupInterval)
	}

	return l
}

// Acquire 为 key 占用一个并发名额，名额用尽时返回 ErrLimitExceeded
func (l *Limiter) Acquire(key string) error {
	if l.max <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.clients[key]
	if !exists {
		entry = &clientEntry{}
		l.clients[key] = entry
	}

	if entry.inFlight >= l.max {
		return ErrLimitExceeded
	}

	entry.inFlight++
	entry.lastSeen = time.Now()
	return nil
}

// Release 归还名额。归零的记录保留最后活跃时间，由后台清理回收。
func (l *Limiter) Release(key string) {
	if l.max <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.clients[key]
	if !exists {
		return
	}

	if entry.inFlight > 0 {
		entry.inFlight--
	}
	entry.lastSeen = time.Now()
}

// InFlight 返回 key 当前占用的名额数
func (l *Limiter) InFlight(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, exists := l.clients[key]; exists {
		return entry.inFlight
	}
	return 0
}

func (l *Limiter) cleanupIdleClients(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		l.removeIdle(time.Now().Add(-l.idleTTL))
	}
}

// removeIdle 删除 cutoff 之前就没有活跃请求的客户端记录
func (l *Limiter) removeIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, entry := range l.clients {
		if entry.inFlight == 0 && entry.lastSeen.Before(cutoff) {
			delete(l.clients, key)
			logger.Debugf("Cleaned up idle rate limit entry: %s", key)
		}
	}
}
