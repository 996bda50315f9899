package socketio_utils

import (
	"sync"

	"github.com/zishang520/socket.io/v2/socket"
	"golang.org/x/time/rate"
)

// ChatLimiter throttles chat messages per connection with a token bucket
type ChatLimiter struct {
	limit    rate.Limit
	burst    int
	mutex    sync.Mutex
	limiters map[socket.SocketId]*rate.Limiter
}

// NewChatLimiter allows perSec messages per second with bursts of burst.
// A non-positive perSec disables throttling.
func NewChatLimiter(perSec float64, burst int) *ChatLimiter {
	limit := rate.Limit(perSec)
	if perSec <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &ChatLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[socket.SocketId]*rate.Limiter),
	}
}

func (l *ChatLimiter) Allow(id socket.SocketId) bool {
	l.mutex.Lock()
	limiter, ok := l.limiters[id]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[id] = limiter
	}
	l.mutex.Unlock()
	return limiter.Allow()
}

// Forget drops the bucket of a closed connection
func (l *ChatLimiter) Forget(id socket.SocketId) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	delete(l.limiters, id)
}
