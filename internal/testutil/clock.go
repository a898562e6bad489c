/*
 * @Description: 测试用时钟
 * @Author: 安知鱼
 * @Date: 2026-02-05 11:24:18
 */
package testutil

import (
	"sync"
	"time"
)

// StubClock 返回固定时间，可并发使用
type StubClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewStubClock 创建一个指向 t 的 StubClock
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock 返回指向 2026-01-15 10:30:00 UTC 的 StubClock
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC))
}

// TickingClock 每次调用 Now 后自动前进 step
func TickingClock(step time.Duration) *StubClock {
	c := FixedClock()
	c.step = step
	return c
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// Advance 将时钟向前拨动 d
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
