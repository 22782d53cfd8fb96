package timing

import "time"

// TickerLimiter uses time.Ticker for simple, consistent frame timing.
// Less accurate than AdaptiveLimiter but simpler and good enough for most cases.
type TickerLimiter struct {
	interval time.Duration
	ticker   *time.Ticker
	ch       <-chan time.Time
}

func NewTickerLimiter(targetFPS float64) *TickerLimiter {
	interval := FrameDuration(targetFPS)
	ticker := time.NewTicker(interval)
	return &TickerLimiter{
		interval: interval,
		ticker:   ticker,
		ch:       ticker.C,
	}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ch
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.interval)
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
