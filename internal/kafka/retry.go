package kafka

import (
	"context"
	"math/rand"
	"time"
)

// retryPolicy — экспоненциальная задержка с equal jitter: половина интервала
// фиксирована, вторая половина случайна. Не потокобезопасна, живёт внутри Run.
type retryPolicy struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
	rnd     *rand.Rand
}

func newRetryPolicy(initial, maxDelay time.Duration, seed int64) *retryPolicy {
	return &retryPolicy{
		initial: initial,
		max:     maxDelay,
		current: initial,
		rnd:     rand.New(rand.NewSource(seed)),
	}
}

// next — задержка для текущей попытки; интервал следующей удваивается до max.
func (p *retryPolicy) next() time.Duration {
	d := p.jitter(p.current)
	p.current = min(p.current*2, p.max)
	return d
}

func (p *retryPolicy) reset() { p.current = p.initial }

func (p *retryPolicy) jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(p.rnd.Int63n(int64(d-half)+1))
}

// sleepCtx — false, если контекст отменён раньше, чем прошло d.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
