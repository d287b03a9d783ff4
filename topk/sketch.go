package topk

import (
	"sync"
	"time"

	"github.com/keilerkonzept/topk/sliding"
)

// SketchParams configures a TopKSketch.
type SketchParams struct {
	// K is how many heavy hitters are tracked.
	K int
	// WindowSize is the number of ticks the sliding window spans.
	WindowSize int
	Width      int
	Depth      int
	// TickSize is the number of requests per tick.
	TickSize uint64
	// MaxSharePercent is the share of the window one key may hold before it
	// is reported.
	MaxSharePercent int
	// ActivationRPS gates detection: below this request rate nothing is
	// reported, however skewed the traffic.
	ActivationRPS int
}

// TopKSketch finds keys that dominate recent traffic. It is safe for
// concurrent use.
type TopKSketch struct {
	mu              sync.Mutex
	sketch          *sliding.Sketch
	tickSize        uint64
	maxSharePercent int
	activationRPS   int
	tickReq         uint64
	tickCount       uint64
	lastTick        time.Time
}

func New(params SketchParams) *TopKSketch {
	if params.TickSize == 0 {
		params.TickSize = 100
	}
	return &TopKSketch{
		sketch: sliding.New(params.K, params.WindowSize,
			sliding.WithWidth(params.Width),
			sliding.WithDepth(params.Depth),
		),
		tickSize:        params.TickSize,
		maxSharePercent: params.MaxSharePercent,
		activationRPS:   params.ActivationRPS,
		lastTick:        time.Now(),
	}
}

// ProcessTick counts one request for key. Every TickSize requests it
// advances the window and returns the keys over their allowed share, or nil.
func (cs *TopKSketch) ProcessTick(key string) []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.sketch.Incr(key)
	cs.tickReq++
	if cs.tickReq < cs.tickSize {
		return nil
	}

	now := time.Now()
	elapsed := now.Sub(cs.lastTick)
	cs.lastTick = now
	cs.tickReq = 0
	cs.tickCount++

	var hitters []string
	if cs.active(elapsed) {
		ticksInWindow := min(cs.tickCount, uint64(cs.sketch.WindowSize))
		threshold := ticksInWindow * cs.tickSize * uint64(cs.maxSharePercent) / 100

		for _, item := range cs.sketch.SortedSlice() {
			if uint64(item.Count) <= threshold {
				break
			}
			hitters = append(hitters, item.Item)
		}
	}

	cs.sketch.Tick()
	return hitters
}

func (cs *TopKSketch) active(elapsed time.Duration) bool {
	if cs.activationRPS <= 0 {
		return true
	}
	if elapsed <= 0 {
		return true
	}
	rps := float64(cs.tickSize) / elapsed.Seconds()
	return rps >= float64(cs.activationRPS)
}
