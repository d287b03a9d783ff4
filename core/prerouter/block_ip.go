package prerouter

import (
	"fmt"
	"net/http"
	"time"

	"github.com/easyfin/easyfin/core"
	"github.com/easyfin/easyfin/topk"
)

const (
	defaultBlockCost  = 1
	bucketDurationSec = 3600 // 1 hour buckets
)

// getTimeBucket returns the bucket number for a given time (periods since Unix epoch)
func getTimeBucket(t time.Time) int64 {
	return t.Unix() / bucketDurationSec
}

// formatBlockKey creates a consistent cache key for blocked IPs
func formatBlockKey(ip string, bucket int64) string {
	return fmt.Sprintf("%s|%d", ip, bucket)
}

// BlockIp is a circuit breaker against a single client flooding the
// server. It is not a per user rate limiter.
type BlockIp struct {
	app    *core.App
	sketch *topk.TopKSketch
}

// sketchLevels trade memory for accuracy.
//   - "low":    ~10 KB. Low traffic sites (< 50 RPS).
//   - "medium": ~120 KB. Most deployments (50-500 RPS).
//   - "high":   ~640 KB. High traffic sites (> 500 RPS).
var sketchLevels = map[string]topk.SketchParams{
	"low": {
		K:               2,
		WindowSize:      5,
		Width:           256,
		Depth:           2,
		TickSize:        100,
		MaxSharePercent: 40,
		ActivationRPS:   20,
	},
	"medium": {
		K:               3,
		WindowSize:      10,
		Width:           1024,
		Depth:           3,
		TickSize:        100,
		MaxSharePercent: 30,
		ActivationRPS:   50,
	},
	"high": {
		K:               5,
		WindowSize:      10,
		Width:           4096,
		Depth:           4,
		TickSize:        200,
		MaxSharePercent: 20,
		ActivationRPS:   200,
	},
}

// NewBlockIp builds the sketch for the configured level. Unknown levels,
// rejected by config validation, fall back to "medium".
func NewBlockIp(app *core.App) *BlockIp {
	params, ok := sketchLevels[app.Config().BlockIp.Level]
	if !ok {
		params = sketchLevels["medium"]
	}

	return &BlockIp{
		app:    app,
		sketch: topk.New(params),
	}
}

func (b *BlockIp) Execute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.IsEnabled() {
			ip := b.app.ClientIP(r)

			if b.IsBlocked(ip) {
				core.WriteJsonError(w, core.ErrorIpBlocked)
				return
			}
			b.Process(ip)
		}

		next.ServeHTTP(w, r)
	})
}

func (b *BlockIp) IsEnabled() bool {
	return b.app.Config().BlockIp.Activated
}

// IsBlocked checks if a given IP address is currently blocked by looking in the cache.
func (b *BlockIp) IsBlocked(ip string) bool {
	key := formatBlockKey(ip, getTimeBucket(time.Now()))
	_, found := b.app.Cache().Get(key)
	return found
}

// Block stores ip in the current bucket and, when the block outlives it, in
// the next one too.
func (b *BlockIp) Block(ip string) error {
	duration := b.app.Config().BlockIp.BlockDuration.Duration
	now := time.Now()
	currentBucket := getTimeBucket(now)
	nextBucket := currentBucket + 1

	currentKey := formatBlockKey(ip, currentBucket)
	if !b.app.Cache().SetWithTTL(currentKey, true, defaultBlockCost, duration) {
		return fmt.Errorf("failed to block IP %s in current bucket %d", ip, currentBucket)
	}
	b.app.Logger().Info("IP blocked in current bucket",
		"ip", ip,
		"bucket", currentBucket,
		"duration", duration)

	timeUntilNextBucket := time.Duration(nextBucket*bucketDurationSec-now.Unix()) * time.Second
	ttlNext := duration - timeUntilNextBucket

	if ttlNext > 0 {
		nextKey := formatBlockKey(ip, nextBucket)
		if !b.app.Cache().SetWithTTL(nextKey, true, defaultBlockCost, ttlNext) {
			return fmt.Errorf("failed to block IP %s in next bucket %d", ip, nextBucket)
		}
		b.app.Logger().Info("IP blocked in next bucket",
			"ip", ip,
			"bucket", nextBucket,
			"duration", ttlNext)
	}

	return nil
}

// Process counts one request for ip and blocks the heavy hitters the sketch
// reports. Blocking runs off the request path.
func (b *BlockIp) Process(ip string) {
	blockedIPs := b.sketch.ProcessTick(ip)
	if len(blockedIPs) == 0 {
		return
	}

	b.app.Logger().Warn("IPs to be blocked", "ips", blockedIPs)
	go func(ips []string) {
		for _, ip := range ips {
			if err := b.Block(ip); err != nil {
				b.app.Logger().Error("failed to block IP", "ip", ip, "err", err)
			}
		}
	}(blockedIPs)
}
