package manager

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/pkg/types"
)

// ============================================================================
//                              硬件保活
// ============================================================================

// neverEmitted lastNanos 的哨兵值：尚未发射过任何标记
const neverEmitted = math.MinInt64

// keepaliveEmitter 硬件保活标记发射器
//
// 评估循环每轮尝试发射一次保活标记，供看门狗类外设确认
// 本机仍具备上行能力。发射做了限频：两次标记之间至少间隔
// MinInterval，限频判定用 CAS 完成，并发调用下同一窗口
// 至多发射一次。
type keepaliveEmitter struct {
	cfg config.KeepaliveConfig
	clk clock.Clock

	// lastNanos 最近一次发射的时间戳（Unix 纳秒），
	// neverEmitted 表示从未发射
	lastNanos atomic.Int64

	mu     sync.RWMutex
	marker types.KeepaliveMarker
	fired  bool
}

// newKeepaliveEmitter 创建保活发射器
func newKeepaliveEmitter(cfg config.KeepaliveConfig, clk clock.Clock) *keepaliveEmitter {
	k := &keepaliveEmitter{cfg: cfg, clk: clk}
	k.lastNanos.Store(neverEmitted)
	return k
}

// emit 尝试发射一次保活标记
//
// 未启用或处于限频窗口内时不发射，返回 false。
func (k *keepaliveEmitter) emit() (types.KeepaliveMarker, bool) {
	if !k.cfg.Enable {
		return types.KeepaliveMarker{}, false
	}

	now := k.clk.Now()
	nowNanos := now.UnixNano()
	last := k.lastNanos.Load()

	if last != neverEmitted && nowNanos-last < int64(k.cfg.MinInterval) {
		return types.KeepaliveMarker{}, false
	}
	if !k.lastNanos.CompareAndSwap(last, nowNanos) {
		// 并发竞争：另一个调用已抢到本窗口
		return types.KeepaliveMarker{}, false
	}

	marker := types.KeepaliveMarker{
		Token:     uuid.NewString(),
		EmittedAt: now,
	}

	k.mu.Lock()
	k.marker = marker
	k.fired = true
	k.mu.Unlock()

	log.Info("硬件保活标记已发射", "token", marker.Token)
	return marker, true
}

// last 返回最近一次发射的标记
func (k *keepaliveEmitter) last() (types.KeepaliveMarker, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if !k.fired {
		return types.KeepaliveMarker{}, false
	}
	return k.marker, true
}
