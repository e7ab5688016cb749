package netiface

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/internal/util/logger"
	"github.com/dep2p/go-backhaul/pkg/interfaces"
)

// 包级别日志实例
var log = logger.Logger("netiface")

// ============================================================================
//                              发现服务
// ============================================================================

// Discovery 周期性枚举宿主机接口并同步注册表
//
// 注册表是枚举结果的唯一落点：发现循环只负责搬运，
// 消费方（编排器）从注册表读快照。
type Discovery struct {
	cfg        config.DiscoveryConfig
	enumerator interfaces.Enumerator
	registry   *Registry
	clk        clock.Clock

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// NewDiscovery 创建发现服务
func NewDiscovery(cfg config.DiscoveryConfig, enumerator interfaces.Enumerator, registry *Registry, clk clock.Clock) *Discovery {
	return &Discovery{
		cfg:        cfg,
		enumerator: enumerator,
		registry:   registry,
		clk:        clk,
	}
}

// Registry 返回发现服务维护的注册表
func (d *Discovery) Registry() *Registry {
	return d.registry
}

// Refresh 立即执行一轮枚举并同步注册表
//
// 枚举失败时保留注册表原内容并告警，不向上传播错误：
// 接口枚举的瞬时失败不应中断评估循环。
func (d *Discovery) Refresh() {
	infos, err := d.enumerator.Enumerate()
	if err != nil {
		log.Warn("接口枚举失败", "err", err)
		return
	}

	added, removed := d.registry.Update(infos)
	for _, name := range added {
		log.Info("发现新接口", "iface", name, "type", Classify(name).String())
	}
	for _, name := range removed {
		log.Info("接口已消失", "iface", name)
	}
}

// Start 启动发现循环
func (d *Discovery) Start(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.done = make(chan struct{})
	d.started = true

	// 启动前先同步一次，保证消费方启动即有视图
	d.Refresh()

	// 返回前建好定时器，启动即可确定地被时钟推进
	ticker := d.clk.Ticker(d.cfg.PollInterval)
	go d.loop(loopCtx, ticker)

	log.Info("接口发现循环启动", "interval", d.cfg.PollInterval)
	return nil
}

// Stop 停止发现循环
func (d *Discovery) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		return nil
	}

	d.cancel()
	<-d.done
	d.started = false

	log.Info("接口发现循环停止")
	return nil
}

// loop 发现循环主体
func (d *Discovery) loop(ctx context.Context, ticker *clock.Ticker) {
	defer close(d.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Refresh()
		}
	}
}
