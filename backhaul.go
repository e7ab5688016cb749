package backhaul

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-backhaul/internal/util/logger"
	"github.com/dep2p/go-backhaul/pkg/interfaces"
	"github.com/dep2p/go-backhaul/pkg/types"
)

var log = logger.Logger("backhaul")

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
// 更新此版本号时，请同步更新 version.json
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "go-backhaul " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ════════════════════════════════════════════════════════════════════════════
//                              启动超时
// ════════════════════════════════════════════════════════════════════════════

const (
	// startTimeout Fx App 启动超时
	startTimeout = 30 * time.Second

	// stopTimeout Fx App 停止超时
	stopTimeout = 15 * time.Second
)

// ════════════════════════════════════════════════════════════════════════════
//                              Backhaul 门面
// ════════════════════════════════════════════════════════════════════════════

// Backhaul 回程链路编排门面
//
// Backhaul 是用户与编排子系统交互的主入口，
// 聚合接口发现、健康探测、状态机、评分、切换与整形组件。
//
// 使用示例：
//
//	b, err := backhaul.New(
//	    backhaul.WithProbeInterval(5*time.Second),
//	    backhaul.WithIntrospect("127.0.0.1:6061"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := b.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Stop(context.Background())
type Backhaul struct {
	app     *fx.App
	manager interfaces.Manager
	logFile *os.File

	mu      sync.Mutex
	started bool
	closed  bool
}

// New 创建编排门面
//
// 选项按传入顺序应用，后者覆盖前者。配置校验失败时
// 立即返回错误，不会留下半初始化的实例。
func New(opts ...Option) (*Backhaul, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	b := &Backhaul{}

	// 日志文件必须在任何组件发声之前就位
	if o.logFile != "" {
		f, err := os.OpenFile(o.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logger.SetOutput(f)
		b.logFile = f
	}

	var target populateTarget
	app, err := buildFxApp(o, &target)
	if err == nil && app.Err() != nil {
		err = fmt.Errorf("build backhaul: %w", app.Err())
	}
	if err != nil {
		if b.logFile != nil {
			_ = b.logFile.Close()
		}
		return nil, err
	}

	b.app = app
	b.manager = target.Manager
	return b, nil
}

// Start 启动全部组件
//
// 阻塞直到发现循环与评估循环就绪，或超时。
func (b *Backhaul) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	if b.started {
		return ErrAlreadyStarted
	}

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := b.app.Start(startCtx); err != nil {
		return fmt.Errorf("start backhaul: %w", err)
	}

	b.started = true
	log.Info("回程编排已启动", "version", Version)
	return nil
}

// Stop 停止全部组件并清理路由与整形规则
//
// 可重复调用，重复调用为空操作。
func (b *Backhaul) Stop(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started || b.closed {
		return nil
	}

	stopCtx, cancel := context.WithTimeout(ctx, stopTimeout)
	defer cancel()

	err := b.app.Stop(stopCtx)
	b.started = false
	b.closed = true

	if b.logFile != nil {
		_ = b.logFile.Close()
		b.logFile = nil
	}

	if err != nil {
		return fmt.Errorf("stop backhaul: %w", err)
	}
	log.Info("回程编排已停止")
	return nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              观测与控制
// ════════════════════════════════════════════════════════════════════════════

// CurrentBackhaul 返回当前活跃回程链路
//
// 尚未选出活跃链路时第二个返回值为 false。
func (b *Backhaul) CurrentBackhaul() (types.ActiveBackhaul, bool) {
	return b.manager.CurrentBackhaul()
}

// InterfaceStates 返回所有被跟踪接口的完整状态快照
func (b *Backhaul) InterfaceStates() []types.InterfaceStatus {
	return b.manager.InterfaceStates()
}

// LastKeepalive 返回最近一次硬件保活标记
func (b *Backhaul) LastKeepalive() (types.KeepaliveMarker, bool) {
	return b.manager.LastKeepalive()
}

// Tick 手动执行一轮评估
//
// 正常路径由内部定时器驱动，本方法用于测试与管理面触发。
func (b *Backhaul) Tick(ctx context.Context) error {
	if !b.isStarted() {
		return ErrNotStarted
	}
	return b.manager.Tick(ctx)
}

// ActivateRelayQos 在当前活跃接口上启用中继整形
//
// 无活跃接口时为成功的空操作，待切换成功后自动安装。
func (b *Backhaul) ActivateRelayQos(ctx context.Context) error {
	if !b.isStarted() {
		return ErrNotStarted
	}
	return b.manager.ActivateRelayQos(ctx)
}

// DeactivateRelayQos 停用中继整形
func (b *Backhaul) DeactivateRelayQos(ctx context.Context) error {
	if !b.isStarted() {
		return ErrNotStarted
	}
	return b.manager.DeactivateRelayQos(ctx)
}

// isStarted 返回当前是否处于已启动状态
func (b *Backhaul) isStarted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.started && !b.closed
}
