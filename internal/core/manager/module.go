package manager

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/internal/core/health"
	"github.com/dep2p/go-backhaul/internal/core/metrics"
	"github.com/dep2p/go-backhaul/internal/core/netexec"
	"github.com/dep2p/go-backhaul/internal/core/netiface"
	"github.com/dep2p/go-backhaul/internal/core/qos"
	"github.com/dep2p/go-backhaul/internal/core/routing"
	"github.com/dep2p/go-backhaul/internal/core/scoring"
	"github.com/dep2p/go-backhaul/pkg/interfaces"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 配置
	Config *config.Config

	// Clock 时钟源
	Clock clock.Clock

	// Discovery 接口发现服务
	Discovery *netiface.Discovery `name:"discovery"`

	// Registry 接口注册表
	Registry interfaces.Registry `name:"registry"`

	// Runner 系统命令执行器（可选，默认真实执行器）
	Runner interfaces.Runner `name:"runner" optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Manager 回程链路编排器
	Manager interfaces.Manager `name:"manager"`

	// Metrics 指标集（自省服务导出用）
	Metrics *metrics.Metrics `name:"metrics"`
}

// ============================================================================
//                              服务提供
// ============================================================================

// ProvideServices 提供模块服务
//
// 编排器的内部组件（探测器、评分器、路由与整形管理器）
// 在此组装，不对外单独暴露。
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	runner := input.Runner
	if runner == nil {
		runner = netexec.NewExecRunner()
	}

	mtr := metrics.New()
	mgr := NewManager(input.Config, Deps{
		Discovery: input.Discovery,
		Registry:  input.Registry,
		Prober:    health.NewProber(input.Config.Probe, input.Clock),
		Scorer:    scoring.NewScorer(input.Config.Scoring),
		Router:    routing.NewManager(input.Config.Routing, runner),
		Qos:       qos.NewManager(input.Config.RelayQos, runner),
		Metrics:   mtr,
		Clock:     input.Clock,
	})

	return ModuleOutput{
		Manager: mgr,
		Metrics: mtr,
	}, nil
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("manager",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In

	LC      fx.Lifecycle
	Manager interfaces.Manager `name:"manager"`
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("编排器模块启动")
			return input.Manager.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			log.Info("编排器模块停止")
			return input.Manager.Stop(ctx)
		},
	})
}

// ============================================================================
//                              模块元信息
// ============================================================================

// 模块元信息常量
const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "manager"
	// Description 模块描述
	Description = "回程链路编排模块，提供评估循环、选优与原子切换能力"
)
