package netiface

import (
	"context"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-backhaul/internal/config"
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

	// Enumerator 接口枚举器（可选，默认 sysfs 实现）
	Enumerator interfaces.Enumerator `name:"enumerator" optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Registry 接口注册表
	Registry interfaces.Registry `name:"registry"`

	// Discovery 发现服务
	Discovery *Discovery `name:"discovery"`
}

// ============================================================================
//                              服务提供
// ============================================================================

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	enumerator := input.Enumerator
	if enumerator == nil {
		enumerator = NewSysfsEnumerator()
	}

	registry := NewRegistry()
	discovery := NewDiscovery(input.Config.Discovery, enumerator, registry, input.Clock)

	return ModuleOutput{
		Registry:  registry,
		Discovery: discovery,
	}, nil
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("netiface",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In

	LC        fx.Lifecycle
	Discovery *Discovery `name:"discovery"`
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("接口发现模块启动")
			return input.Discovery.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			log.Info("接口发现模块停止")
			return input.Discovery.Stop()
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
	Name = "netiface"
	// Description 模块描述
	Description = "网络接口发现模块，提供接口枚举、分类与注册表能力"
)
