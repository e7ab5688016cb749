package backhaul

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-backhaul/internal/config"

	// Core Layer
	"github.com/dep2p/go-backhaul/internal/core/manager"
	"github.com/dep2p/go-backhaul/internal/core/netiface"

	// Debug Layer
	"github.com/dep2p/go-backhaul/internal/debug/introspect"

	"github.com/dep2p/go-backhaul/pkg/interfaces"
)

// buildFxApp 构建 Fx 应用
//
// 组装所有内部模块：
//  1. Core Layer: netiface（发现）→ manager（探测/状态机/评分/切换/整形）
//  2. Debug Layer: introspect（配置启用时加载）
//
// 注入组件（runner、enumerator、clock）通过命名依赖提供，
// 各模块在缺省时回退到真实实现。
func buildFxApp(opts *options, target *populateTarget) (*fx.App, error) {
	cfg := opts.toInternalConfig()

	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 基础供给
	// ════════════════════════════════════════════════════════════════════════
	clk := opts.clock
	if clk == nil {
		clk = clock.New()
	}

	modules := []fx.Option{
		fx.Supply(cfg),
		fx.Provide(func() clock.Clock { return clk }),
	}

	// 注入组件（可选，命名依赖）
	if opts.runner != nil {
		runner := opts.runner
		modules = append(modules, fx.Provide(
			fx.Annotate(
				func() interfaces.Runner { return runner },
				fx.ResultTags(`name:"runner"`),
			),
		))
	}
	if opts.enumerator != nil {
		enumerator := opts.enumerator
		modules = append(modules, fx.Provide(
			fx.Annotate(
				func() interfaces.Enumerator { return enumerator },
				fx.ResultTags(`name:"enumerator"`),
			),
		))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. Core Layer
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		netiface.Module(), // 接口发现
		manager.Module(),  // 编排器
	)

	// ════════════════════════════════════════════════════════════════════════
	// 4. Debug Layer（条件加载）
	// ════════════════════════════════════════════════════════════════════════
	if cfg.Introspect.Enable {
		modules = append(modules, introspect.Module())
	}

	// ════════════════════════════════════════════════════════════════════════
	// 5. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		fx.Populate(target),
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
		fx.NopLogger,
	)

	return fx.New(modules...), nil
}

// populateTarget 从容器中提取门面需要的组件
type populateTarget struct {
	fx.In

	Manager interfaces.Manager `name:"manager"`
}
