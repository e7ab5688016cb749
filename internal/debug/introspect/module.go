package introspect

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/internal/core/metrics"
	"github.com/dep2p/go-backhaul/pkg/interfaces"
)

// Module 返回自省服务 Fx 模块
func Module() fx.Option {
	return fx.Module("introspect",
		fx.Provide(NewFromParams),
		fx.Invoke(registerLifecycle),
	)
}

// IntrospectParams 自省服务依赖参数
type IntrospectParams struct {
	fx.In

	Config  *config.Config
	Manager interfaces.Manager `name:"manager" optional:"true"`
	Metrics *metrics.Metrics   `name:"metrics" optional:"true"`
}

// IntrospectOutput 自省服务输出
type IntrospectOutput struct {
	fx.Out

	Server *Server `optional:"true"`
}

// NewFromParams 从参数创建自省服务
func NewFromParams(params IntrospectParams) IntrospectOutput {
	if params.Config == nil || !params.Config.Introspect.Enable {
		// 禁用时返回空输出
		return IntrospectOutput{}
	}

	addr := params.Config.Introspect.Addr
	if addr == "" {
		addr = DefaultAddr
	}

	return IntrospectOutput{
		Server: New(Config{
			Addr:    addr,
			Manager: params.Manager,
			Metrics: params.Metrics,
		}),
	}
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, server *Server) {
	if server == nil {
		// 禁用时跳过
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return server.Stop()
		},
	})
}
