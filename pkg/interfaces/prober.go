// Package interfaces 定义回程链路子系统的公共接口
//
// 本文件定义健康探测接口。
package interfaces

import (
	"context"

	"github.com/dep2p/go-backhaul/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
// Prober 健康探测器
// ════════════════════════════════════════════════════════════════════════════

// Prober 对指定接口执行主动连通性探测
//
// 探测必须绑定到接口自身的地址发起，确保流量走被测接口
// 而非当前默认路由。实现必须为每次探测设置有界超时。
type Prober interface {
	// Probe 对接口执行一轮探测，依次尝试所有目标
	//
	// 任一目标成功即返回成功结果；全部失败返回最后一次
	// 失败结果。结果同时记入该接口的统计量。
	// ctx 取消时尽快返回。
	Probe(ctx context.Context, iface types.InterfaceInfo) types.ProbeResult

	// Stats 返回接口的累计健康统计
	//
	// 接口从未被探测时第二个返回值为 false。
	Stats(ifaceName string) (types.HealthStats, bool)

	// Forget 清除接口的累计统计
	//
	// 接口消失后由编排器调用，避免旧统计影响重新插入
	// 后的评估。
	Forget(ifaceName string)
}
