// Package interfaces 定义回程链路子系统的公共接口
//
// 本文件定义中继 QoS 整形接口。
package interfaces

import (
	"context"
)

// ════════════════════════════════════════════════════════════════════════════
// QosManager 中继 QoS 管理器
// ════════════════════════════════════════════════════════════════════════════

// QosManager 在活跃接口上维护中继流量的带宽保障
//
// 通过分层令牌桶为中继流量保留带宽，并以 DSCP 标记分类。
// 整形规则绑定到单一接口：活跃接口变化时先拆除旧规则
// 再安装新规则。
type QosManager interface {
	// Activate 在指定接口上安装整形规则
	//
	// 已在其他接口上激活时先行拆除。幂等：对同一接口
	// 重复调用为空操作。
	Activate(ctx context.Context, ifaceName string) error

	// Deactivate 拆除当前整形规则
	//
	// 未激活时为空操作。
	Deactivate(ctx context.Context) error

	// ActiveInterface 返回当前安装整形规则的接口名
	//
	// 未激活时第二个返回值为 false。
	ActiveInterface() (string, bool)
}
