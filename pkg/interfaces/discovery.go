// Package interfaces 定义回程链路子系统的公共接口
//
// 本文件定义接口发现层：枚举器与注册表。
package interfaces

import (
	"github.com/dep2p/go-backhaul/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
// Enumerator 接口枚举器
// ════════════════════════════════════════════════════════════════════════════

// Enumerator 枚举宿主机的网络接口
//
// 实现从操作系统读取接口清单（名称、类型、链路状态、地址），
// 每次调用返回当前快照，不做缓存。
type Enumerator interface {
	// Enumerate 返回当前所有网络接口的快照
	//
	// 返回的切片包括非候选接口（如 loopback、虚拟接口），
	// 由调用方通过 InterfaceInfo.IsCandidate 过滤。
	// 单个接口读取失败不应中断整体枚举。
	Enumerate() ([]types.InterfaceInfo, error)
}

// ════════════════════════════════════════════════════════════════════════════
// Registry 接口注册表
// ════════════════════════════════════════════════════════════════════════════

// Registry 维护已发现接口的当前视图
//
// 注册表是发现结果的唯一存放处：每轮枚举后通过 Update 整体替换，
// 读取方通过 Get/List 获取快照。所有方法并发安全。
type Registry interface {
	// Update 用新一轮枚举结果替换注册表内容
	//
	// 返回本轮新增与消失的接口名，供编排器触发状态机的
	// 创建与清理。
	Update(infos []types.InterfaceInfo) (added, removed []string)

	// Get 返回指定名称的接口信息
	//
	// 接口不存在时第二个返回值为 false。
	Get(name string) (types.InterfaceInfo, bool)

	// List 返回所有已注册接口的快照
	//
	// 返回值按接口名升序排列，调用方可安全修改。
	List() []types.InterfaceInfo

	// Candidates 返回所有满足候选条件的接口
	//
	// 候选条件见 types.InterfaceInfo.IsCandidate。
	Candidates() []types.InterfaceInfo
}
