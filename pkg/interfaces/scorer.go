// Package interfaces 定义回程链路子系统的公共接口
//
// 本文件定义综合评分接口。
package interfaces

import (
	"github.com/dep2p/go-backhaul/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
// Scorer 综合评分器
// ════════════════════════════════════════════════════════════════════════════

// Scorer 根据健康统计与接口类型计算综合评分
//
// 评分为确定性纯函数：相同输入必然产生相同输出，
// 便于离线推演与测试。
type Scorer interface {
	// Score 计算单个接口的综合评分
	//
	// 评分由延迟、丢包、成功率、策略偏好四个分量加权求和，
	// 各分量在加权前裁剪到 [0, 1] 区间。
	Score(info types.InterfaceInfo, stats types.HealthStats) types.InterfaceScore

	// Better 判断 a 是否优于 b
	//
	// 总分高者优；总分相同时按接口名字典序取小者，
	// 保证选择结果确定。
	Better(a, b types.InterfaceScore) bool
}
