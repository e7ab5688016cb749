// Package types 定义 go-backhaul 的公共类型
//
// 本包是整个模块的共享词汇表，只包含纯数据类型和枚举，
// 不依赖任何内部实现包：
//
//   - enums.go  - 接口类型、接口状态、状态事件、探测类型
//   - iface.go  - InterfaceInfo 接口描述符
//   - health.go - HealthStats 健康统计快照、ProbeTarget/ProbeResult
//   - score.go  - InterfaceScore 评分明细
//   - status.go - ActiveBackhaul 等对外可观测输出
//
// 所有类型均为值语义，跨 goroutine 传递时应整体拷贝。
package types
