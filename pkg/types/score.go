package types

// ============================================================================
//                              InterfaceScore - 接口评分
// ============================================================================

// InterfaceScore 接口综合评分明细
//
// 每个 tick 重算一次，不做持久化。Total 为四个分量之和的截断整数，
// 分量各自被钳制在 [0, 对应权重] 区间内。数值越高越优。
type InterfaceScore struct {
	// Interface 接口名
	Interface string `json:"interface"`

	// Total 总分（截断整数，用于比较）
	Total uint32 `json:"total"`

	// Latency 延迟分量
	Latency uint32 `json:"latency"`

	// Loss 丢包分量
	Loss uint32 `json:"loss"`

	// Success 成功率分量
	Success uint32 `json:"success"`

	// PolicyBias 策略偏好分量
	PolicyBias uint32 `json:"policy_bias"`
}
