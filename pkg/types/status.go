package types

import "time"

// ============================================================================
//                              ActiveBackhaul - 活跃上行
// ============================================================================

// ActiveBackhaul 当前活跃上行的对外快照
type ActiveBackhaul struct {
	// Interface 接口名
	Interface string `json:"interface"`

	// State 当前状态
	State InterfaceState `json:"state"`

	// Score 最近一次评分总分
	Score uint32 `json:"score"`
}

// ============================================================================
//                              InterfaceStatus - 接口状态表项
// ============================================================================

// InterfaceStatus 单个接口的完整可观测状态
//
// 由 Manager.InterfaceStates() 返回，用于状态表、
// 自省服务与指标导出。
type InterfaceStatus struct {
	// Info 接口描述符
	Info InterfaceInfo `json:"info"`

	// State 状态机当前状态
	State InterfaceState `json:"state"`

	// TimeInState 进入当前状态后经过的时长
	TimeInState time.Duration `json:"time_in_state"`

	// Score 最近一次评分
	Score InterfaceScore `json:"score"`

	// Health 健康统计快照
	Health HealthStats `json:"health"`
}

// ============================================================================
//                              KeepaliveMarker - 保活标记
// ============================================================================

// KeepaliveMarker 硬件保活标记
//
// 由编排器按最小间隔以 CAS 语义发出，Token 每次发出时更新，
// 调用方可据此判断是否产生了新标记。
type KeepaliveMarker struct {
	// Token 本次标记的唯一标识
	Token string `json:"token"`

	// EmittedAt 发出时间
	EmittedAt time.Time `json:"emitted_at"`
}
