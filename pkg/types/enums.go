package types

// ============================================================================
//                              InterfaceType - 接口类型
// ============================================================================

// InterfaceType 物理上行接口类型
//
// 由接口名前缀匹配得出（见 internal/core/netiface 的分类器）。
// 未匹配任何前缀的接口为 InterfaceUnknown，不参与候选集。
type InterfaceType int

const (
	// InterfaceUnknown 未知类型
	InterfaceUnknown InterfaceType = iota
	// InterfaceEthernet 有线以太网（eth*, eno*, enp*, ens*）
	InterfaceEthernet
	// InterfaceWiFi Wi-Fi 客户端（wlan*, wlp*）
	InterfaceWiFi
	// InterfaceLteModem LTE/5G 蜂窝调制解调器（wwan*, ppp*）
	InterfaceLteModem
	// InterfaceUsbTether USB 网络共享（usb*, enx*）
	InterfaceUsbTether
	// InterfaceBluetoothPan 蓝牙 PAN（bnep*）
	InterfaceBluetoothPan
)

// String 返回接口类型的字符串表示
func (t InterfaceType) String() string {
	switch t {
	case InterfaceEthernet:
		return "ethernet"
	case InterfaceWiFi:
		return "wifi"
	case InterfaceLteModem:
		return "lte"
	case InterfaceUsbTether:
		return "usb-tether"
	case InterfaceBluetoothPan:
		return "bluetooth-pan"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              InterfaceState - 接口状态
// ============================================================================

// InterfaceState 接口生命周期状态
//
// 状态迁移由 internal/core/fsm 的状态机驱动，
// 任何组件都不得绕过状态机直接修改状态。
type InterfaceState int

const (
	// StateProbing 探测中（初始状态，尚未确定健康度）
	StateProbing InterfaceState = iota
	// StateUp 正常可用
	StateUp
	// StateDegraded 降级（可用但质量下降）
	StateDegraded
	// StateDown 不可用
	StateDown
)

// String 返回状态的字符串表示
func (s InterfaceState) String() string {
	switch s {
	case StateProbing:
		return "PROBING"
	case StateUp:
		return "UP"
	case StateDegraded:
		return "DEGRADED"
	case StateDown:
		return "DOWN"
	default:
		return "INVALID"
	}
}

// ============================================================================
//                              StateEvent - 状态事件
// ============================================================================

// StateEvent 驱动状态机的事件
type StateEvent int

const (
	// EventHealthyProbe 探测结果健康
	EventHealthyProbe StateEvent = iota
	// EventDegradedProbe 探测结果降级
	EventDegradedProbe
	// EventFailedProbe 探测结果失败
	EventFailedProbe
	// EventPhysicalDown 物理层掉线（绕过所有防抖，立即生效）
	EventPhysicalDown
	// EventPhysicalUp 物理层恢复
	EventPhysicalUp
)

// String 返回事件的字符串表示
func (e StateEvent) String() string {
	switch e {
	case EventHealthyProbe:
		return "healthy-probe"
	case EventDegradedProbe:
		return "degraded-probe"
	case EventFailedProbe:
		return "failed-probe"
	case EventPhysicalDown:
		return "physical-down"
	case EventPhysicalUp:
		return "physical-up"
	default:
		return "invalid"
	}
}

// ============================================================================
//                              ProbeKind - 探测类型
// ============================================================================

// ProbeKind 探测类型
//
// 封闭枚举：新增探测方式必须在此登记并在 prober 中实现分支，
// 不提供动态插件机制。
type ProbeKind int

const (
	// ProbeTCPConnect TCP 连接探测（默认）
	ProbeTCPConnect ProbeKind = iota
	// ProbeDNSQuery DNS A 记录查询探测
	ProbeDNSQuery
)

// String 返回探测类型的字符串表示
func (k ProbeKind) String() string {
	switch k {
	case ProbeTCPConnect:
		return "tcp-connect"
	case ProbeDNSQuery:
		return "dns-query"
	default:
		return "invalid"
	}
}
