package types

// ============================================================================
//                              InterfaceInfo - 接口描述符
// ============================================================================

// InterfaceInfo 网络接口描述符
//
// 由枚举器（Enumerator）产生，经注册表（Registry）按名字合并。
// 值语义：注册表返回的永远是拷贝，调用方的修改不会影响注册表。
type InterfaceInfo struct {
	// Name 接口名（如 "eth0"）
	Name string

	// Type 分类后的接口类型
	Type InterfaceType

	// Up 管理状态是否为 up
	Up bool

	// Carrier 是否有载波（物理链路）
	Carrier bool

	// HasAddress 是否分配了地址
	HasAddress bool

	// MTU 最大传输单元
	MTU int

	// MAC 硬件地址（可为空）
	MAC string

	// IPv4Addrs 已分配的 IPv4 地址
	IPv4Addrs []string

	// IPv6Addrs 已分配的 IPv6 地址
	IPv6Addrs []string
}

// IsCandidate 判断是否为上行候选接口
//
// 候选条件：管理 up + 有载波 + 已分配地址 + 类型已知。
// 四个条件缺一不可，注册表的 Candidates() 以此过滤。
func (i InterfaceInfo) IsCandidate() bool {
	return i.Up && i.Carrier && i.HasAddress && i.Type != InterfaceUnknown
}

// PrimaryIPv4 返回第一个 IPv4 地址，没有时返回空串
func (i InterfaceInfo) PrimaryIPv4() string {
	if len(i.IPv4Addrs) == 0 {
		return ""
	}
	return i.IPv4Addrs[0]
}

// Clone 深拷贝描述符
func (i InterfaceInfo) Clone() InterfaceInfo {
	c := i
	c.IPv4Addrs = append([]string(nil), i.IPv4Addrs...)
	c.IPv6Addrs = append([]string(nil), i.IPv6Addrs...)
	return c
}
