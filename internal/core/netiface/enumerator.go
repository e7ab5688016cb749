package netiface

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dep2p/go-backhaul/pkg/types"
)

// ============================================================================
//                              sysfs 枚举器
// ============================================================================

// sysClassNet sysfs 网络接口目录
const sysClassNet = "/sys/class/net"

// SysfsEnumerator 基于 /sys/class/net 的接口枚举器
//
// 实现 interfaces.Enumerator。链路层信息（operstate、carrier、
// MTU、MAC）读自 sysfs，IP 地址通过 net 包查询。sysfs 不可用
// 时返回空集并由调用方告警，不视为致命错误。
type SysfsEnumerator struct {
	// root sysfs 根目录，测试时可替换
	root string
}

// NewSysfsEnumerator 创建 sysfs 枚举器
func NewSysfsEnumerator() *SysfsEnumerator {
	return &SysfsEnumerator{root: sysClassNet}
}

// NewSysfsEnumeratorAt 创建指定根目录的枚举器（测试用）
func NewSysfsEnumeratorAt(root string) *SysfsEnumerator {
	return &SysfsEnumerator{root: root}
}

// Enumerate 返回当前所有网络接口的快照
//
// 单个接口的属性读取失败只会使该属性取零值，
// 不会中断整体枚举。
func (e *SysfsEnumerator) Enumerate() ([]types.InterfaceInfo, error) {
	entries, err := os.ReadDir(e.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	infos := make([]types.InterfaceInfo, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		info := types.InterfaceInfo{
			Name: name,
			Type: Classify(name),
		}

		info.Up = e.readString(name, "operstate") == "up"
		info.Carrier = e.readString(name, "carrier") == "1"
		info.MAC = e.readString(name, "address")
		if mtu, err := strconv.Atoi(e.readString(name, "mtu")); err == nil {
			info.MTU = mtu
		}

		e.fillAddresses(&info)
		infos = append(infos, info)
	}
	return infos, nil
}

// readString 读取 sysfs 属性文件并去除尾部换行
func (e *SysfsEnumerator) readString(iface, attr string) string {
	// 接口未启用时读 carrier 会返回 EINVAL，按空值处理
	data, err := os.ReadFile(filepath.Join(e.root, iface, attr))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// fillAddresses 填充接口的 IP 地址列表
func (e *SysfsEnumerator) fillAddresses(info *types.InterfaceInfo) {
	netIface, err := net.InterfaceByName(info.Name)
	if err != nil {
		return
	}
	addrs, err := netIface.Addrs()
	if err != nil {
		return
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP
		if ip.IsLinkLocalUnicast() {
			continue
		}
		if v4 := ip.To4(); v4 != nil {
			info.IPv4Addrs = append(info.IPv4Addrs, v4.String())
		} else {
			info.IPv6Addrs = append(info.IPv6Addrs, ip.String())
		}
	}
	info.HasAddress = len(info.IPv4Addrs) > 0 || len(info.IPv6Addrs) > 0
}

// ============================================================================
//                              静态枚举器
// ============================================================================

// StaticEnumerator 返回固定接口清单的枚举器（测试用）
type StaticEnumerator struct {
	Infos []types.InterfaceInfo
	Err   error
}

// Enumerate 返回预设的接口清单
func (e *StaticEnumerator) Enumerate() ([]types.InterfaceInfo, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	out := make([]types.InterfaceInfo, len(e.Infos))
	for i, info := range e.Infos {
		out[i] = info.Clone()
	}
	return out, nil
}
