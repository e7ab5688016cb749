// Package netiface 实现网络接口的发现与分类
//
// netiface 模块负责：
// - 按命名约定对接口进行类型分类
// - 维护已发现接口的注册表
// - 周期性枚举宿主机接口并同步注册表
package netiface

import (
	"strings"

	"github.com/dep2p/go-backhaul/pkg/types"
)

// ============================================================================
//                              接口分类
// ============================================================================

// prefixRule 命名前缀到接口类型的映射规则
type prefixRule struct {
	prefix string
	typ    types.InterfaceType
}

// prefixRules 分类规则表
//
// 按声明顺序匹配，长前缀排在短前缀之前（enx 在 en* 之前），
// 避免被更宽的规则抢先命中。
var prefixRules = []prefixRule{
	{"enx", types.InterfaceUsbTether}, // 基于 MAC 命名的 USB 网卡
	{"eth", types.InterfaceEthernet},
	{"eno", types.InterfaceEthernet},
	{"enp", types.InterfaceEthernet},
	{"ens", types.InterfaceEthernet},
	{"wlan", types.InterfaceWiFi},
	{"wlp", types.InterfaceWiFi},
	{"wwan", types.InterfaceLteModem},
	{"ppp", types.InterfaceLteModem},
	{"usb", types.InterfaceUsbTether},
	{"bnep", types.InterfaceBluetoothPan},
}

// Classify 根据接口名推断接口类型
//
// 无法识别的命名返回 InterfaceUnknown，此类接口仍可参与
// 评估，但策略偏好分量为 0。
func Classify(name string) types.InterfaceType {
	for _, rule := range prefixRules {
		if strings.HasPrefix(name, rule.prefix) {
			return rule.typ
		}
	}
	return types.InterfaceUnknown
}

// ============================================================================
//                              策略偏好
// ============================================================================

// policyBias 各接口类型的策略偏好值
//
// 偏好反映链路的运营成本与稳定性：有线最优，
// 蜂窝与共享链路依次降级。
var policyBias = map[types.InterfaceType]uint32{
	types.InterfaceEthernet:     100,
	types.InterfaceWiFi:         80,
	types.InterfaceLteModem:     60,
	types.InterfaceUsbTether:    40,
	types.InterfaceBluetoothPan: 30,
	types.InterfaceUnknown:      0,
}

// PolicyBias 返回接口类型的策略偏好值
func PolicyBias(typ types.InterfaceType) uint32 {
	return policyBias[typ]
}
