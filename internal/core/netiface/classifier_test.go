package netiface

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dep2p/go-backhaul/pkg/types"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want types.InterfaceType
	}{
		{"eth0", types.InterfaceEthernet},
		{"eno1", types.InterfaceEthernet},
		{"enp3s0", types.InterfaceEthernet},
		{"ens192", types.InterfaceEthernet},
		{"wlan0", types.InterfaceWiFi},
		{"wlp2s0", types.InterfaceWiFi},
		{"wwan0", types.InterfaceLteModem},
		{"ppp0", types.InterfaceLteModem},
		{"usb0", types.InterfaceUsbTether},
		{"enx00e04c680001", types.InterfaceUsbTether},
		{"bnep0", types.InterfaceBluetoothPan},
		{"lo", types.InterfaceUnknown},
		{"docker0", types.InterfaceUnknown},
		{"veth1a2b", types.InterfaceUnknown},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.name), "iface %s", tc.name)
	}
}

func TestClassify_EnxBeforeEthernetRules(t *testing.T) {
	// enx 前缀必须在 en* 规则之前命中
	assert.Equal(t, types.InterfaceUsbTether, Classify("enx0a1b2c3d4e5f"))
}

func TestPolicyBias_Ordering(t *testing.T) {
	// 偏好严格递减：有线 > 无线 > 蜂窝 > USB 共享 > 蓝牙 > 未知
	assert.Greater(t, PolicyBias(types.InterfaceEthernet), PolicyBias(types.InterfaceWiFi))
	assert.Greater(t, PolicyBias(types.InterfaceWiFi), PolicyBias(types.InterfaceLteModem))
	assert.Greater(t, PolicyBias(types.InterfaceLteModem), PolicyBias(types.InterfaceUsbTether))
	assert.Greater(t, PolicyBias(types.InterfaceUsbTether), PolicyBias(types.InterfaceBluetoothPan))
	assert.Greater(t, PolicyBias(types.InterfaceBluetoothPan), PolicyBias(types.InterfaceUnknown))
	assert.Equal(t, uint32(0), PolicyBias(types.InterfaceUnknown))
}
