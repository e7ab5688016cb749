package fsm

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/pkg/types"
)

// newTestMachine 创建挂在 mock 时钟上的状态机
func newTestMachine() (*Machine, *clock.Mock) {
	mock := clock.NewMock()
	m := NewMachine("eth0", config.DefaultStateMachineConfig(), mock)
	return m, mock
}

// driveToUp 将状态机从初始 PROBING 驱动到 UP
func driveToUp(t *testing.T, m *Machine, mock *clock.Mock) {
	t.Helper()
	cfg := config.DefaultStateMachineConfig()

	require.False(t, m.HandleEvent(types.EventHealthyProbe))
	mock.Add(cfg.ProbingToUpHoldDown)
	require.True(t, m.Tick())
	require.Equal(t, types.StateUp, m.State())
}

func TestMachine_InitialStateProbing(t *testing.T) {
	m, _ := newTestMachine()
	assert.Equal(t, types.StateProbing, m.State())
	assert.Equal(t, "eth0", m.Interface())
}

func TestMachine_ProbingToUpAfterHoldDown(t *testing.T) {
	m, mock := newTestMachine()
	cfg := config.DefaultStateMachineConfig()

	// 健康事件进入排队，保持时间未到不迁移
	assert.False(t, m.HandleEvent(types.EventHealthyProbe))
	assert.Equal(t, types.StateProbing, m.State())

	mock.Add(cfg.ProbingToUpHoldDown / 2)
	assert.False(t, m.Tick())

	mock.Add(cfg.ProbingToUpHoldDown / 2)
	assert.True(t, m.Tick())
	assert.Equal(t, types.StateUp, m.State())
}

func TestMachine_UpToDegradedExactlyOnce(t *testing.T) {
	m, mock := newTestMachine()
	cfg := config.DefaultStateMachineConfig()
	driveToUp(t, m, mock)

	// 反复投递 Failed，保持时间内绝不迁移
	transitions := 0
	for i := 0; i < 10; i++ {
		if m.HandleEvent(types.EventFailedProbe) {
			transitions++
		}
		if m.Tick() {
			transitions++
		}
		mock.Add(cfg.UpToDegradedHoldDown / 5)
	}

	// 仅迁移一次：UP → DEGRADED
	assert.Equal(t, 1, transitions)
	assert.Equal(t, types.StateDegraded, m.State())
}

func TestMachine_PhysicalDownBypassesDebounce(t *testing.T) {
	m, mock := newTestMachine()
	driveToUp(t, m, mock)

	// 无需推进时钟，物理断链立即生效
	assert.True(t, m.HandleEvent(types.EventPhysicalDown))
	assert.Equal(t, types.StateDown, m.State())
}

func TestMachine_PhysicalDownClearsPending(t *testing.T) {
	m, mock := newTestMachine()
	driveToUp(t, m, mock)

	// Degraded 迁移排队中，物理断链直接落到 DOWN
	assert.False(t, m.HandleEvent(types.EventDegradedProbe))
	assert.True(t, m.HandleEvent(types.EventPhysicalDown))
	assert.Equal(t, types.StateDown, m.State())

	// 排队已清空：推进时钟后 Tick 不应再迁移
	mock.Add(time.Hour)
	assert.False(t, m.Tick())
	assert.Equal(t, types.StateDown, m.State())
}

func TestMachine_PhysicalUpOnlyFromDown(t *testing.T) {
	m, mock := newTestMachine()

	// PROBING 状态下物理恢复是空操作
	assert.False(t, m.HandleEvent(types.EventPhysicalUp))
	assert.Equal(t, types.StateProbing, m.State())

	driveToUp(t, m, mock)
	assert.True(t, m.HandleEvent(types.EventPhysicalDown))

	// DOWN 状态下物理恢复立即回到 PROBING
	assert.True(t, m.HandleEvent(types.EventPhysicalUp))
	assert.Equal(t, types.StateProbing, m.State())
}

func TestMachine_HealthyCancelsPendingDegrade(t *testing.T) {
	m, mock := newTestMachine()
	driveToUp(t, m, mock)

	assert.False(t, m.HandleEvent(types.EventDegradedProbe))

	// 健康事件撤销排队迁移
	assert.False(t, m.HandleEvent(types.EventHealthyProbe))
	mock.Add(time.Hour)
	assert.False(t, m.Tick())
	assert.Equal(t, types.StateUp, m.State())
}

func TestMachine_ReplacementRestartsHoldDown(t *testing.T) {
	m, mock := newTestMachine()
	cfg := config.DefaultStateMachineConfig()
	driveToUp(t, m, mock)

	// Degraded 排队将近到期时被 Failed 替换，保持时间重新起算
	assert.False(t, m.HandleEvent(types.EventDegradedProbe))
	mock.Add(cfg.UpToDegradedHoldDown - time.Second)
	assert.False(t, m.HandleEvent(types.EventFailedProbe))

	mock.Add(2 * time.Second)
	assert.False(t, m.Tick(), "替换后的排队不应沿用旧计时")

	mock.Add(cfg.UpToDegradedHoldDown)
	assert.True(t, m.Tick())
	assert.Equal(t, types.StateDegraded, m.State())
}

func TestMachine_SameEventKeepsQueueTime(t *testing.T) {
	m, mock := newTestMachine()
	cfg := config.DefaultStateMachineConfig()
	driveToUp(t, m, mock)

	assert.False(t, m.HandleEvent(types.EventFailedProbe))
	mock.Add(cfg.UpToDegradedHoldDown - time.Second)

	// 同类事件不重置排队计时，1 秒后即可迁移
	assert.False(t, m.HandleEvent(types.EventFailedProbe))
	mock.Add(time.Second)
	assert.True(t, m.Tick())
	assert.Equal(t, types.StateDegraded, m.State())
}

func TestMachine_MinDwellBlocksImmediateTransition(t *testing.T) {
	m, mock := newTestMachine()
	cfg := config.DefaultStateMachineConfig()
	driveToUp(t, m, mock)

	// 先降级到 DEGRADED
	m.HandleEvent(types.EventDegradedProbe)
	mock.Add(cfg.UpToDegradedHoldDown)
	require.True(t, m.Tick())
	require.Equal(t, types.StateDegraded, m.State())

	// DEGRADED → UP 无保持时间，但最小驻留时间仍然生效

	assert.False(t, m.HandleEvent(types.EventHealthyProbe))
	mock.Add(cfg.MinStateDuration)
	assert.True(t, m.Tick())
	assert.Equal(t, types.StateUp, m.State())
}

func TestMachine_DegradedToDownPath(t *testing.T) {
	m, mock := newTestMachine()
	cfg := config.DefaultStateMachineConfig()
	driveToUp(t, m, mock)

	// UP → DEGRADED
	m.HandleEvent(types.EventFailedProbe)
	mock.Add(cfg.UpToDegradedHoldDown)
	require.True(t, m.Tick())

	// DEGRADED → DOWN 需要独立的保持时间
	m.HandleEvent(types.EventFailedProbe)
	mock.Add(cfg.DegradedToDownHoldDown / 2)
	assert.False(t, m.Tick())
	mock.Add(cfg.DegradedToDownHoldDown / 2)
	assert.True(t, m.Tick())
	assert.Equal(t, types.StateDown, m.State())
}

func TestMachine_ForceState(t *testing.T) {
	m, _ := newTestMachine()

	m.ForceState(types.StateUp)
	assert.Equal(t, types.StateUp, m.State())

	// 强制设置同时清空排队
	m.HandleEvent(types.EventFailedProbe)
	m.ForceState(types.StateDown)
	assert.Equal(t, types.StateDown, m.State())
}

func TestMachine_TimeInState(t *testing.T) {
	m, mock := newTestMachine()
	mock.Add(3 * time.Second)
	assert.Equal(t, 3*time.Second, m.TimeInState())
}
