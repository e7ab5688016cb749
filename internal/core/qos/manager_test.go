package qos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/internal/core/netexec"
)

func enabledConfig() config.RelayQosConfig {
	cfg := config.DefaultRelayQosConfig()
	cfg.Enabled = true
	return cfg
}

func TestActivate_InstallsFullRuleSet(t *testing.T) {
	runner := netexec.NewRecordRunner()
	m := NewManager(enabledConfig(), runner)

	require.NoError(t, m.Activate(context.Background(), "eth0"))

	cmds := runner.Commands()
	assert.Contains(t, cmds, "tc qdisc del dev eth0 root")
	assert.Contains(t, cmds, "tc qdisc add dev eth0 root handle 1: htb default 10")
	// 根类速率取链路容量，而非各类保障速率之和
	assert.Contains(t, cmds, "tc class add dev eth0 parent 1: classid 1:1 htb rate 100000kbit")
	assert.Contains(t, cmds, "tc class add dev eth0 parent 1:1 classid 1:10 htb rate 10000kbit ceil 1000000kbit prio 1")
	assert.Contains(t, cmds, "tc class add dev eth0 parent 1:1 classid 1:20 htb rate 1000kbit ceil 100000kbit prio 2")
	assert.Contains(t, cmds, "tc qdisc add dev eth0 parent 1:10 handle 10: fq_codel")
	// DSCP 46（EF）→ TOS 0xb8
	assert.Contains(t, cmds, "tc filter add dev eth0 protocol ip parent 1: prio 1 u32 match ip tos 0xb8 0xfc flowid 1:10")

	active, ok := m.ActiveInterface()
	require.True(t, ok)
	assert.Equal(t, "eth0", active)
}

func TestActivate_Idempotent(t *testing.T) {
	runner := netexec.NewRecordRunner()
	m := NewManager(enabledConfig(), runner)
	ctx := context.Background()

	require.NoError(t, m.Activate(ctx, "eth0"))
	before := len(runner.Commands())

	// 对同一接口重复激活不产生任何命令
	require.NoError(t, m.Activate(ctx, "eth0"))
	assert.Len(t, runner.Commands(), before)
}

func TestActivate_MovesBetweenInterfaces(t *testing.T) {
	runner := netexec.NewRecordRunner()
	m := NewManager(enabledConfig(), runner)
	ctx := context.Background()

	require.NoError(t, m.Activate(ctx, "wwan0"))
	runner.Reset()

	require.NoError(t, m.Activate(ctx, "eth0"))

	// 先拆旧接口的规则，再在新接口安装
	cmds := runner.Commands()
	require.NotEmpty(t, cmds)
	assert.Equal(t, "tc qdisc del dev wwan0 root", cmds[0])
	assert.Contains(t, cmds, "tc qdisc add dev eth0 root handle 1: htb default 10")

	active, _ := m.ActiveInterface()
	assert.Equal(t, "eth0", active)
}

func TestActivate_FailureLeavesNoResidue(t *testing.T) {
	runner := netexec.NewRecordRunner()
	m := NewManager(enabledConfig(), runner)
	ctx := context.Background()

	runner.FailOn("tc class add dev eth0 parent 1:1 classid 1:20")
	require.Error(t, m.Activate(ctx, "eth0"))

	// 失败后整套规则被回收
	cmds := runner.Commands()
	assert.Equal(t, "tc qdisc del dev eth0 root", cmds[len(cmds)-1])
	_, ok := m.ActiveInterface()
	assert.False(t, ok)
}

func TestDeactivate(t *testing.T) {
	runner := netexec.NewRecordRunner()
	m := NewManager(enabledConfig(), runner)
	ctx := context.Background()

	require.NoError(t, m.Activate(ctx, "eth0"))
	runner.Reset()

	require.NoError(t, m.Deactivate(ctx))
	assert.Equal(t, []string{"tc qdisc del dev eth0 root"}, runner.Commands())

	// 幂等：再次拆除不产生命令
	runner.Reset()
	require.NoError(t, m.Deactivate(ctx))
	assert.Empty(t, runner.Commands())
}

func TestDeactivate_AbsentQdiscIsSuccess(t *testing.T) {
	runner := netexec.NewRecordRunner()
	m := NewManager(enabledConfig(), runner)
	ctx := context.Background()

	require.NoError(t, m.Activate(ctx, "eth0"))

	// 根队列已被外部移除：拆除命令失败但操作成功
	runner.FailOn("tc qdisc del")
	require.NoError(t, m.Deactivate(ctx))
	_, ok := m.ActiveInterface()
	assert.False(t, ok)
}

func TestDisabledConfigIsNoop(t *testing.T) {
	runner := netexec.NewRecordRunner()
	cfg := config.DefaultRelayQosConfig()
	cfg.Enabled = false
	m := NewManager(cfg, runner)
	ctx := context.Background()

	require.NoError(t, m.Activate(ctx, "eth0"))
	require.NoError(t, m.Deactivate(ctx))
	assert.Empty(t, runner.Commands())
}

func TestActivate_FqCodelOptional(t *testing.T) {
	runner := netexec.NewRecordRunner()
	cfg := enabledConfig()
	cfg.UseFqCodel = false
	m := NewManager(cfg, runner)

	require.NoError(t, m.Activate(context.Background(), "eth0"))
	assert.Empty(t, runner.CommandsWithPrefix("tc qdisc add dev eth0 parent 1:10"))
}
