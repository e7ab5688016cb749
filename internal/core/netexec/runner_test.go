package netexec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRunner_RecordsInOrder(t *testing.T) {
	r := NewRecordRunner()
	ctx := context.Background()

	require.NoError(t, r.Run(ctx, "ip", "route", "flush", "table", "100"))
	require.NoError(t, r.Run(ctx, "ip", "rule", "add", "from", "all", "lookup", "100", "pref", "1000"))

	cmds := r.Commands()
	require.Len(t, cmds, 2)
	assert.Equal(t, "ip route flush table 100", cmds[0])
	assert.Equal(t, "ip rule add from all lookup 100 pref 1000", cmds[1])
}

func TestRecordRunner_FailureInjection(t *testing.T) {
	r := NewRecordRunner()
	ctx := context.Background()
	r.FailOn("ip rule add")

	require.NoError(t, r.Run(ctx, "ip", "route", "flush", "table", "100"))
	err := r.Run(ctx, "ip", "rule", "add", "from", "all", "lookup", "100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected failure")

	// 失败的命令同样被录制
	assert.Len(t, r.Commands(), 2)

	r.ClearFailures()
	require.NoError(t, r.Run(ctx, "ip", "rule", "add", "from", "all", "lookup", "101"))
}

func TestRecordRunner_PrefixQuery(t *testing.T) {
	r := NewRecordRunner()
	ctx := context.Background()

	require.NoError(t, r.Run(ctx, "tc", "qdisc", "add", "dev", "eth0", "root", "handle", "1:", "htb"))
	require.NoError(t, r.Run(ctx, "ip", "rule", "del", "pref", "1000"))

	assert.Len(t, r.CommandsWithPrefix("tc "), 1)
	assert.Len(t, r.CommandsWithPrefix("ip rule del"), 1)
	assert.Empty(t, r.CommandsWithPrefix("ip route add"))
}

func TestExecRunner_CommandFailureIncludesStderr(t *testing.T) {
	r := NewExecRunner()
	err := r.Run(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestExecRunner_Output(t *testing.T) {
	r := NewExecRunner()
	out, err := r.Output(context.Background(), "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(out))
}
