// Package netexec 实现系统命令执行能力
//
// 路由切换与流量整形最终通过 ip/tc 命令落地。netexec 将
// 命令执行抽象为 Runner 能力：生产环境注入真实执行器，
// 测试环境注入录制执行器验证命令序列而无需 root 权限。
package netexec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/dep2p/go-backhaul/internal/util/logger"
	"github.com/dep2p/go-backhaul/pkg/interfaces"
)

// 包级别日志实例
var log = logger.Logger("netexec")

// ============================================================================
//                              真实执行器
// ============================================================================

// ExecRunner 基于 os/exec 的真实命令执行器
//
// 实现 interfaces.Runner。命令继承 ctx 的截止时间，
// 失败时错误信息包含标准错误输出。
type ExecRunner struct{}

// NewExecRunner 创建真实命令执行器
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run 执行一条命令并等待完成
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	log.Debug("执行系统命令", "cmd", name, "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

// Output 执行一条命令并返回标准输出
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// ============================================================================
//                              录制执行器
// ============================================================================

// RecordRunner 录制命令序列的执行器（测试用）
//
// 记录所有提交的命令，支持按前缀注入失败，
// 用于验证调用方在命令失败时的中止与回退行为。
type RecordRunner struct {
	mu       sync.Mutex
	commands []string
	failOn   []string
}

// NewRecordRunner 创建录制执行器
func NewRecordRunner() *RecordRunner {
	return &RecordRunner{}
}

// FailOn 注册失败前缀
//
// 后续命令行（含命令名）以任一已注册前缀开头时返回错误。
func (r *RecordRunner) FailOn(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn = append(r.failOn, prefix)
}

// ClearFailures 清除全部失败前缀
func (r *RecordRunner) ClearFailures() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failOn = nil
}

// Run 记录命令，命中失败前缀时返回错误
func (r *RecordRunner) Run(_ context.Context, name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := name + " " + strings.Join(args, " ")
	r.commands = append(r.commands, line)

	for _, prefix := range r.failOn {
		if strings.HasPrefix(line, prefix) {
			return fmt.Errorf("injected failure: %s", line)
		}
	}
	return nil
}

// Output 记录命令并返回空输出
func (r *RecordRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	if err := r.Run(ctx, name, args...); err != nil {
		return nil, err
	}
	return nil, nil
}

// Commands 返回已录制的命令行快照
func (r *RecordRunner) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.commands))
	copy(out, r.commands)
	return out
}

// CommandsWithPrefix 返回匹配前缀的已录制命令
func (r *RecordRunner) CommandsWithPrefix(prefix string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, line := range r.commands {
		if strings.HasPrefix(line, prefix) {
			out = append(out, line)
		}
	}
	return out
}

// Reset 清空录制记录
func (r *RecordRunner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
}

// ============================================================================
//                              打印执行器
// ============================================================================

// LoggingRunner 打印命令而不执行的执行器（试运行用）
//
// 每条命令写入一行到指定输出并返回成功，
// Output 返回空输出。适合观察完整切换序列而不触碰系统。
type LoggingRunner struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLoggingRunner 创建打印执行器
func NewLoggingRunner(w io.Writer) *LoggingRunner {
	return &LoggingRunner{w: w}
}

// Run 打印命令并返回成功
func (r *LoggingRunner) Run(_ context.Context, name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "[dry-run] %s %s\n", name, strings.Join(args, " "))
	return nil
}

// Output 打印命令并返回空输出
func (r *LoggingRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	if err := r.Run(ctx, name, args...); err != nil {
		return nil, err
	}
	return nil, nil
}

// 编译期接口断言
var (
	_ interfaces.Runner = (*ExecRunner)(nil)
	_ interfaces.Runner = (*RecordRunner)(nil)
	_ interfaces.Runner = (*LoggingRunner)(nil)
)
