// Package interfaces 定义回程链路子系统的公共接口
//
// 本文件定义系统命令执行接口。
package interfaces

import (
	"context"
)

// ════════════════════════════════════════════════════════════════════════════
// Runner 系统命令执行器
// ════════════════════════════════════════════════════════════════════════════

// Runner 执行路由与整形所需的系统命令
//
// 路由切换与 QoS 通过 ip/tc 命令落地，Runner 将命令执行
// 抽象为能力接口：生产环境使用真实执行器，测试环境使用
// 录制执行器验证命令序列而无需 root 权限。
type Runner interface {
	// Run 执行一条命令并等待完成
	//
	// 命令失败时返回的错误包含退出码与标准错误输出。
	Run(ctx context.Context, name string, args ...string) error

	// Output 执行一条命令并返回标准输出
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}
