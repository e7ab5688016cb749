// Package main 提供 backhauld 命令行入口
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	backhaul "github.com/dep2p/go-backhaul"
	"github.com/dep2p/go-backhaul/internal/util/logger"
)

var log = logger.Logger("backhauld")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
// 配置边界：
//
//	命令行参数：运行时覆盖 / 快速测试（「这次运行」想怎么跑）
//	JSON 配置文件：持久化配置 / 长期运行（「这台设备」的固定配置）
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	// ─────────────────────────────────────────────────────────────────────
	// 运行时参数（快速指定）
	// ─────────────────────────────────────────────────────────────────────
	configFile    = flag.String("config", "", "配置文件路径 (JSON)")
	probeInterval = flag.Duration("probe-interval", 0, "探测间隔（0 = 使用配置/默认值）")
	monitorOnly   = flag.Bool("monitor-only", false, "监视模式：记录切换意图但不执行系统命令")
	dryRun        = flag.Bool("dry-run", false, "试运行：打印将执行的系统命令但不落地")

	// ─────────────────────────────────────────────────────────────────────
	// 诊断参数
	// ─────────────────────────────────────────────────────────────────────
	introspectAddr = flag.String("introspect", "", "自省服务监听地址（非空即启用，如 127.0.0.1:6061）")

	// ─────────────────────────────────────────────────────────────────────
	// 日志参数
	// ─────────────────────────────────────────────────────────────────────
	logFile = flag.String("log", "", "日志文件路径（默认输出到 stderr）")

	// ─────────────────────────────────────────────────────────────────────
	// 信息显示
	// ─────────────────────────────────────────────────────────────────────
	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(backhaul.VersionInfo())
		return nil
	}

	opts, err := buildOptions()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Printf("📦 %s\n", backhaul.VersionInfo())
	log.Info("启动回程编排守护进程",
		"version", backhaul.Version,
		"commit", backhaul.GitCommit,
		"buildDate", backhaul.BuildDate)

	b, err := backhaul.New(opts...)
	if err != nil {
		return fmt.Errorf("初始化失败: %w", err)
	}

	if err := b.Start(ctx); err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}

	fmt.Println("回程编排已启动，按 Ctrl+C 退出")
	printStatusOnce(b)

	waitForSignal()

	fmt.Println("\n正在关闭...")
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	return b.Stop(stopCtx)
}

// printStatusOnce 启动后输出一次状态概览
func printStatusOnce(b *backhaul.Backhaul) {
	states := b.InterfaceStates()
	if len(states) == 0 {
		fmt.Println("尚未发现网络接口")
		return
	}
	fmt.Printf("已跟踪 %d 个接口:\n", len(states))
	for _, status := range states {
		fmt.Printf("  %-8s %-14s %s\n",
			status.Info.Name, status.Info.Type, status.State)
	}
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// waitForSignal 等待退出信号
func waitForSignal() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
}
