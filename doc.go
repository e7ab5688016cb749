// Package backhaul 提供单机多上行链路的回程编排能力
//
// backhaul 持续发现本机网络接口（以太网、Wi-Fi、蜂窝、USB 共享、
// 蓝牙 PAN），对每个候选接口做周期性健康探测，经防抖状态机与
// 综合评分选出最优上行，并通过策略路由原子地切换默认出口。
// 可选地在活跃出口上安装中继流量优先的 HTB 整形规则。
//
// 架构层次：
//   - API Layer: Backhaul (本层，用户直接交互)
//   - Core Layer: netiface, health, fsm, scoring, routing, qos, manager
//   - Debug Layer: introspect (本地诊断 HTTP 服务)
//
// # 快速开始
//
//	b, err := backhaul.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := b.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer b.Stop(ctx)
//
//	if active, ok := b.CurrentBackhaul(); ok {
//	    fmt.Println("active uplink:", active.Interface)
//	}
//
// # 配置
//
// 配置有三个来源，按优先级从低到高：
//   - 内置默认值
//   - UserConfig（JSON 文件，由应用层加载后通过 ToOptions 应用）
//   - Option 函数（WithProbeInterval 等显式覆盖）
//
// # 测试支持
//
// WithEnumerator、WithRunner、WithClock 允许注入替身组件，
// 在无特权、无真实网卡的环境下运行完整编排流程。
// 监视模式（WithMonitorOnly）记录切换意图但不执行任何系统命令。
//
// # 运行要求
//
// 真实切换依赖 iproute2（ip、tc）与对 /sys/class/net 的读取权限，
// 通常需要 root 或 CAP_NET_ADMIN。
package backhaul
