// Package interfaces 定义回程链路子系统的公共接口
//
// 本包采用"一个接口文件 = 一个实现目录"的组织方式：
//
// # API Layer 接口
//
// 子系统入口：
//   - manager.go        - Manager 门面接口（用户入口，编排器）
//
// # Core Layer 接口
//
// 回程链路核心能力：
//   - discovery.go      - 接口枚举与注册表（internal/core/netiface）
//   - prober.go         - 健康探测（internal/core/health）
//   - scorer.go         - 综合评分（internal/core/scoring）
//   - statemachine.go   - 接口状态机（internal/core/fsm）
//   - routing.go        - 策略路由切换（internal/core/routing）
//   - qos.go            - 中继 QoS 整形（internal/core/qos）
//   - runner.go         - 系统命令执行（internal/core/netexec）
//
// # 依赖方向
//
//	Manager → Core 各接口
//
// 禁止反向依赖。
//
// # 设计原则
//
// 本包仅包含纯接口定义，数据结构定义在 pkg/types 包中。
// 所有阻塞操作接受 context.Context，实现方负责超时控制。
package interfaces
