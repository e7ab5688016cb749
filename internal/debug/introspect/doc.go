// Package introspect 提供本地自省 HTTP 服务
//
// 该服务运行在本地端口，提供 JSON 格式的链路诊断信息，
// 用于调试和监控。默认绑定到 127.0.0.1，不暴露到网络。
//
// # 端点
//
//	GET /status      - 当前回程链路与运行时概览 (JSON)
//	GET /interfaces  - 所有被跟踪接口的状态快照
//	GET /keepalive   - 最近一次硬件保活标记
//	GET /metrics     - Prometheus 指标
//	GET /debug/pprof/* - Go pprof 端点
//	GET /health      - 健康检查
//
// # 使用示例
//
//	server := introspect.New(introspect.Config{
//	    Addr:    "127.0.0.1:6061",
//	    Manager: mgr,
//	    Metrics: m,
//	})
//	server.Start(ctx)
//	defer server.Stop()
//
// # 安全
//
// 默认只监听本地地址，不暴露到网络。
// 如果需要远程访问，请确保配置适当的访问控制。
package introspect
