package backhaul

import "errors"

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 编排器未启动
	ErrNotStarted = errors.New("backhaul not started")

	// ErrAlreadyStarted 编排器已启动
	ErrAlreadyStarted = errors.New("backhaul already started")

	// ErrClosed 编排器已关闭
	ErrClosed = errors.New("backhaul closed")

	// ────────────────────────────────────────────────────────────────────────
	// 链路相关错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNoActiveBackhaul 尚无活跃回程链路
	ErrNoActiveBackhaul = errors.New("no active backhaul")

	// ErrNoCandidate 没有可用的候选接口
	ErrNoCandidate = errors.New("no candidate interface")
)
