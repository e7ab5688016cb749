package netiface

import (
	"sort"
	"sync"

	"github.com/dep2p/go-backhaul/pkg/types"
)

// ============================================================================
//                              接口注册表
// ============================================================================

// Registry 维护已发现接口的当前视图
//
// 实现 interfaces.Registry。内部持有接口信息的值拷贝，
// 读取方拿到的永远是快照，不会观察到并发修改。
type Registry struct {
	mu     sync.RWMutex
	ifaces map[string]types.InterfaceInfo
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		ifaces: make(map[string]types.InterfaceInfo),
	}
}

// Update 用新一轮枚举结果整体替换注册表内容
//
// 返回本轮新增与消失的接口名，二者均按名称升序。
func (r *Registry) Update(infos []types.InterfaceInfo) (added, removed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]types.InterfaceInfo, len(infos))
	for _, info := range infos {
		next[info.Name] = info.Clone()
	}

	for name := range next {
		if _, ok := r.ifaces[name]; !ok {
			added = append(added, name)
		}
	}
	for name := range r.ifaces {
		if _, ok := next[name]; !ok {
			removed = append(removed, name)
		}
	}

	r.ifaces = next
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// Get 返回指定名称的接口信息
func (r *Registry) Get(name string) (types.InterfaceInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, ok := r.ifaces[name]
	if !ok {
		return types.InterfaceInfo{}, false
	}
	return info.Clone(), true
}

// List 返回所有已注册接口的快照，按名称升序
func (r *Registry) List() []types.InterfaceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.InterfaceInfo, 0, len(r.ifaces))
	for _, info := range r.ifaces {
		out = append(out, info.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Candidates 返回所有满足候选条件的接口，按名称升序
func (r *Registry) Candidates() []types.InterfaceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.InterfaceInfo, 0, len(r.ifaces))
	for _, info := range r.ifaces {
		if info.IsCandidate() {
			out = append(out, info.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
