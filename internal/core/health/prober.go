package health

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/miekg/dns"

	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/internal/util/logger"
	"github.com/dep2p/go-backhaul/pkg/interfaces"
	"github.com/dep2p/go-backhaul/pkg/types"
)

// 包级别日志实例
var log = logger.Logger("probe")

// probeQueryName DNS 探测使用的查询域名
//
// 只验证链路能完成一次查询往返，不关心解析结果。
const probeQueryName = "example.com."

// ============================================================================
//                              健康探测器
// ============================================================================

// Prober 对接口执行主动连通性探测
//
// 实现 interfaces.Prober。探测绑定到接口自身的 IPv4 地址
// 发起，确保流量走被测接口而非当前默认路由。
// 单接口内目标按序尝试，跨接口并发由编排器负责。
type Prober struct {
	cfg config.ProbeConfig
	clk clock.Clock

	mu    sync.Mutex
	stats map[string]*stats
}

// NewProber 创建健康探测器
func NewProber(cfg config.ProbeConfig, clk clock.Clock) *Prober {
	return &Prober{
		cfg:   cfg,
		clk:   clk,
		stats: make(map[string]*stats),
	}
}

// Probe 对接口执行一轮探测
//
// 依次探测所有目标，每个目标的结果都记入该接口的统计量。
// 任一目标成功即判定本轮成功，返回首个成功结果；全部失败
// 返回最后一次失败结果。
func (p *Prober) Probe(ctx context.Context, iface types.InterfaceInfo) types.ProbeResult {
	var (
		cycle     types.ProbeResult
		succeeded bool
	)
	for _, target := range p.cfg.Targets {
		result := p.probeTarget(ctx, iface, target)
		p.record(iface.Name, result)

		if result.Success {
			if !succeeded {
				cycle = result
				succeeded = true
			}
			continue
		}
		log.Debug("探测目标失败",
			"iface", iface.Name, "target", target.Name, "err", result.Err)
		if !succeeded {
			cycle = result
		}
	}
	return cycle
}

// Stats 返回接口的累计健康统计
func (p *Prober) Stats(ifaceName string) (types.HealthStats, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.stats[ifaceName]
	if !ok {
		return types.HealthStats{}, false
	}
	return s.snapshot(), true
}

// Forget 清除接口的累计统计
func (p *Prober) Forget(ifaceName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.stats, ifaceName)
}

// record 将结果记入接口统计
func (p *Prober) record(ifaceName string, result types.ProbeResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.stats[ifaceName]
	if !ok {
		s = &stats{iface: ifaceName}
		p.stats[ifaceName] = s
	}
	s.observe(result)
}

// probeTarget 对单个目标执行一次有界超时探测
func (p *Prober) probeTarget(ctx context.Context, iface types.InterfaceInfo, target types.ProbeTarget) types.ProbeResult {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	result := types.ProbeResult{
		Target:    target,
		Timestamp: p.clk.Now(),
	}

	start := p.clk.Now()
	var err error
	switch target.Kind {
	case types.ProbeDNSQuery:
		err = p.probeDNS(ctx, iface, target)
	default:
		err = p.probeTCP(ctx, iface, target)
	}
	rtt := p.clk.Now().Sub(start)

	if err != nil {
		result.Err = err.Error()
		return result
	}
	result.Success = true
	result.RTT = rtt
	return result
}

// probeTCP 通过 TCP 握手探测目标
//
// 握手完成即证明出口连通，随后立即关闭连接。
func (p *Prober) probeTCP(ctx context.Context, iface types.InterfaceInfo, target types.ProbeTarget) error {
	dialer := net.Dialer{Timeout: p.cfg.Timeout}
	if local := localTCPAddr(iface); local != nil {
		dialer.LocalAddr = local
	}

	addr := net.JoinHostPort(target.Address, strconv.Itoa(int(target.Port)))
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("tcp connect %s: %w", addr, err)
	}
	return conn.Close()
}

// probeDNS 通过 DNS A 查询探测目标
//
// 收到任何合法响应（包括 NXDOMAIN）均视为成功，
// 只有超时或网络错误视为失败。
func (p *Prober) probeDNS(ctx context.Context, iface types.InterfaceInfo, target types.ProbeTarget) error {
	client := dns.Client{
		Net:     "udp",
		Timeout: p.cfg.Timeout,
	}
	if local := localTCPAddr(iface); local != nil {
		client.Dialer = &net.Dialer{
			Timeout:   p.cfg.Timeout,
			LocalAddr: &net.UDPAddr{IP: local.IP},
		}
	}

	msg := new(dns.Msg)
	msg.SetQuestion(probeQueryName, dns.TypeA)

	addr := net.JoinHostPort(target.Address, strconv.Itoa(int(target.Port)))
	_, _, err := client.ExchangeContext(ctx, msg, addr)
	if err != nil {
		return fmt.Errorf("dns query %s: %w", addr, err)
	}
	return nil
}

// localTCPAddr 返回接口的首个 IPv4 地址作为探测源地址
//
// 接口地址未知时返回 nil，探测退化为走系统默认路由。
func localTCPAddr(iface types.InterfaceInfo) *net.TCPAddr {
	v4 := iface.PrimaryIPv4()
	if v4 == "" {
		return nil
	}
	ip := net.ParseIP(v4)
	if ip == nil {
		return nil
	}
	return &net.TCPAddr{IP: ip}
}

// 编译期接口断言
var _ interfaces.Prober = (*Prober)(nil)
