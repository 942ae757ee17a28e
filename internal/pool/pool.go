// Package pool reserves even/odd port pairs for rtp/rtcp transport
// sessions. Pairs are issued in randomized order, recycled by reference
// count and opened on both udp and tcp so a reserved pair is usable on
// either transport.
package pool

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mini-rtsp/internal/log"

	"github.com/gammazero/deque"
	"github.com/lucsky/cuid"
)

// DefaultPortRange 默认分配范围
const DefaultPortRange = "30000-35000"

type atomicBool int32

func (a *atomicBool) set(value bool) {
	var i int32
	if value {
		i = 1
	}
	atomic.StoreInt32((*int32)(a), i)
}

func (a *atomicBool) get() bool {
	return atomic.LoadInt32((*int32)(a)) != 0
}

// PortManager 一个端口对池，池内元素pos代表端口对(2*pos, 2*pos+1)
type PortManager struct {
	mu     sync.Mutex
	pool   deque.Deque[uint16]
	closed atomicBool
}

// udp和tcp池使用相同算法和范围，但互不相干
var (
	udpManager = newPortManager()
	tcpManager = newPortManager()
)

func init() {
	if err := SetPortRange(DefaultPortRange); err != nil {
		panic(err)
	}
}

func newPortManager() *PortManager {
	return &PortManager{}
}

func manager(isUDP bool) *PortManager {
	if isUDP {
		return udpManager
	}
	return tcpManager
}

// parsePortRange 解析"min-max"，解析不出来的一侧保留默认值
func parsePortRange(str string) (uint16, uint16, error) {
	min, max := uint16(30000), uint16(35000)
	if dash := strings.Index(str, "-"); dash >= 0 {
		if v, ok := parsePort(str[:dash]); ok {
			min = v
		}
		if v, ok := parsePort(str[dash+1:]); ok {
			max = v
		}
	} else if v, ok := parsePort(str); ok {
		min = v
	}
	// 偏移一对之后至少要容得下18对端口
	if max < min+35 {
		return 0, 0, fmt.Errorf("%w: %q", ErrPortRange, str)
	}
	return min, max, nil
}

func parsePort(s string) (uint16, bool) {
	s = strings.TrimSpace(s)
	n := 0
	i := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
		if n > 0xffff {
			return 0, false
		}
	}
	if i == 0 {
		return 0, false
	}
	return uint16(n), true
}

// SetPortRange 重新配置分配范围并重建两个池的空闲链表
func SetPortRange(str string) error {
	min, max, err := parsePortRange(str)
	if err != nil {
		return err
	}
	udpManager.setRange((min+1)/2, max/2)
	tcpManager.setRange((min+1)/2, max/2)
	return nil
}

// setRange 重建空闲链表
// 取值升序遍历，但每次插入到随机位置，这样重启后不会总是先分配最小的端口
func (m *PortManager) setRange(start, end uint16) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pool.Clear()
	pos := 0
	for v := start; v < end; v++ {
		m.pool.Insert(pos, v)
		pos = rng.Intn(m.pool.Len() + 1)
	}
}

// Get 取一个端口对，空闲链表为空时报耗尽
func (m *PortManager) Get() (*PortPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool.Len() == 0 {
		return nil, ErrPoolExhausted
	}
	pos := m.pool.PopFront()
	log.Infof("got port from pool: %d-%d", 2*pos, 2*pos+1)
	return &PortPair{ID: cuid.New(), m: m, pos: pos, refs: 1}, nil
}

// Len 当前空闲端口对数
func (m *PortManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pool.Len()
}

// Close 停止回收，之后的Release都是no-op
func (m *PortManager) Close() {
	m.closed.set(true)
}

// PortPair 预留的端口对句柄，引用计数归零时回到池尾
// 回收的端口对只会在初始随机序列耗尽后才被重新发放
type PortPair struct {
	// ID 用于日志关联
	ID   string
	m    *PortManager
	pos  uint16
	refs int32
}

// RTPPort 偶数端口，走rtp数据
func (p *PortPair) RTPPort() uint16 {
	return 2 * p.pos
}

// RTCPPort 奇数端口，走rtcp
func (p *PortPair) RTCPPort() uint16 {
	return 2*p.pos + 1
}

func (p *PortPair) Retain() {
	atomic.AddInt32(&p.refs, 1)
}

// Release 减引用，最后一个持有者释放时端口对回池
// 池已销毁时静默返回
func (p *PortPair) Release() {
	if atomic.AddInt32(&p.refs, -1) != 0 {
		return
	}
	m := p.m
	if m == nil || m.closed.get() {
		return
	}
	log.Infof("return port to pool: %d-%d", p.RTPPort(), p.RTCPPort())
	m.mu.Lock()
	m.pool.PushBack(p.pos)
	m.mu.Unlock()
}
