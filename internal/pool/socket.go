package pool

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"syscall"

	"mini-rtsp/internal/log"

	"github.com/pion/transport/v2/packetio"
	"golang.org/x/sys/unix"
)

const udpReadBufSize = 4096

// 绑定函数可注入，测试用来模拟端口被占用
var (
	listenUDP = defaultListenUDP
	listenTCP = defaultListenTCP
)

func defaultListenUDP(port uint16, localIP string, reuseAddr bool) (net.PacketConn, error) {
	lc := net.ListenConfig{}
	if reuseAddr {
		lc.Control = func(network, address string, c syscall.RawConn) error {
			var opErr error
			if err := c.Control(func(fd uintptr) {
				opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			}); err != nil {
				return err
			}
			return opErr
		}
	}
	return lc.ListenPacket(context.Background(), "udp", net.JoinHostPort(localIP, strconv.Itoa(int(port))))
}

func defaultListenTCP(port uint16, localIP string) (net.Listener, error) {
	return net.Listen("tcp", net.JoinHostPort(localIP, strconv.Itoa(int(port))))
}

// Socket 绑定在端口对某一侧的收包口
// udp模式收到的报文进入内部缓冲并回调OnRead，tcp模式回调OnAccept
// 持有所在端口对的一个引用，Close时归还
type Socket struct {
	mu       sync.Mutex
	pair     *PortPair
	port     uint16
	udp      net.PacketConn
	tcp      net.Listener
	rxBuf    *packetio.Buffer
	onRead   func(buf []byte, addr net.Addr)
	onAccept func(conn net.Conn)

	closeOnce sync.Once
}

func newSocket(pair *PortPair) *Socket {
	pair.Retain()
	return &Socket{pair: pair, rxBuf: packetio.NewBuffer()}
}

func (s *Socket) bindUDP(port uint16, localIP string, reuseAddr bool) error {
	conn, err := listenUDP(port, localIP, reuseAddr)
	if err != nil {
		return err
	}
	s.udp = conn
	s.port = port
	go s.readLoop()
	return nil
}

func (s *Socket) listen(port uint16, localIP string) error {
	l, err := listenTCP(port, localIP)
	if err != nil {
		return err
	}
	s.tcp = l
	s.port = port
	go s.acceptLoop()
	return nil
}

func (s *Socket) readLoop() {
	buf := make([]byte, udpReadBufSize)
	for {
		n, addr, err := s.udp.ReadFrom(buf)
		if err != nil {
			return
		}
		if _, err = s.rxBuf.Write(buf[:n]); err != nil {
			return
		}
		s.mu.Lock()
		onRead := s.onRead
		s.mu.Unlock()
		if onRead != nil {
			onRead(buf[:n], addr)
		}
	}
}

func (s *Socket) acceptLoop() {
	for {
		conn, err := s.tcp.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		onAccept := s.onAccept
		s.mu.Unlock()
		if onAccept != nil {
			onAccept(conn)
		} else {
			_ = conn.Close()
		}
	}
}

// SetOnRead udp收包回调，buf只在回调期间有效
func (s *Socket) SetOnRead(fn func(buf []byte, addr net.Addr)) {
	s.mu.Lock()
	s.onRead = fn
	s.mu.Unlock()
}

// SetOnAccept tcp新连接回调
func (s *Socket) SetOnAccept(fn func(conn net.Conn)) {
	s.mu.Lock()
	s.onAccept = fn
	s.mu.Unlock()
}

// Read 从接收缓冲取一个报文（udp模式）
func (s *Socket) Read(p []byte) (int, error) {
	return s.rxBuf.Read(p)
}

// WriteTo 向对端发包（udp模式）
func (s *Socket) WriteTo(p []byte, addr net.Addr) (int, error) {
	return s.udp.WriteTo(p, addr)
}

// Port 绑定的本地端口
func (s *Socket) Port() uint16 {
	return s.port
}

// Pair 所属端口对
func (s *Socket) Pair() *PortPair {
	return s.pair
}

// Close 关闭socket并释放对端口对的引用，可重复调用
func (s *Socket) Close() {
	s.closeOnce.Do(func() {
		if s.udp != nil {
			_ = s.udp.Close()
		}
		if s.tcp != nil {
			_ = s.tcp.Close()
		}
		_ = s.rxBuf.Close()
		s.pair.Release()
	})
}

// SockPair 一次分配得到的rtp/rtcp socket对
type SockPair struct {
	// ID 端口对的cuid，贯穿分配日志
	ID   string
	RTP  *Socket
	RTCP *Socket
}

// Close 关闭两个socket，最后一个引用释放后端口对自动回池
func (p *SockPair) Close() {
	p.RTP.Close()
	p.RTCP.Close()
}

// bindSockPair 把端口对的偶/奇端口分别绑定到两个socket上
// 任一侧失败整个尝试作废，由上层重试
func bindSockPair(pair *PortPair, localIP string, reuseAddr, isUDP bool) (*SockPair, error) {
	sock0 := newSocket(pair)
	sock1 := newSocket(pair)
	fail := func(err error) (*SockPair, error) {
		sock0.Close()
		sock1.Close()
		return nil, err
	}
	if isUDP {
		if err := sock0.bindUDP(pair.RTPPort(), localIP, reuseAddr); err != nil {
			return fail(fmt.Errorf("open udp socket[0] failed: %w", err))
		}
		if err := sock1.bindUDP(pair.RTCPPort(), localIP, reuseAddr); err != nil {
			return fail(fmt.Errorf("open udp socket[1] failed: %w", err))
		}
	} else {
		if err := sock0.listen(pair.RTPPort(), localIP); err != nil {
			return fail(fmt.Errorf("listen tcp socket[0] failed: %w", err))
		}
		if err := sock1.listen(pair.RTCPPort(), localIP); err != nil {
			return fail(fmt.Errorf("listen tcp socket[1] failed: %w", err))
		}
	}
	return &SockPair{ID: pair.ID, RTP: sock0, RTCP: sock1}, nil
}

// makeSockPair 分配端口对并绑定，同时探测另一种协议下同样的端口可用
func (m *PortManager) makeSockPair(localIP string, reuseAddr, isUDP bool) (*SockPair, error) {
	pair, err := m.Get()
	if err != nil {
		return nil, err
	}
	// 分配侧引用，绑定成功后生命期交给socket
	defer pair.Release()

	sp, err := bindSockPair(pair, localIP, reuseAddr, isUDP)
	if err != nil {
		return nil, err
	}

	// 确保udp和tcp模式都能打开，探测完成即关闭
	probe, err := bindSockPair(pair, localIP, reuseAddr, !isUDP)
	if err != nil {
		sp.Close()
		return nil, err
	}
	probe.Close()
	return sp, nil
}

// MakeSockPair 为一个传输会话打开rtp/rtcp socket对
// 整个分配+绑定流程最多尝试3次，第3次的错误原样上抛
func MakeSockPair(localIP string, reuseAddr, isUDP bool) (*SockPair, error) {
	for try := 1; ; try++ {
		sp, err := manager(isUDP).makeSockPair(localIP, reuseAddr, isUDP)
		if err == nil {
			return sp, nil
		}
		if try == 3 {
			return nil, err
		}
		log.Warnf("open socket failed: %v, retry: %d", err, try)
	}
}
