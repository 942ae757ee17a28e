package rtp

import (
	"sync"
)

// 一个rtp包的最大长度
const maxPktSize = 1460

var packetPool = sync.Pool{
	New: func() interface{} {
		return &Packet{Buf: make([]byte, 0, TCPHeaderSize+maxPktSize)}
	},
}

// Packet 自持内存的rtp报文：4字节interleaved前缀+rtp数据
// SampleRate与NtpStamp是带外元数据，由接收侧填充
type Packet struct {
	Buf        []byte
	SampleRate uint32
	NtpStamp   uint64
}

// NewPacket 从包池取一个空报文
func NewPacket() *Packet {
	p := packetPool.Get().(*Packet)
	p.Buf = p.Buf[:0]
	p.SampleRate = 0
	p.NtpStamp = 0
	return p
}

// Recycle 归还包池，调用后不得再引用
func (p *Packet) Recycle() {
	packetPool.Put(p)
}

// Header rtp区的视图，需除去interleaved前缀4字节
func (p *Packet) Header() (Header, bool) {
	if len(p.Buf) < TCPHeaderSize {
		return Header{}, false
	}
	return ParseHeader(p.Buf[TCPHeaderSize:])
}

func (p *Packet) Seq() uint16 {
	h, ok := p.Header()
	if !ok {
		return 0
	}
	return h.Seq()
}

func (p *Packet) Stamp() uint32 {
	h, ok := p.Header()
	if !ok {
		return 0
	}
	return h.Timestamp()
}

func (p *Packet) SSRC() uint32 {
	h, ok := p.Header()
	if !ok {
		return 0
	}
	return h.SSRC()
}

// StampMS 时间戳转毫秒
// ntp为true时直接使用带外的ntp映射时间戳，否则按采样率整除换算
func (p *Packet) StampMS(ntp bool) uint64 {
	if ntp {
		return p.NtpStamp
	}
	if p.SampleRate == 0 {
		return 0
	}
	return uint64(p.Stamp()) * 1000 / uint64(p.SampleRate)
}

func (p *Packet) Payload() []byte {
	h, ok := p.Header()
	if !ok {
		return nil
	}
	return h.Payload()
}

func (p *Packet) PayloadSize() int {
	h, ok := p.Header()
	if !ok {
		return 0
	}
	return h.PayloadSize()
}

func (p *Packet) DumpString() string {
	h, ok := p.Header()
	if !ok {
		return "invalid rtp packet"
	}
	return h.DumpString()
}
