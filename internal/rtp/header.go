// Package rtp models the RTP wire format: a bounds-checked header view
// over a borrowed buffer, packet classification and the 4-byte interleaved
// framing used on tcp transports. Input buffers come off the wire and are
// untrusted; every computed offset is validated before use.
package rtp

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	// Version 支持的rtp版本号
	Version = 2
	// HeaderSize 固定头长度
	HeaderSize = 12
	// TCPHeaderSize interleaved传输的帧前缀长度
	TCPHeaderSize = 4
)

// Header rtp报文的只读视图，借用底层缓冲，不拷贝
type Header struct {
	buf []byte
}

// ParseHeader 构造报文视图，缓冲不足12字节时失败
func ParseHeader(buf []byte) (Header, bool) {
	if len(buf) < HeaderSize {
		return Header{}, false
	}
	return Header{buf: buf}, true
}

func (h Header) Version() uint8 {
	return h.buf[0] >> 6
}

func (h Header) Padding() bool {
	return h.buf[0]&0x20 != 0
}

func (h Header) Extension() bool {
	return h.buf[0]&0x10 != 0
}

func (h Header) CsrcCount() int {
	return int(h.buf[0] & 0x0f)
}

func (h Header) Marker() bool {
	return h.buf[1]&0x80 != 0
}

func (h Header) PayloadType() uint8 {
	return h.buf[1] & 0x7f
}

func (h Header) Seq() uint16 {
	return binary.BigEndian.Uint16(h.buf[2:4])
}

func (h Header) Timestamp() uint32 {
	return binary.BigEndian.Uint32(h.buf[4:8])
}

func (h Header) SSRC() uint32 {
	return binary.BigEndian.Uint32(h.buf[8:12])
}

// CsrcSize csrc区长度，每个csrc占4字节
func (h Header) CsrcSize() int {
	return h.CsrcCount() << 2
}

// CsrcData csrc区字节，缓冲不足时返回nil
func (h Header) CsrcData() []byte {
	size := h.CsrcSize()
	if size == 0 || HeaderSize+size > len(h.buf) {
		return nil
	}
	return h.buf[HeaderSize : HeaderSize+size]
}

// ExtSize 扩展区数据长度（不含4字节子头），无扩展或缓冲不足时为0
func (h Header) ExtSize() int {
	if !h.Extension() {
		return 0
	}
	off := HeaderSize + h.CsrcSize()
	if off+4 > len(h.buf) {
		return 0
	}
	// 子头后2字节是以4字节字为单位的扩展长度
	return int(binary.BigEndian.Uint16(h.buf[off+2:off+4])) << 2
}

// ExtReserved 扩展子头的profile字段
func (h Header) ExtReserved() uint16 {
	if !h.Extension() {
		return 0
	}
	off := HeaderSize + h.CsrcSize()
	if off+2 > len(h.buf) {
		return 0
	}
	return binary.BigEndian.Uint16(h.buf[off : off+2])
}

// ExtData 扩展区数据，缓冲不足时返回nil
func (h Header) ExtData() []byte {
	if !h.Extension() {
		return nil
	}
	off := HeaderSize + h.CsrcSize() + 4
	size := h.ExtSize()
	if size == 0 || off+size > len(h.buf) {
		return nil
	}
	return h.buf[off : off+size]
}

// PayloadOffset 负载相对固定头末尾的偏移
func (h Header) PayloadOffset() int {
	if h.Extension() {
		// 扩展存在时还要跳过4字节子头
		return h.CsrcSize() + 4 + h.ExtSize()
	}
	return h.CsrcSize()
}

// PaddingSize 填充长度，取缓冲最后一个字节
func (h Header) PaddingSize() int {
	if !h.Padding() {
		return 0
	}
	return int(h.buf[len(h.buf)-1])
}

// PayloadSize 负载长度，非正值表示报文被截断或自相矛盾，调用方应丢弃
func (h Header) PayloadSize() int {
	return len(h.buf) - h.PayloadOffset() - h.PaddingSize() - HeaderSize
}

// Payload 负载字节，报文不一致时返回nil
func (h Header) Payload() []byte {
	size := h.PayloadSize()
	if size <= 0 {
		return nil
	}
	off := HeaderSize + h.PayloadOffset()
	if off+size > len(h.buf) {
		return nil
	}
	return h.buf[off : off+size]
}

// DumpString 打印全部头字段及计算出的负载位置，用于诊断
func (h Header) DumpString() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "version:%d\r\n", h.Version())
	fmt.Fprintf(&buf, "padding:%d\r\n", h.PaddingSize())
	fmt.Fprintf(&buf, "ext:%d\r\n", h.ExtSize())
	fmt.Fprintf(&buf, "csrc:%d\r\n", h.CsrcSize())
	mark := 0
	if h.Marker() {
		mark = 1
	}
	fmt.Fprintf(&buf, "mark:%d\r\n", mark)
	fmt.Fprintf(&buf, "pt:%d\r\n", h.PayloadType())
	fmt.Fprintf(&buf, "seq:%d\r\n", h.Seq())
	fmt.Fprintf(&buf, "stamp:%d\r\n", h.Timestamp())
	fmt.Fprintf(&buf, "ssrc:%d\r\n", h.SSRC())
	fmt.Fprintf(&buf, "rtp size:%d\r\n", len(h.buf))
	fmt.Fprintf(&buf, "payload offset:%d\r\n", h.PayloadOffset())
	fmt.Fprintf(&buf, "payload size:%d\r\n", h.PayloadSize())
	return buf.String()
}
