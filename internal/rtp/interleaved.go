package rtp

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// interleaved帧前缀的起始标记，rfc2326 10.12
const interleavedMarker = '$'

const ntpEpoch = 2208988800

// IsRTP 缓冲是否像一个rtp报文：版本匹配且pt落在rtcp区间之外
func IsRTP(buf []byte) bool {
	if len(buf) < 2 {
		return false
	}
	pt := buf[1] & 0x7f
	return (pt < 64 || pt >= 96) && buf[0]>>6 == Version
}

// IsRTCP rtcp报文的pt落在[64,96)
func IsRTCP(buf []byte) bool {
	if len(buf) < 2 {
		return false
	}
	pt := buf[1] & 0x7f
	return pt >= 64 && pt < 96
}

// SSRC 快速读取ssrc，不校验版本，只要求长度够12字节
func SSRC(buf []byte) (uint32, bool) {
	if len(buf) < HeaderSize {
		return 0, false
	}
	return binary.BigEndian.Uint32(buf[8:12]), true
}

// PrintSSRC ssrc的十六进制表示
func PrintSSRC(ssrc uint32) string {
	return fmt.Sprintf("%08X", ssrc)
}

// MakeInterleavedPrefix 生成interleaved传输的4字节帧前缀
func MakeInterleavedPrefix(size uint16, channel uint8) []byte {
	prefix := make([]byte, TCPHeaderSize)
	prefix[0] = interleavedMarker
	prefix[1] = channel
	binary.BigEndian.PutUint16(prefix[2:], size)
	return prefix
}

// ReadInterleaved 读取一帧interleaved数据
// 首字节不是'$'时回退该字节并返回ok=false，交给上层按rtsp文本处理
func ReadInterleaved(r *bufio.Reader) (ok bool, packet []byte, channel uint8, err error) {
	flag, err := r.ReadByte()
	if err != nil {
		return false, nil, 0, err
	}
	if flag != interleavedMarker {
		_ = r.UnreadByte()
		return false, nil, 0, nil
	}

	channel, err = r.ReadByte()
	if err != nil {
		return false, nil, 0, err
	}
	var lenBuf [2]byte
	if _, err = io.ReadFull(r, lenBuf[:]); err != nil {
		return false, nil, 0, err
	}
	packet = make([]byte, binary.BigEndian.Uint16(lenBuf[:]))
	if _, err = io.ReadFull(r, packet); err != nil {
		return false, nil, 0, err
	}
	return true, packet, channel, nil
}

// NtpTime unix纳秒时间转64位ntp时间戳
func NtpTime(ns int64) uint64 {
	seconds := uint64(ns/1e9 + ntpEpoch)
	fraction := uint64(((ns % 1e9) << 32) / 1e9)
	return seconds<<32 | fraction
}
