package sdp

import (
	"fmt"
	"sort"
	"strings"

	"mini-rtsp/internal/media"
)

// ServerName 默认会话描述中携带的服务标识
const ServerName = "mini-rtsp"

// Sdp 生成的一段sdp文本及其协商参数
type Sdp struct {
	sampleRate  int
	payloadType int
	buf         strings.Builder
}

func (s *Sdp) SampleRate() int {
	return s.sampleRate
}

func (s *Sdp) PayloadType() int {
	return s.payloadType
}

func (s *Sdp) String() string {
	return s.buf.String()
}

// NewTitleSdp 生成会话级sdp块
// durSec <= 0表示直播，range写npt=now-；否则为点播
// header非空时完全接管origin/session/connection/time各行
func NewTitleSdp(durSec float64, header map[string]string, version int) *Sdp {
	s := &Sdp{}
	fmt.Fprintf(&s.buf, "v=%d\r\n", version)

	if len(header) > 0 {
		keys := make([]string, 0, len(header))
		for k := range header {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&s.buf, "%s=%s\r\n", k, header[k])
		}
	} else {
		s.buf.WriteString("o=- 0 0 IN IP4 0.0.0.0\r\n")
		fmt.Fprintf(&s.buf, "s=Streamed by %s\r\n", ServerName)
		s.buf.WriteString("c=IN IP4 0.0.0.0\r\n")
		s.buf.WriteString("t=0 0\r\n")
	}

	if durSec <= 0 {
		s.buf.WriteString("a=range:npt=now-\r\n")
	} else {
		fmt.Fprintf(&s.buf, "a=range:npt=0-%v\r\n", durSec)
	}
	s.buf.WriteString("a=control:*\r\n")
	return s
}

// NewMediaSdp 生成一条轨道的媒体级sdp块
// 静态payload type（<96）不写rtpmap，静态表已定义映射
func NewMediaSdp(payloadType int, track media.Track) *Sdp {
	s := &Sdp{payloadType: payloadType, sampleRate: 90000}
	audio, isAudio := track.(media.AudioTrack)
	if track.TrackType() == media.TrackAudio && isAudio {
		s.sampleRate = audio.SampleRate()
	}

	fmt.Fprintf(&s.buf, "m=%s 0 RTP/AVP %d\r\n", track.TrackType(), payloadType)
	if kbps := track.BitRate() >> 10; kbps > 0 {
		fmt.Fprintf(&s.buf, "b=AS:%d\r\n", kbps)
	}
	if payloadType < 96 {
		return s
	}
	fmt.Fprintf(&s.buf, "a=rtpmap:%d %s/%d", payloadType, track.CodecName(), s.sampleRate)
	if track.TrackType() == media.TrackAudio && isAudio {
		fmt.Fprintf(&s.buf, "/%d", audio.Channels())
	}
	s.buf.WriteString("\r\n")
	return s
}
