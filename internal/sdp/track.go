// Package sdp implements a permissive SDP parser and the title/media
// section builders used during rtsp negotiation. The parser never fails:
// malformed lines are dropped so that noncompliant peers still work.
package sdp

import (
	"fmt"
	"sort"
	"strings"

	"mini-rtsp/internal/media"
	"mini-rtsp/internal/payload"
)

// pt未协商时的占位值
const ptUnset = 0xff

// a=属性，同名key可重复，保留出现顺序
type attr struct {
	key   string
	value string
}

// Track 一条m=行（或隐式的会话级Title）解析出的状态
// Load的后处理完成后视为只读
type Track struct {
	Type      media.TrackType
	PT        int
	Port      int
	TimeRange string // t=原始内容
	Bandwidth string // b=原始内容

	Start    float64
	End      float64
	Duration float64

	Codec      string
	SampleRate int
	Channels   int
	Fmtp       string
	Control    string

	attrs []attr
	other map[byte]string
}

func newTrack() *Track {
	return &Track{
		Type:  media.TrackInvalid,
		PT:    ptUnset,
		other: make(map[byte]string),
	}
}

// Name pt在静态表中的名称
func (t *Track) Name() string {
	return payload.Name(t.PT)
}

// Attr 返回key下的全部属性值，保留顺序
func (t *Track) Attr(key string) []string {
	var out []string
	for _, a := range t.attrs {
		if a.key == key {
			out = append(out, a.value)
		}
	}
	return out
}

// Other 返回side table中letter对应的原始行内容
func (t *Track) Other(letter byte) string {
	return t.other[letter]
}

// ControlURL 拼接该轨道的control地址，control本身为绝对地址时原样返回
func (t *Track) ControlURL(base string) string {
	if strings.Contains(t.Control, "://") {
		return t.Control
	}
	return base + "/" + t.Control
}

// 属性重新渲染：按key排序输出，control固定放最后
func (t *Track) attrSdp(buf *strings.Builder) {
	sorted := make([]attr, len(t.attrs))
	copy(sorted, t.attrs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].key < sorted[j].key })

	var control *attr
	for i := range sorted {
		a := &sorted[i]
		if a.key == "control" {
			control = a
			continue
		}
		if a.value == "" {
			fmt.Fprintf(buf, "a=%s\r\n", a.key)
		} else {
			fmt.Fprintf(buf, "a=%s:%s\r\n", a.key, a.value)
		}
	}
	if control != nil {
		fmt.Fprintf(buf, "a=%s:%s\r\n", control.key, control.value)
	}
}

// toString 重新渲染该轨道的sdp块，port写入m=行
func (t *Track) toString(port uint16) string {
	var buf strings.Builder
	switch t.Type {
	case media.TrackTitle:
		buf.WriteString(NewTitleSdp(t.Duration, nil, 0).String())
	case media.TrackAudio, media.TrackVideo:
		fmt.Fprintf(&buf, "m=%s %d RTP/AVP %d\r\n", t.Type, port, t.PT)
		if t.Bandwidth != "" {
			fmt.Fprintf(&buf, "b=%s\r\n", t.Bandwidth)
		}
		t.attrSdp(&buf)
	}
	return buf.String()
}
