package sdp

import (
	"strconv"
	"strings"

	"mini-rtsp/internal/media"
	"mini-rtsp/internal/payload"
)

// Detector 音频轨道缺失采样率时的兜底探测，从fmtp里解出采样率
type Detector func(track *Track) (sampleRate int, ok bool)

func defaultDetector(track *Track) (int, bool) {
	return media.SampleRateFromFmtp(track.Fmtp)
}

// Parser 持有一次Load产生的轨道序列，首条固定为Title
type Parser struct {
	// Detector 为nil时使用内置的aac config探测
	Detector Detector

	tracks []*Track
}

// Load 解析sdp文本，之前的解析结果被丢弃
// 只认"<letter>=<value>"形式的行，其余行忽略，不报错
func (p *Parser) Load(text string) {
	track := newTrack()
	track.Type = media.TrackTitle
	p.tracks = []*Track{track}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 2 || line[1] != '=' {
			continue
		}
		opt, val := line[0], line[2:]
		switch opt {
		case 't':
			track.TimeRange = val
		case 'b':
			track.Bandwidth = val
		case 'm':
			kind, port, pt, ok := parseMediaLine(val)
			if !ok {
				// 两种模式都不匹配，丢弃该行，不产生新轨道
				continue
			}
			track = newTrack()
			track.PT = pt
			track.SampleRate = payload.ClockRate(pt)
			track.Channels = payload.AudioChannels(pt)
			track.Type = media.ParseTrackType(kind)
			track.Port = port
			p.tracks = append(p.tracks, track)
		case 'a':
			if idx := strings.Index(val, ":"); idx < 0 {
				track.attrs = append(track.attrs, attr{key: val})
			} else {
				track.attrs = append(track.attrs, attr{key: val[:idx], value: val[idx+1:]})
			}
		default:
			track.other[opt] = val
		}
	}

	for _, t := range p.tracks {
		p.refine(t)
	}
}

// m=行两种格式："<kind> <port> <proto> <pt>" 或 "<kind> <port>/<count> <proto> <pt>"
func parseMediaLine(val string) (kind string, port, pt int, ok bool) {
	fields := strings.Fields(val)
	if len(fields) < 4 {
		return
	}
	kind = fields[0]
	portStr := fields[1]
	if slash := strings.Index(portStr, "/"); slash >= 0 {
		if _, cntOK := parseLeadingInt(portStr[slash+1:]); !cntOK {
			return
		}
		portStr = portStr[:slash]
	}
	var portOK, ptOK bool
	port, portOK = parseLeadingInt(portStr)
	pt, ptOK = parseLeadingInt(fields[3])
	ok = portOK && ptOK
	return
}

// parseLeadingInt 解析前导十进制整数，等价于sscanf的%d
func parseLeadingInt(s string) (int, bool) {
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}

// atof 等价于C的atof：解析失败返回0
func atof(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// refine 解析完成后的逐轨道修正
func (p *Parser) refine(t *Track) {
	// range属性形如"npt=start-end"，start为now时按0处理
	if values := t.Attr("range"); len(values) > 0 {
		v := values[0]
		if eq := strings.Index(v, "="); eq >= 0 {
			rest := v[eq+1:]
			var start, end string
			if dash := strings.Index(rest, "-"); dash >= 0 {
				start, end = rest[:dash], rest[dash+1:]
			} else {
				start = rest
			}
			if start != "" {
				if start == "now" {
					start = "0"
				}
				t.Start = atof(start)
				t.End = atof(end)
				t.Duration = t.End - t.Start
			}
		}
	}

	// rtpmap：pt不匹配的条目整条剔除；剩下的按顺序覆盖，最后一条生效
	kept := make([]attr, 0, len(t.attrs))
	for _, a := range t.attrs {
		if a.key != "rtpmap" {
			kept = append(kept, a)
			continue
		}
		pt, ok := parseLeadingInt(a.value)
		if !ok || (t.PT != ptUnset && t.PT != pt) {
			continue
		}
		kept = append(kept, a)
		fields := strings.Fields(a.value)
		if len(fields) < 2 {
			continue
		}
		parts := strings.SplitN(fields[1], "/", 3)
		if len(parts) < 2 || parts[0] == "" {
			continue
		}
		rate, rateOK := parseLeadingInt(parts[1])
		if !rateOK {
			continue
		}
		if t.PT == ptUnset {
			t.PT = pt
		}
		t.Codec = parts[0]
		t.SampleRate = rate
		if len(parts) == 3 {
			if ch, chOK := parseLeadingInt(parts[2]); chOK {
				t.Channels = ch
			}
		}
	}
	t.attrs = kept

	// fmtp：同样按pt过滤，首个空格之后的内容原样保存
	kept = make([]attr, 0, len(t.attrs))
	for _, a := range t.attrs {
		if a.key != "fmtp" {
			kept = append(kept, a)
			continue
		}
		pt, ok := parseLeadingInt(a.value)
		if !ok || (t.PT != ptUnset && t.PT != pt) {
			continue
		}
		kept = append(kept, a)
		if sp := strings.Index(a.value, " "); sp >= 0 {
			t.Fmtp = a.value[sp+1:]
		} else {
			t.Fmtp = ""
		}
	}
	t.attrs = kept

	if values := t.Attr("control"); len(values) > 0 {
		t.Control = values[0]
	}

	if t.SampleRate == 0 && t.Type == media.TrackVideo {
		// 视频未给采样率时固定90000
		t.SampleRate = 90000
	} else if t.SampleRate == 0 && t.Type == media.TrackAudio {
		// 部分sdp不带rtpmap采样率，但fmtp的config里能解出来
		detector := p.Detector
		if detector == nil {
			detector = defaultDetector
		}
		if rate, ok := detector(t); ok {
			t.SampleRate = rate
		}
	}
}

// Available 是否解析出了可用的音频或视频轨道
func (p *Parser) Available() bool {
	return p.GetTrack(media.TrackAudio) != nil || p.GetTrack(media.TrackVideo) != nil
}

// GetTrack 返回首个指定类型的轨道，没有则返回nil
func (p *Parser) GetTrack(typ media.TrackType) *Track {
	for _, t := range p.tracks {
		if t.Type == typ {
			return t
		}
	}
	return nil
}

// GetAvailableTrack 按出现顺序最多返回一条音频和一条视频，跳过重复轨道
func (p *Parser) GetAvailableTrack() []*Track {
	var out []*Track
	audioAdded, videoAdded := false, false
	for _, t := range p.tracks {
		switch t.Type {
		case media.TrackAudio:
			if !audioAdded {
				out = append(out, t)
				audioAdded = true
			}
		case media.TrackVideo:
			if !videoAdded {
				out = append(out, t)
				videoAdded = true
			}
		}
	}
	return out
}

// String 重新渲染为规范顺序：Title块+Video块+Audio块
func (p *Parser) String() string {
	var title, video, audio string
	for _, t := range p.tracks {
		switch t.Type {
		case media.TrackTitle:
			title = t.toString(0)
		case media.TrackVideo:
			video = t.toString(0)
		case media.TrackAudio:
			audio = t.toString(0)
		}
	}
	return title + video + audio
}

// ControlURL Title轨道的control为绝对地址时返回之，否则返回base
func (p *Parser) ControlURL(base string) string {
	title := p.GetTrack(media.TrackTitle)
	if title != nil && strings.Contains(title.Control, "://") {
		return title.Control
	}
	return base
}
