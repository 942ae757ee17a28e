// Package payload maintains the static RTP payload-type table (RFC 3551)
// and the reverse lookups the sdp layer depends on.
package payload

import (
	"sync"

	"mini-rtsp/internal/log"
	"mini-rtsp/internal/media"
)

// Entry 静态payload type表中的一项
type Entry struct {
	Name      string
	Type      media.TrackType
	PT        int
	ClockRate int
	Channels  int
	Codec     media.CodecID
}

// RFC 3551静态分配表，pt >= 96为动态类型，不在表内
var table = []Entry{
	{"PCMU", media.TrackAudio, 0, 8000, 1, media.CodecG711U},
	{"GSM", media.TrackAudio, 3, 8000, 1, media.CodecInvalid},
	{"G723", media.TrackAudio, 4, 8000, 1, media.CodecInvalid},
	{"DVI4_8000", media.TrackAudio, 5, 8000, 1, media.CodecInvalid},
	{"DVI4_16000", media.TrackAudio, 6, 16000, 1, media.CodecInvalid},
	{"LPC", media.TrackAudio, 7, 8000, 1, media.CodecInvalid},
	{"PCMA", media.TrackAudio, 8, 8000, 1, media.CodecG711A},
	{"G722", media.TrackAudio, 9, 8000, 1, media.CodecInvalid},
	{"L16_Stereo", media.TrackAudio, 10, 44100, 2, media.CodecL16},
	{"L16_Mono", media.TrackAudio, 11, 44100, 1, media.CodecInvalid},
	{"QCELP", media.TrackAudio, 12, 8000, 1, media.CodecInvalid},
	{"CN", media.TrackAudio, 13, 8000, 1, media.CodecInvalid},
	{"MPA", media.TrackAudio, 14, 90000, 1, media.CodecInvalid},
	{"G728", media.TrackAudio, 15, 8000, 1, media.CodecInvalid},
	{"DVI4_11025", media.TrackAudio, 16, 11025, 1, media.CodecInvalid},
	{"DVI4_22050", media.TrackAudio, 17, 22050, 1, media.CodecInvalid},
	{"G729", media.TrackAudio, 18, 8000, 1, media.CodecInvalid},
	{"CelB", media.TrackVideo, 25, 90000, 1, media.CodecInvalid},
	{"JPEG", media.TrackVideo, 26, 90000, 1, media.CodecJPEG},
	{"nv", media.TrackVideo, 28, 90000, 1, media.CodecInvalid},
	{"H261", media.TrackVideo, 31, 90000, 1, media.CodecInvalid},
	{"MPV", media.TrackVideo, 32, 90000, 1, media.CodecInvalid},
	{"MP2T", media.TrackVideo, 33, 90000, 1, media.CodecTS},
	{"H263", media.TrackVideo, 34, 90000, 1, media.CodecInvalid},
}

var (
	once    sync.Once
	byPT    map[int]*Entry
	byCodec map[media.CodecID]*Entry
)

// 首次查询时一次性建索引，之后只读，无需加锁
func index() {
	once.Do(func() {
		byPT = make(map[int]*Entry, len(table))
		byCodec = make(map[media.CodecID]*Entry, len(table))
		for i := range table {
			e := &table[i]
			byPT[e.PT] = e
			if e.Codec != media.CodecInvalid {
				byCodec[e.Codec] = e
			}
		}
	})
}

// Entries 返回静态表的一份拷贝
func Entries() []Entry {
	out := make([]Entry, len(table))
	copy(out, table)
	return out
}

// ClockRate pt对应的时钟频率，未知pt返回90000
func ClockRate(pt int) int {
	index()
	if e, ok := byPT[pt]; ok {
		return e.ClockRate
	}
	return 90000
}

// ClockRateByCodec codec对应的时钟频率，未知codec返回90000
func ClockRateByCodec(codec media.CodecID) int {
	index()
	if e, ok := byCodec[codec]; ok {
		return e.ClockRate
	}
	log.Warnf("unsupported codec: %s", codec)
	return 90000
}

// PayloadType 返回track的静态payload type
// 音频轨道还需采样率和声道数与静态表一致，否则必须走动态协商，返回-1
func PayloadType(track media.Track) int {
	index()
	e, ok := byCodec[track.CodecID()]
	if !ok {
		return -1
	}
	if track.TrackType() == media.TrackAudio {
		audio, ok := track.(media.AudioTrack)
		if !ok || audio.SampleRate() != e.ClockRate || audio.Channels() != e.Channels {
			return -1
		}
	}
	return e.PT
}

// TrackType pt对应的轨道类型，未知pt返回TrackInvalid
func TrackType(pt int) media.TrackType {
	index()
	if e, ok := byPT[pt]; ok {
		return e.Type
	}
	return media.TrackInvalid
}

// AudioChannels pt对应的声道数，未知pt返回1
func AudioChannels(pt int) int {
	index()
	if e, ok := byPT[pt]; ok {
		return e.Channels
	}
	return 1
}

// Name pt对应的名称，未知pt返回固定串
func Name(pt int) string {
	index()
	if e, ok := byPT[pt]; ok {
		return e.Name
	}
	return "unknown payload type"
}

// CodecID pt对应的codec，未知pt返回CodecInvalid
func CodecID(pt int) media.CodecID {
	index()
	if e, ok := byPT[pt]; ok {
		return e.Codec
	}
	return media.CodecInvalid
}
