package media

// TrackType 轨道类型，Title表示sdp头部的会话级描述
type TrackType int

const (
	TrackInvalid TrackType = -1
	TrackVideo   TrackType = 0
	TrackAudio   TrackType = 1
	TrackTitle   TrackType = 2
)

// String 返回m=行使用的媒体关键字
func (t TrackType) String() string {
	switch t {
	case TrackVideo:
		return "video"
	case TrackAudio:
		return "audio"
	case TrackTitle:
		return "title"
	default:
		return "invalid"
	}
}

// ParseTrackType m=行媒体关键字转TrackType，空串表示会话级（Title）
func ParseTrackType(str string) TrackType {
	switch str {
	case "":
		return TrackTitle
	case "video":
		return TrackVideo
	case "audio":
		return TrackAudio
	default:
		return TrackInvalid
	}
}

// CodecID 编解码器标识
type CodecID int

const (
	CodecInvalid CodecID = iota - 1
	CodecH264
	CodecH265
	CodecAAC
	CodecG711A
	CodecG711U
	CodecOpus
	CodecL16
	CodecVP8
	CodecVP9
	CodecAV1
	CodecJPEG
	CodecTS
)

func (c CodecID) String() string {
	switch c {
	case CodecH264:
		return "H264"
	case CodecH265:
		return "H265"
	case CodecAAC:
		return "mpeg4-generic"
	case CodecG711A:
		return "PCMA"
	case CodecG711U:
		return "PCMU"
	case CodecOpus:
		return "opus"
	case CodecL16:
		return "L16"
	case CodecVP8:
		return "VP8"
	case CodecVP9:
		return "VP9"
	case CodecAV1:
		return "AV1"
	case CodecJPEG:
		return "JPEG"
	case CodecTS:
		return "MP2T"
	default:
		return "invalid"
	}
}

// Track 一条媒体轨道对外暴露的最小接口，由上层的编解码扩展实现
type Track interface {
	TrackType() TrackType
	CodecID() CodecID
	CodecName() string
	// BitRate 码率，单位bps，0表示未知
	BitRate() int
}

// AudioTrack 音频轨道在Track基础上额外暴露采样参数
type AudioTrack interface {
	Track
	SampleRate() int
	Channels() int
}
