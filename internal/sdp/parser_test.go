package sdp

import (
	"testing"

	"mini-rtsp/internal/media"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cameraSdp = "v=0\r\n" +
	"o=- 2252251 2252251 IN IP4 0.0.0.0\r\n" +
	"s=Media Server\r\n" +
	"c=IN IP4 0.0.0.0\r\n" +
	"t=0 0\r\n" +
	"a=control:*\r\n" +
	"a=range:npt=0-12.5\r\n" +
	"m=video 0 RTP/AVP 96\r\n" +
	"b=AS:5050\r\n" +
	"a=rtpmap:96 H264/90000\r\n" +
	"a=fmtp:96 packetization-mode=1; profile-level-id=4D0014\r\n" +
	"a=control:trackID=0\r\n" +
	"m=audio 0 RTP/AVP 8\r\n" +
	"a=rtpmap:8 PCMA/8000\r\n" +
	"a=control:trackID=1\r\n"

func TestLoad(t *testing.T) {
	var p Parser
	p.Load(cameraSdp)
	assert.True(t, p.Available())

	title := p.GetTrack(media.TrackTitle)
	require.NotNil(t, title)
	assert.Equal(t, "*", title.Control)
	assert.Equal(t, 0.0, title.Start)
	assert.Equal(t, 12.5, title.End)
	assert.Equal(t, 12.5, title.Duration)
	assert.Equal(t, "0 0", title.TimeRange)
	assert.Equal(t, "- 2252251 2252251 IN IP4 0.0.0.0", title.Other('o'))

	video := p.GetTrack(media.TrackVideo)
	require.NotNil(t, video)
	assert.Equal(t, 96, video.PT)
	assert.Equal(t, "H264", video.Codec)
	assert.Equal(t, 90000, video.SampleRate)
	assert.Equal(t, "AS:5050", video.Bandwidth)
	assert.Equal(t, "packetization-mode=1; profile-level-id=4D0014", video.Fmtp)
	assert.Equal(t, "trackID=0", video.Control)

	audio := p.GetTrack(media.TrackAudio)
	require.NotNil(t, audio)
	assert.Equal(t, 8, audio.PT)
	assert.Equal(t, "PCMA", audio.Codec)
	assert.Equal(t, 8000, audio.SampleRate)
	assert.Equal(t, 1, audio.Channels)
}

func TestLoadIgnoresGarbage(t *testing.T) {
	var p Parser
	p.Load("hello\r\nx\r\n\r\n=broken\r\nm=video 0 RTP/AVP 96\r\na=rtpmap:96 H264/90000\r\n")
	assert.True(t, p.Available())
	require.NotNil(t, p.GetTrack(media.TrackVideo))
	assert.Nil(t, p.GetTrack(media.TrackAudio))
}

func TestRangeNow(t *testing.T) {
	var p Parser
	p.Load("v=0\r\na=range:npt=now-\r\n")
	title := p.GetTrack(media.TrackTitle)
	require.NotNil(t, title)
	assert.Equal(t, 0.0, title.Start)
	assert.Equal(t, 0.0, title.End)
	assert.Equal(t, 0.0, title.Duration)
}

func TestRangeMalformed(t *testing.T) {
	var p Parser
	p.Load("v=0\r\na=range:whatever\r\n")
	title := p.GetTrack(media.TrackTitle)
	require.NotNil(t, title)
	assert.Equal(t, 0.0, title.Start)
	assert.Equal(t, 0.0, title.Duration)
}

func TestRtpmapFilter(t *testing.T) {
	var p Parser
	p.Load("m=video 0 RTP/AVP 96\r\n" +
		"a=rtpmap:97 H265/90000\r\n" +
		"a=rtpmap:96 H264/90000\r\n")
	video := p.GetTrack(media.TrackVideo)
	require.NotNil(t, video)
	// pt不匹配的条目被整条剔除，不影响字段也不参与重新渲染
	assert.Equal(t, "H264", video.Codec)
	assert.Equal(t, []string{"96 H264/90000"}, video.Attr("rtpmap"))
}

func TestRtpmapAdoptsUnsetPT(t *testing.T) {
	// m=行两种模式都不匹配时被丢弃，属性落在Title轨道上，
	// Title的pt未设置，从首条rtpmap采纳
	var p Parser
	p.Load("m=video 0 RTP/AVP\r\n" +
		"a=rtpmap:96 H264/90000\r\n" +
		"a=rtpmap:97 H265/90000\r\n")
	require.Len(t, p.tracks, 1)
	title := p.tracks[0]
	assert.Equal(t, 96, title.PT)
	assert.Equal(t, "H264", title.Codec)
	// 采纳96之后，97被过滤
	assert.Equal(t, []string{"96 H264/90000"}, title.Attr("rtpmap"))
}

func TestRtpmapChannels(t *testing.T) {
	var p Parser
	p.Load("m=audio 0 RTP/AVP 97\r\na=rtpmap:97 mpeg4-generic/44100/2\r\n")
	audio := p.GetTrack(media.TrackAudio)
	require.NotNil(t, audio)
	assert.Equal(t, 44100, audio.SampleRate)
	assert.Equal(t, 2, audio.Channels)
	assert.Equal(t, "mpeg4-generic", audio.Codec)
}

func TestFmtpFilter(t *testing.T) {
	var p Parser
	p.Load("m=video 0 RTP/AVP 96\r\n" +
		"a=fmtp:97 other=1\r\n" +
		"a=fmtp:96 packetization-mode=1\r\n")
	video := p.GetTrack(media.TrackVideo)
	require.NotNil(t, video)
	assert.Equal(t, "packetization-mode=1", video.Fmtp)
	assert.Equal(t, []string{"96 packetization-mode=1"}, video.Attr("fmtp"))
}

func TestMalformedMediaLineKeepsCursor(t *testing.T) {
	var p Parser
	p.Load("v=0\r\nm=video notaport RTP/AVP 96\r\nb=AS:100\r\n")
	// m=行被丢弃，后续b=落在Title上
	require.Len(t, p.tracks, 1)
	assert.Equal(t, "AS:100", p.tracks[0].Bandwidth)
	assert.False(t, p.Available())
}

func TestMediaLinePortCount(t *testing.T) {
	var p Parser
	p.Load("m=video 5000/2 RTP/AVP 33\r\n")
	video := p.GetTrack(media.TrackVideo)
	require.NotNil(t, video)
	assert.Equal(t, 5000, video.Port)
	assert.Equal(t, 33, video.PT)
	// 静态pt从注册表带出默认采样参数
	assert.Equal(t, 90000, video.SampleRate)
}

func TestGetAvailableTrackDedupe(t *testing.T) {
	var p Parser
	p.Load("m=audio 0 RTP/AVP 8\r\n" +
		"m=video 0 RTP/AVP 96\r\na=rtpmap:96 H264/90000\r\n" +
		"m=audio 0 RTP/AVP 0\r\n")
	tracks := p.GetAvailableTrack()
	require.Len(t, tracks, 2)
	// 相同类型只保留首个，顺序保持出现顺序
	assert.Equal(t, media.TrackAudio, tracks[0].Type)
	assert.Equal(t, 8, tracks[0].PT)
	assert.Equal(t, media.TrackVideo, tracks[1].Type)
}

func TestStringCanonicalOrder(t *testing.T) {
	// 输入音频在前，重新渲染后固定为Title+Video+Audio
	var p Parser
	p.Load("v=0\r\n" +
		"m=audio 0 RTP/AVP 8\r\na=rtpmap:8 PCMA/8000\r\n" +
		"m=video 0 RTP/AVP 96\r\na=rtpmap:96 H264/90000\r\n")
	out := p.String()

	var p2 Parser
	p2.Load(out)
	tracks := p2.GetAvailableTrack()
	require.Len(t, tracks, 2)
	assert.Equal(t, media.TrackVideo, tracks[0].Type)
	assert.Equal(t, 96, tracks[0].PT)
	assert.Equal(t, media.TrackAudio, tracks[1].Type)
	assert.Equal(t, 8, tracks[1].PT)
}

func TestControlURL(t *testing.T) {
	var p Parser
	p.Load("v=0\r\na=control:rtsp://10.0.0.1/live/0\r\nm=video 0 RTP/AVP 96\r\na=control:trackID=0\r\n")
	assert.Equal(t, "rtsp://10.0.0.1/live/0", p.ControlURL("rtsp://host/app"))

	video := p.GetTrack(media.TrackVideo)
	require.NotNil(t, video)
	assert.Equal(t, "rtsp://host/app/trackID=0", video.ControlURL("rtsp://host/app"))

	var p2 Parser
	p2.Load("v=0\r\na=control:*\r\n")
	assert.Equal(t, "rtsp://host/app", p2.ControlURL("rtsp://host/app"))
}

func TestAudioSampleRateFromFmtpConfig(t *testing.T) {
	detected := 0
	p := Parser{Detector: func(track *Track) (int, bool) {
		detected++
		return 22050, true
	}}
	// rtpmap把采样率写成0，触发音频兜底探测
	p.Load("m=audio 0 RTP/AVP 97\r\na=rtpmap:97 mpeg4-generic/0\r\na=fmtp:97 config=1210\r\n")
	audio := p.GetTrack(media.TrackAudio)
	require.NotNil(t, audio)
	assert.Equal(t, 1, detected)
	assert.Equal(t, 22050, audio.SampleRate)
}

func TestDefaultDetector(t *testing.T) {
	var p Parser
	p.Load("m=audio 0 RTP/AVP 97\r\na=rtpmap:97 mpeg4-generic/0\r\na=fmtp:97 mode=AAC-hbr;config=1210\r\n")
	audio := p.GetTrack(media.TrackAudio)
	require.NotNil(t, audio)
	assert.Equal(t, 44100, audio.SampleRate)
}
