package media

import (
	"encoding/hex"
	"strings"
)

// AudioSpecificConfig中采样率索引表，索引15表示后面跟24bit显式采样率
var aacSampleRates = []int{
	96000, 88200, 64000, 48000, 44100, 32000,
	24000, 22050, 16000, 12000, 11025, 8000, 7350,
}

// SampleRateFromFmtp 从aac的fmtp参数中提取采样率
// 某些rtsp服务器的sdp不携带rtpmap采样率，只能从config字段解出来
func SampleRateFromFmtp(fmtp string) (int, bool) {
	config := fmtpParam(fmtp, "config")
	if config == "" {
		return 0, false
	}
	buf, err := hex.DecodeString(config)
	if err != nil || len(buf) < 2 {
		return 0, false
	}

	// AudioSpecificConfig: 5bit object type + 4bit frequency index
	index := (int(buf[0]&0x07) << 1) | int(buf[1]>>7)
	if index == 15 {
		// 显式24bit采样率
		if len(buf) < 5 {
			return 0, false
		}
		rate := (int(buf[1]&0x7f) << 17) | (int(buf[2]) << 9) | (int(buf[3]) << 1) | int(buf[4]>>7)
		return rate, true
	}
	if index >= len(aacSampleRates) {
		return 0, false
	}
	return aacSampleRates[index], true
}

// fmtpParam 在"key1=v1;key2=v2"形式的fmtp串中取key对应的值，key不区分大小写
func fmtpParam(fmtp, key string) string {
	for _, item := range strings.Split(fmtp, ";") {
		item = strings.TrimSpace(item)
		eq := strings.Index(item, "=")
		if eq < 0 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(item[:eq]), key) {
			return strings.TrimSpace(item[eq+1:])
		}
	}
	return ""
}
