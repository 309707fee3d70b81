package speech

// TTSRequest 旁白合成请求
type TTSRequest struct {
	Text         string  `json:"text"`
	Voice        string  `json:"voice"`        // 音色或旁白别名（narrator、storyteller）
	Speed        float32 `json:"speed"`        // 语速倍率 0.5-2.0
	Volume       float32 `json:"volume"`       // 音量倍率
	Format       string  `json:"format"`       // mp3, ogg_opus, pcm
	Language     string  `json:"language"`     // en-US
	Emotion      string  `json:"emotion"`      // 仅情感音色生效
	EmotionScale float32 `json:"emotionScale"` // 1-5
}
