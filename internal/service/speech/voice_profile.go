package speech

import (
	"strings"

	"github.com/zhouzirui/z-dungeon/backend/internal/analysis/mood"
)

var defaultEmotionLabels = map[mood.Label]string{
	mood.Happy:    "happy",
	mood.Sad:      "sad",
	mood.Angry:    "angry",
	mood.Excited:  "excited",
	mood.Tender:   "tender",
	mood.Comfort:  "comfort",
	mood.Magnetic: "magnetic",
}

var emotionVoiceWhitelist = map[string]struct{}{
	"en_female_candice_emo_v2_mars_bigtts": {},
	"en_female_skye_emo_v2_mars_bigtts":    {},
	"en_male_glen_emo_v2_mars_bigtts":      {},
	"en_male_sylus_emo_v2_mars_bigtts":     {},
	"en_male_corey_emo_v2_mars_bigtts":     {},
}

// ComputeEmotionParameters 根据音色与旁白情绪计算TTS情绪参数。
func ComputeEmotionParameters(voice string, decision mood.Decision) (enable bool, label string, scale float32) {
	if decision.Emotion == mood.Neutral || decision.Score <= 0 {
		return false, "", 0
	}

	if !supportsEmotion(voice) {
		return false, "", 0
	}

	mapped, ok := defaultEmotionLabels[decision.Emotion]
	if !ok {
		mapped = string(mood.Neutral)
	}

	finalScale := decision.Scale
	if finalScale <= 0 {
		finalScale = 3
	}
	if finalScale < 1 {
		finalScale = 1
	}
	if finalScale > 5 {
		finalScale = 5
	}

	return true, mapped, finalScale
}

func supportsEmotion(voice string) bool {
	normalized := strings.ToLower(strings.TrimSpace(voice))
	if normalized == "" {
		return false
	}

	if _, ok := emotionVoiceWhitelist[normalized]; ok {
		return true
	}

	if strings.Contains(normalized, "_emo_") || strings.Contains(normalized, "_emo") {
		return true
	}

	return false
}

// FallbackNarratorVoice 配置音色不可用时改用的旁白音色
const FallbackNarratorVoice = "en_female_amy_jupiter_bigtts"

const (
	seedResource   = "seed-tts-2.0"
	legacyResource = "volc.service_type.10029"
)

var narratorAliases = map[string]string{
	"narrator":        "en_male_glen_emo_v2_mars_bigtts",
	"narrator-female": "en_female_candice_emo_v2_mars_bigtts",
	"storyteller":     "en_male_sylus_emo_v2_mars_bigtts",
}

// NarratorVoice 把旁白别名解析为具体音色，空值使用回退音色。
func NarratorVoice(voice string) string {
	voice = strings.TrimSpace(voice)
	if voice == "" {
		return FallbackNarratorVoice
	}
	if mapped, ok := narratorAliases[strings.ToLower(voice)]; ok {
		return mapped
	}
	return voice
}

// narratorVoices 返回依次尝试的音色：先配置音色，再回退音色。
func narratorVoices(voice string) []string {
	primary := NarratorVoice(voice)
	if strings.EqualFold(primary, FallbackNarratorVoice) {
		return []string{primary}
	}
	return []string{primary, FallbackNarratorVoice}
}

// voiceResource 大模型音色使用 seed-tts-2.0，其余使用通用资源。
func voiceResource(voice string) string {
	if strings.HasSuffix(strings.ToLower(voice), "_bigtts") {
		return seedResource
	}
	return legacyResource
}
