// Package mood guesses the emotional colour of a narration line so the
// speech synthesizer can voice it.
package mood

import (
	"math"
	"strings"
)

// Label is an emotion the TTS voices accept.
type Label string

const (
	Neutral  Label = "neutral"
	Happy    Label = "happy"
	Sad      Label = "sad"
	Angry    Label = "angry"
	Excited  Label = "excited"
	Tender   Label = "tender"
	Comfort  Label = "comfort"
	Magnetic Label = "magnetic"
)

// Decision is the detected mood and a suggested intensity in [1, 5].
type Decision struct {
	Emotion Label
	Scale   float32
	Score   int
}

var keywordBuckets = map[Label][]string{
	Happy: {
		"laugh", "cheer", "smile", "grin", "joy", "delight", "celebrat", "feast", "merry",
		"welcome", "thank", "reward", "treasure", "gold", "victory", "triumph",
	},
	Sad: {
		"mourn", "grief", "weep", "tears", "sorrow", "lost", "fallen", "ruin", "lonely",
		"abandon", "funeral", "grave", "regret", "despair", "farewell",
	},
	Angry: {
		"rage", "fury", "furious", "snarl", "growl", "shout", "curse", "betray", "threat",
		"glare", "seethe", "vengeance", "revenge", "insult",
	},
	Excited: {
		"charge", "battle", "roar", "clash", "erupt", "explod", "sudden", "burst", "rush",
		"leap", "ambush", "attack", "dragon", "lightning", "thunder",
	},
	Tender: {
		"gentle", "soft", "quiet", "whisper", "hush", "calm", "peaceful", "moonlight",
		"warm", "breeze", "slowly", "lullaby",
	},
	Comfort: {
		"safe", "rest", "heal", "shelter", "hearth", "don't worry", "fear not", "you're safe",
		"take heart", "be at ease", "sanctuary", "refuge",
	},
	Magnetic: {
		"ancient", "prophecy", "ominous", "dread", "doom", "shadow", "darkness", "legend",
		"foretold", "forbidden", "cursed", "beware", "evil", "ritual",
	},
}

var punctuationBoost = map[Label]int{
	Happy:   2,
	Excited: 3,
}

// Analyze scores text against the keyword buckets and picks the strongest
// mood. Text without any cue is Neutral.
func Analyze(text string) Decision {
	best := scoreText(text)
	if best.Score == 0 {
		return Decision{Emotion: Neutral, Scale: 3, Score: 0}
	}

	scale := 2 + float32(best.Score)/4
	switch best.Emotion {
	case Excited:
		scale += 1
	case Magnetic:
		scale = float32(math.Min(4.0, float64(scale)))
	case Comfort, Tender:
		scale = float32(math.Min(3.5, float64(scale)))
	}

	scale = max(1, min(5, scale))
	return Decision{Emotion: best.Emotion, Scale: scale, Score: best.Score}
}

func scoreText(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Emotion: Neutral}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	if exclamations := strings.Count(text, "!"); exclamations > 0 {
		scores[Excited] += exclamations * punctuationBoost[Excited]
		if exclamations == 1 {
			scores[Happy] += punctuationBoost[Happy]
		}
	}

	// iterate in a fixed order so ties resolve the same way every time
	bestLabel, bestScore := Neutral, 0
	for _, label := range []Label{Excited, Angry, Magnetic, Sad, Happy, Comfort, Tender} {
		if s := scores[label]; s > bestScore {
			bestLabel, bestScore = label, s
		}
	}
	return Decision{Emotion: bestLabel, Score: bestScore}
}
