package speech

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zhouzirui/z-dungeon/backend/internal/analysis/mood"
	"github.com/zhouzirui/z-dungeon/backend/internal/config"
	"github.com/zhouzirui/z-dungeon/backend/internal/model/speech"
)

// SelfTestText 语音自检时合成的文本
const SelfTestText = "Audio system initialized successfully"

const defaultFormat = "mp3"

// Service 把旁白合成为音频文件，供游戏会话播放。
type Service struct {
	config config.SpeechConfig
	tts    *ttsClient
	now    func() time.Time
}

// NewService 创建语音服务实例
func NewService(cfg config.SpeechConfig) *Service {
	if strings.TrimSpace(cfg.AudioDir) == "" {
		cfg.AudioDir = filepath.Join("static", "audio")
	}
	return &Service{
		config: cfg,
		tts:    newTTSClient(cfg),
		now:    time.Now,
	}
}

// Enabled 返回语音服务是否具备可用凭证。
func (s *Service) Enabled() bool {
	return s != nil && s.config.Enabled
}

// SynthesizeSpeech 文字转语音
func (s *Service) SynthesizeSpeech(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.Timeout)*time.Second)
		defer cancel()
	}
	return s.tts.Synthesize(ctx, req)
}

// Speak 合成旁白并写入音频目录，返回文件路径（斜杠分隔）。
func (s *Service) Speak(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("speech text is empty")
	}

	voice := NarratorVoice(s.config.TTSVoice)
	req := &speech.TTSRequest{
		Text:     text,
		Voice:    voice,
		Speed:    s.config.TTSSpeed,
		Volume:   s.config.TTSVolume,
		Format:   defaultFormat,
		Language: s.config.TTSLanguage,
	}
	if enable, label, scale := ComputeEmotionParameters(voice, mood.Analyze(text)); enable {
		req.Emotion = label
		req.EmotionScale = scale
	}

	resp, err := s.SynthesizeSpeech(ctx, req)
	if err != nil {
		return "", err
	}

	format := resp.Format
	if format == "" {
		format = defaultFormat
	}
	return s.writeAudio(resp.AudioData, format)
}

// SelfTest 合成一段测试语音，确认语音链路可用。
func (s *Service) SelfTest(ctx context.Context) bool {
	if !s.Enabled() {
		log.Printf("[speech] self-test skipped: speech disabled or credentials missing")
		return false
	}

	path, err := s.Speak(ctx, SelfTestText)
	if err != nil {
		log.Printf("[speech] self-test failed: %v", err)
		return false
	}
	if err := os.Remove(filepath.FromSlash(path)); err != nil {
		log.Printf("[speech] failed to remove self-test audio %s: %v", path, err)
	}
	return true
}

// writeAudio 以毫秒时间戳命名写入文件，同名文件已存在时顺延一毫秒。
func (s *Service) writeAudio(data []byte, format string) (string, error) {
	if err := os.MkdirAll(s.config.AudioDir, 0o755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}

	stamp := s.now().UnixMilli()
	for i := 0; i < 1000; i++ {
		path := filepath.Join(s.config.AudioDir, fmt.Sprintf("tts_%d.%s", stamp+int64(i), format))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create audio file: %w", err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			return "", fmt.Errorf("write audio file: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close audio file: %w", err)
		}
		return filepath.ToSlash(path), nil
	}
	return "", errors.New("no free audio file name")
}

// URLPath 把 staticDir 下的音频文件路径转换为 /static/ 开头的 URL 路径。
// staticDir 为空时按默认的 static 目录处理；目录之外的文件原样返回斜杠路径。
func URLPath(staticDir, path string) string {
	if path == "" {
		return ""
	}
	path = strings.ReplaceAll(path, `\`, "/")
	if strings.TrimSpace(staticDir) == "" {
		staticDir = "static"
	}

	root, err := filepath.Abs(staticDir)
	if err != nil {
		return path
	}
	file, err := filepath.Abs(filepath.FromSlash(path))
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return "/static/" + filepath.ToSlash(rel)
}
