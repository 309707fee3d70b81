package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/z-dungeon/backend/internal/config"
	"github.com/zhouzirui/z-dungeon/backend/internal/model/speech"
)

const narrationSampleRate = 24000

// errVoiceUnavailable 音色与资源不匹配，可换用回退音色重试
var errVoiceUnavailable = errors.New("narrator voice unavailable on resource")

// ttsClient 通过单向流式 WebSocket 接口合成旁白
type ttsClient struct {
	config   config.SpeechConfig
	endpoint string
	dialer   *websocket.Dialer
}

type ttsStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type volcengineTTSRequest struct {
	User struct {
		UID string `json:"uid"`
	} `json:"user"`
	ReqParams struct {
		Speaker     string                   `json:"speaker"`
		Text        string                   `json:"text"`
		AudioParams volcengineTTSAudioParams `json:"audio_params"`
		Language    string                   `json:"language,omitempty"`
	} `json:"req_params"`
}

type volcengineTTSAudioParams struct {
	Format       string  `json:"format"`
	SampleRate   int     `json:"sample_rate"`
	SpeedRatio   float32 `json:"speed_ratio,omitempty"`
	VolumeRatio  float32 `json:"volume_ratio,omitempty"`
	Emotion      string  `json:"emotion,omitempty"`
	EmotionScale float32 `json:"emotion_scale,omitempty"`
}

func newTTSClient(cfg config.SpeechConfig) *ttsClient {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = config.DefaultTTSEndpoint
	}
	return &ttsClient{
		config:   cfg,
		endpoint: endpoint,
		dialer:   &websocket.Dialer{HandshakeTimeout: 30 * time.Second},
	}
}

// Synthesize 用旁白音色合成语音，音色不可用时换用回退音色。
func (c *ttsClient) Synthesize(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.New("TTS text is empty")
	}
	appKey, accessKey, err := resolveCredentials(c.config)
	if err != nil {
		return nil, err
	}

	voices := narratorVoices(req.Voice)
	for i, voice := range voices {
		if i > 0 && !supportsEmotion(voice) {
			plain := *req
			plain.Emotion, plain.EmotionScale = "", 0
			req = &plain
		}
		resp, err := c.synthesize(ctx, req, voice, appKey, accessKey)
		if err == nil {
			if i > 0 {
				log.Printf("[tts] narrating with fallback voice %s", voice)
			}
			return resp, nil
		}
		if !errors.Is(err, errVoiceUnavailable) || i == len(voices)-1 {
			return nil, err
		}
		log.Printf("[tts] voice %s rejected: %v", voice, err)
	}
	return nil, errVoiceUnavailable
}

func (c *ttsClient) synthesize(ctx context.Context, req *speech.TTSRequest, voice, appKey, accessKey string) (*speech.TTSResponse, error) {
	connectID := uuid.NewString()

	header := http.Header{}
	header.Set("X-Api-App-Key", appKey)
	header.Set("X-Api-Access-Key", accessKey)
	header.Set("X-Api-Resource-Id", voiceResource(voice))
	header.Set("X-Api-Connect-Id", connectID)

	conn, _, err := c.dialer.DialContext(ctx, c.endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to TTS WebSocket: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	frame, err := c.requestFrame(req, voice, connectID)
	if err != nil {
		return nil, err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		return nil, fmt.Errorf("failed to send TTS request: %w", err)
	}

	var audio bytes.Buffer
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to read TTS response: %w", err)
		}

		msg, err := DecodeMessage(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode TTS message: %w", err)
		}
		payload, err := DecompressPayload(msg.Payload, msg.Header.CompressionMethod)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress TTS payload: %w", err)
		}

		switch msg.Header.MessageType {
		case ErrorMessage:
			if strings.Contains(string(payload), "resource ID is mismatched") {
				return nil, fmt.Errorf("%w: TTS error %d: %s", errVoiceUnavailable, msg.ErrorCode, payload)
			}
			return nil, fmt.Errorf("TTS error %d: %s", msg.ErrorCode, payload)
		case AudioOnlyServerResponse:
			audio.Write(payload)
		case FullServerResponse:
			var status ttsStatus
			if len(payload) > 0 && json.Unmarshal(payload, &status) == nil && status.Code != 0 && status.Code != 3000 {
				return nil, fmt.Errorf("TTS API error %d: %s", status.Code, status.Message)
			}
		default:
			log.Printf("[tts] unexpected message type: %d", msg.Header.MessageType)
		}

		if !narrationFinished(msg) {
			continue
		}
		if audio.Len() == 0 {
			return nil, errors.New("TTS audio is empty")
		}
		return &speech.TTSResponse{
			AudioData: audio.Bytes(),
			Format:    req.Format,
			Voice:     voice,
			ConnectID: connectID,
		}, nil
	}
}

// requestFrame 构建 gzip 压缩后的完整客户端请求帧
func (c *ttsClient) requestFrame(req *speech.TTSRequest, voice, uid string) ([]byte, error) {
	var body volcengineTTSRequest
	body.User.UID = uid
	body.ReqParams.Speaker = voice
	body.ReqParams.Text = req.Text
	body.ReqParams.Language = strings.TrimSpace(req.Language)
	if body.ReqParams.Language == "" {
		body.ReqParams.Language = strings.TrimSpace(c.config.TTSLanguage)
	}

	params := &body.ReqParams.AudioParams
	params.Format = req.Format
	params.SampleRate = narrationSampleRate
	if req.Speed > 0 && req.Speed != 1 {
		params.SpeedRatio = req.Speed
	}
	if req.Volume > 0 && req.Volume != 1 {
		params.VolumeRatio = req.Volume
	}
	if emotion := strings.TrimSpace(req.Emotion); emotion != "" {
		params.Emotion = emotion
		params.EmotionScale = req.EmotionScale
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal TTS request: %w", err)
	}
	compressed, err := CompressPayload(data, GzipCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to compress TTS request: %w", err)
	}
	return EncodeMessage(CreateFullClientRequest(compressed, GzipCompression))
}

func narrationFinished(msg *Message) bool {
	if msg.Header.MessageType == FullServerResponse && msg.Header.MessageFlags == WithEvent {
		return msg.EventType == EventTypeSessionFinished
	}
	return msg.IsLastPacket()
}
