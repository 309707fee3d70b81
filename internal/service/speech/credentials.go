package speech

import (
	"errors"
	"strings"

	"github.com/zhouzirui/z-dungeon/backend/internal/config"
)

// ErrMissingCredentials 语音配置缺少 AppID 或 AccessToken
var ErrMissingCredentials = errors.New("speech credentials missing: SPEECH_APP_ID and SPEECH_ACCESS_TOKEN are required")

// resolveCredentials 返回规范化后的 AppID 与 AccessToken。
func resolveCredentials(cfg config.SpeechConfig) (string, string, error) {
	appID := strings.TrimSpace(cfg.AppID)
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		token = strings.TrimSpace(cfg.APIKey)
	}

	if appID == "" || token == "" {
		return "", "", ErrMissingCredentials
	}

	return appID, token, nil
}
