package speech

// TTSResponse 旁白合成结果
type TTSResponse struct {
	AudioData []byte `json:"-"`
	Format    string `json:"format"`
	Voice     string `json:"voice"` // 实际使用的音色，回退后可能与请求不同
	ConnectID string `json:"connectId"`
}
