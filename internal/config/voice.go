package config

import (
	"os"
	"sync"
)

type VoiceConfig struct {
	APIKey      string
	AssistantID string
	BaseURL     string
}

var (
	voiceConfig *VoiceConfig
	voiceOnce   sync.Once
)

func LoadVoiceConfig() *VoiceConfig {
	voiceOnce.Do(func() {
		baseURL := os.Getenv("VAPI_BASE_URL")
		if baseURL == "" {
			baseURL = "https://api.vapi.ai"
		}
		voiceConfig = &VoiceConfig{
			APIKey:      os.Getenv("VAPI_API_KEY"),
			AssistantID: os.Getenv("VAPI_ASSISTANT_ID"),
			BaseURL:     baseURL,
		}
	})
	return voiceConfig
}
