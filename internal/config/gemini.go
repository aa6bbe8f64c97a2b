package config

import (
	"os"
	"sync"
)

type GeminiConfig struct {
	APIKey        string
	FeedbackModel string
	RoadmapModel  string
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		feedbackModel := os.Getenv("GEMINI_FEEDBACK_MODEL")
		if feedbackModel == "" {
			feedbackModel = "gemini-2.5-flash"
		}
		roadmapModel := os.Getenv("GEMINI_ROADMAP_MODEL")
		if roadmapModel == "" {
			roadmapModel = "gemini-2.5-flash"
		}
		geminiConfig = &GeminiConfig{
			APIKey:        os.Getenv("GEMINI_API_KEY"),
			FeedbackModel: feedbackModel,
			RoadmapModel:  roadmapModel,
		}
	})
	return geminiConfig
}
