package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/fahrezy/interview-pilot/internal/config"
	"github.com/fahrezy/interview-pilot/internal/service"
	"github.com/fahrezy/interview-pilot/internal/util"
)

type RoadmapStep struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Topics      []string `json:"topics"`
}

type RoadmapResult struct {
	Role  string        `json:"role"`
	Steps []RoadmapStep `json:"steps"`
}

// RoadmapUsecase generates a career learning roadmap for a target role.
// Results are ephemeral; nothing is persisted.
type RoadmapUsecase struct {
	gemini service.GeminiServiceInterface
}

func NewRoadmapUsecase(gemini service.GeminiServiceInterface) *RoadmapUsecase {
	return &RoadmapUsecase{gemini: gemini}
}

func (uc *RoadmapUsecase) Generate(ctx context.Context, role string) (*RoadmapResult, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, fmt.Errorf("role is required")
	}

	text, err := uc.gemini.GenerateContent(ctx, config.LoadGeminiConfig().RoadmapModel, buildRoadmapPrompt(role))
	if err != nil {
		return nil, fmt.Errorf("generate roadmap: %w", err)
	}

	return parseRoadmap(text)
}

func buildRoadmapPrompt(role string) string {
	return fmt.Sprintf(`
Create a detailed career learning roadmap for the role: "%s".

Return the response ONLY as a VALID JSON object with the following structure:
{
  "role": "%s",
  "steps": [
    {
      "title": "Phase Name (e.g., Fundamentals)",
      "description": "Brief description of this phase",
      "topics": ["Array of specific topics to learn"]
    }
  ]
}

Requirements:
- Provide 5 distinct phases (steps).
- Be specific to the technology and skills required for "%s".
- Do not wrap the JSON in markdown code blocks. Just return raw JSON.
`, role, role, role)
}

func parseRoadmap(text string) (*RoadmapResult, error) {
	clean, err := util.ExtractJSONObject(text)
	if err != nil {
		return nil, fmt.Errorf("roadmap output: %w", err)
	}

	result := &RoadmapResult{Role: gjson.Get(clean, "role").String()}
	for _, step := range gjson.Get(clean, "steps").Array() {
		result.Steps = append(result.Steps, RoadmapStep{
			Title:       step.Get("title").String(),
			Description: step.Get("description").String(),
			Topics:      stringSlice(step.Get("topics")),
		})
	}

	if result.Role == "" || len(result.Steps) == 0 {
		return nil, fmt.Errorf("roadmap output missing role or steps")
	}
	return result, nil
}
