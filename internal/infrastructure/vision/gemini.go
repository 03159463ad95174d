package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/framecart/backend/internal/domain"
)

const defaultModel = "gemini-2.5-flash"

var framePrompt = dedent.Dedent(`
	Analyze this image and identify all fashion and accessory items. For each item detected, return a JSON object with the following structure:

	{
	    "products": [
	        {
	            "type": "sneaker|hoodie|bag|shirt|pants|dress|jacket|hat|watch|sunglasses|jewelry|other",
	            "color": "primary color description",
	            "pattern": "solid|striped|polka_dot|plaid|floral|geometric|animal_print|tie_dye|other|none",
	            "material": "cotton|leather|denim|silk|wool|synthetic|metal|fabric|other",
	            "brand_text": "any visible brand text, logos, or distinctive markings",
	            "description": "detailed description of the item including style, fit, and notable features",
	            "confidence": 0.0-1.0,
	            "position": "description of where the item is located in the image"
	        }
	    ]
	}

	Only include items you can clearly see and identify. Be specific with colors and descriptions. If no fashion items are visible, return an empty products array.
	Respond ONLY with valid JSON, no additional text.`)

// GeminiAnalyzer detects fashion items in a frame using Gemini vision.
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewGeminiAnalyzer creates an analyzer authenticated with the given API key.
func NewGeminiAnalyzer(ctx context.Context, apiKey, model string, log zerolog.Logger) (*GeminiAnalyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = defaultModel
	}
	return &GeminiAnalyzer{client: client, model: model, log: log}, nil
}

// AnalyzeFrame runs the detection prompt against one frame image. The
// caller treats an error as non-fatal for the batch and records it inline.
func (g *GeminiAnalyzer) AnalyzeFrame(ctx context.Context, image []byte) ([]domain.RawDetection, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(framePrompt),
		{InlineData: &genai.Blob{Data: image, MIMEType: "image/jpeg"}},
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini")
	}

	detections, err := parseDetections(result.Text())
	if err != nil {
		return nil, err
	}

	g.log.Debug().Str("model", g.model).Int("products", len(detections)).Msg("frame analyzed")
	return detections, nil
}

// parseDetections decodes the model response, tolerating markdown fences
// and stray text around the JSON object.
func parseDetections(text string) ([]domain.RawDetection, error) {
	jsonStr, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Products []domain.RawDetection `json:"products"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse response JSON: %w", err)
	}
	return payload.Products, nil
}

// extractJSONObject extracts a JSON object from text that may contain
// markdown code blocks or other formatting.
func extractJSONObject(text string) (string, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return text[start : end+1], nil
}
