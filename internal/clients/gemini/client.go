// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/bobmcallan/navfolio/internal/common"
	"github.com/bobmcallan/navfolio/internal/interfaces"
	"github.com/bobmcallan/navfolio/internal/models"
)

const DefaultModel = "gemini-2.0-flash"

// Client implements the CommentaryClient interface
type Client struct {
	client *genai.Client
	model  string
	logger *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client: genaiClient,
		model:  DefaultModel,
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// GenerateContent generates AI content from a prompt
func (c *Client) GenerateContent(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Msg("Generating content")

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(result)
}

// RiskCommentary writes a short plain-language summary of a risk report
func (c *Client) RiskCommentary(ctx context.Context, report *models.RiskReport) (string, error) {
	return c.GenerateContent(ctx, buildRiskPrompt(report))
}

// extractTextFromResponse extracts text from a generate content response
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}

	return strings.TrimSpace(sb.String()), nil
}

func buildRiskPrompt(report *models.RiskReport) string {
	var sb strings.Builder

	sb.WriteString("You are reviewing an Indian mutual fund portfolio. ")
	sb.WriteString("Write at most four sentences for a retail investor explaining its risk profile. ")
	sb.WriteString("Do not recommend specific schemes.\n\n")

	fmt.Fprintf(&sb, "Risk level: %s\n", report.RiskLevel)
	fmt.Fprintf(&sb, "Annualized volatility: %.2f%%\n", report.Volatility.Value)
	for _, f := range report.Volatility.FundVolatilities {
		fmt.Fprintf(&sb, "- %s: %.2f%%\n", f.Name, f.Volatility)
	}

	div := report.Diversification
	fmt.Fprintf(&sb, "\nSector allocation (top: %s %.2f%%):\n",
		div.SectorConcentration.TopSector.Name, div.SectorConcentration.TopSector.Percentage)
	for _, s := range div.SectorConcentration.Sectors {
		fmt.Fprintf(&sb, "- %s: %.2f%%\n", s.Name, s.Percentage)
	}
	fmt.Fprintf(&sb, "\nAsset class allocation (top: %s %.2f%%):\n",
		div.AssetClassConcentration.TopClass.Name, div.AssetClassConcentration.TopClass.Percentage)
	for _, a := range div.AssetClassConcentration.Classes {
		fmt.Fprintf(&sb, "- %s: %.2f%%\n", a.Name, a.Percentage)
	}

	if len(report.Recommendations) > 0 {
		sb.WriteString("\nRule-based recommendations already shown to the investor:\n")
		for _, r := range report.Recommendations {
			fmt.Fprintf(&sb, "- %s\n", r)
		}
	}

	return sb.String()
}

// Ensure Client implements CommentaryClient
var _ interfaces.CommentaryClient = (*Client)(nil)
