// Package suggest calls the hosted model gateway for adaptive-clothing
// recommendations. The gateway is an opaque collaborator speaking the
// chat-completions protocol; this package owns nothing beyond the call.
package suggest

import (
	"context"
	"errors"
	"fmt"

	"github.com/ablewear/ablewear/config"
	"github.com/guonaihong/gout"
	"go.uber.org/zap"
)

const systemPrompt = `You are a fashion advisor specializing in adaptive clothing for specially-abled individuals.
Recommend clothing that considers:
- Easy-wear features (magnetic closures, elastic waistbands, no buttons)
- Wheelchair accessibility
- Limited mobility or dexterity
- Comfort and independence
- Style and confidence

Provide 3-5 specific product recommendations with reasons.`

// ErrServiceUnavailable reports a non-2xx answer from the gateway.
var ErrServiceUnavailable = errors.New("suggestion service unavailable")

// Response is what the storefront returns to the shopper.
type Response struct {
	Suggestions string `json:"suggestions"`
	Image       string `json:"image,omitempty"`
}

// Client produces suggestions for free-text shopper preferences.
type Client interface {
	Suggest(ctx context.Context, preferences string) (*Response, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model      string        `json:"model"`
	Messages   []chatMessage `json:"messages"`
	Modalities []string      `json:"modalities,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Images  []struct {
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
}

// GatewayClient is the live implementation over the configured gateway.
type GatewayClient struct {
	cfg config.SuggestConfig
}

func NewGatewayClient(cfg config.SuggestConfig) *GatewayClient {
	return &GatewayClient{cfg: cfg}
}

// Suggest asks the text model for recommendations and the image model
// for one illustrative render. The image call is best effort; its
// failure degrades the answer to text only.
func (g *GatewayClient) Suggest(ctx context.Context, preferences string) (*Response, error) {
	text, err := g.complete(ctx, chatRequest{
		Model: g.cfg.TextModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("User preferences: %s. Suggest adaptive clothing options.", preferences)},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(text.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty completion", ErrServiceUnavailable)
	}

	resp := &Response{Suggestions: text.Choices[0].Message.Content}

	img, err := g.complete(ctx, chatRequest{
		Model: g.cfg.ImageModel,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: fmt.Sprintf("Generate an image of adaptive clothing for specially-abled individuals "+
					"based on these preferences: %s. Show clothing with magnetic closures, elastic waistbands, "+
					"and easy-wear features. Professional product photography style.", preferences),
			},
		},
		Modalities: []string{"image", "text"},
	})
	if err != nil {
		zap.L().Warn("suggestion image generation failed", zap.Error(err))
		return resp, nil
	}
	if len(img.Choices) > 0 && len(img.Choices[0].Message.Images) > 0 {
		resp.Image = img.Choices[0].Message.Images[0].ImageURL.URL
	}
	return resp, nil
}

func (g *GatewayClient) complete(ctx context.Context, req chatRequest) (*chatResponse, error) {
	var (
		resp chatResponse
		code int
	)
	err := gout.POST(g.cfg.GatewayURL).
		WithContext(ctx).
		SetHeader(gout.H{"Authorization": "Bearer " + g.cfg.ApiKey}).
		SetJSON(req).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrServiceUnavailable, err.Error())
	}
	if code < 200 || code > 299 {
		return nil, fmt.Errorf("%w: gateway status %d", ErrServiceUnavailable, code)
	}
	return &resp, nil
}

// MockClient is a fixed-answer client used in tests and when the
// gateway is disabled in config.
type MockClient struct {
	Resp Response
	Err  error
}

func (m *MockClient) Suggest(ctx context.Context, preferences string) (*Response, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	resp := m.Resp
	if resp.Suggestions == "" {
		resp.Suggestions = "Easy-wear pullover with wide neck opening; seated-fit trousers with elastic waistband."
	}
	return &resp, nil
}
