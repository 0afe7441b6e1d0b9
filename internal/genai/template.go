package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/savo-robotics/savocore/internal/models"
)

// TemplateProvider is the tier-3 fallback: fixed short sentences keyed on
// the classified intent. It is fully offline and must never fail, because
// it is the reply of last resort.
type TemplateProvider struct{}

// NewTemplateProvider creates the template fallback provider.
func NewTemplateProvider() *TemplateProvider { return &TemplateProvider{} }

// Name identifies the template tier.
func (p *TemplateProvider) Name() string { return "templates" }

// Generate returns the deterministic reply for the request's intent.
func (p *TemplateProvider) Generate(_ context.Context, req Request) Outcome {
	switch req.Intent {
	case models.IntentStop:
		return Ok("Okay, I stop here and wait.")
	case models.IntentFollow:
		return Ok("Okay, I follow you. Please walk in front of me slowly.")
	case models.IntentNavigate:
		if req.NavGoal != "" {
			return Ok(fmt.Sprintf("Okay, I will guide you to %s. Please follow me.", req.NavGoal))
		}
		return Ok("I can guide you in the building. Please tell me the room or place name.")
	case models.IntentStatus:
		return Ok("I am Robot Savo, a guide robot. Right now I am just waiting here and ready to help.")
	}

	if text := strings.TrimSpace(req.UserText); text != "" {
		return Ok(fmt.Sprintf("You said: %s. I am Robot Savo, how can I help you more?", text))
	}
	return Ok("Hello, I am Robot Savo. How can I help you?")
}
