package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"personabot/internal/llm"
)

// EngagementMessage is the weekly reminder pair: a nudge for the mentor
// channel and a template the mentor can forward to mentees.
type EngagementMessage struct {
	MentorReminder string `json:"mentor_reminder"`
	MenteeTemplate string `json:"mentee_template"`
	Theme          string `json:"theme"`
	Generated      bool   `json:"generated"`
}

var engagementThemes = []string{
	"meme/internet culture",
	"sports/competition",
	"music/arts",
	"gaming/tech",
	"real talk/deep thoughts",
	"goals/ambitions",
	"funny/lighthearted",
	"challenges/support",
}

// EngagementService produces varied mentor engagement prompts through the
// LLM, falling back to a static pool when generation fails.
type EngagementService struct {
	logger *zap.Logger
	client llm.Client
	pickFn func(n int) int
	dateFn func() time.Time
}

func NewEngagementService(logger *zap.Logger, client llm.Client) *EngagementService {
	return &EngagementService{
		logger: logger,
		client: client,
		pickFn: rand.Intn,
		dateFn: func() time.Time { return time.Now().UTC() },
	}
}

// GenerateMessage asks the LLM for a themed reminder pair. Any failure
// (call error, unparseable payload, missing fields) resolves to a
// fallback message, never an error.
func (s *EngagementService) GenerateMessage(ctx context.Context) EngagementMessage {
	theme := engagementThemes[s.pickFn(len(engagementThemes))]

	prompt := fmt.Sprintf(`Theme: %s

You're creating an engagement prompt for mentors to use with their mentee groups.
Be creative and varied; each message should be unique.

Output as JSON with exactly these fields:
{"mentor_reminder": "[gentle nudge for mentors, 150-200 chars]",
 "mentee_template": "[engaging prompt for mentees, 250-400 chars]"}

Date context: %s`, theme, s.dateFn().Format("January 02, 2006"))

	raw, err := s.client.Generate(ctx, prompt, llm.Options{Temperature: 0.9, MaxTokens: 500})
	if err != nil {
		s.logger.Warn("engagement generation failed, using fallback", zap.Error(err))
		return s.fallback()
	}

	payload := extractFirstJSONObject(stripCodeFences(raw))
	if payload == "" {
		s.logger.Warn("engagement response had no JSON object", zap.String("raw", raw))
		return s.fallback()
	}

	var msg EngagementMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		s.logger.Warn("engagement response unparseable", zap.Error(err))
		return s.fallback()
	}
	if strings.TrimSpace(msg.MentorReminder) == "" || strings.TrimSpace(msg.MenteeTemplate) == "" {
		s.logger.Warn("engagement response missing fields", zap.String("payload", payload))
		return s.fallback()
	}

	msg.Theme = theme
	msg.Generated = true
	return msg
}

var engagementFallbacks = []EngagementMessage{
	{
		MentorReminder: "Time for a vibe check with your groups! Here's a fun prompt if you need inspiration.",
		MenteeTemplate: "You can only keep 3 apps on your phone for a month. Which ones and why? Wrong answers accepted too.",
	},
	{
		MentorReminder: "Quick nudge to engage your squads! Try this creative prompt or make your own.",
		MenteeTemplate: "Hot take thread! Drop your most controversial (but harmless) opinion. Pineapple on pizza is elite.",
	},
	{
		MentorReminder: "Channel check-in time! Here's a discussion starter, or freestyle it.",
		MenteeTemplate: "If your current mood was a song, what would it be? Bonus points if you share the actual track.",
	},
	{
		MentorReminder: "Touch base with your crews when you can! Fun conversation idea attached.",
		MenteeTemplate: "Would you rather sing everything you say for a day, or only communicate through interpretive dance?",
	},
	{
		MentorReminder: "Weekly group engagement reminder! Spice things up with this prompt.",
		MenteeTemplate: "Rate your week using only emojis (max 5). Then guess what happened from someone else's emoji story.",
	},
	{
		MentorReminder: "Check in with your mentees! Here's a creative starter.",
		MenteeTemplate: "You're making a time capsule to open in 5 years. What 3 things go in, and what's your message for future you?",
	},
}

func (s *EngagementService) fallback() EngagementMessage {
	msg := engagementFallbacks[s.pickFn(len(engagementFallbacks))]
	msg.Theme = "fallback"
	return msg
}
