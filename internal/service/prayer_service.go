package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"personabot/internal/domain"
	"personabot/internal/llm"
	"personabot/internal/repository"
)

const prayerExtractionPrompt = `Extract the core prayer request from this message.
Return only the prayer need in one concise sentence.
If no prayer request exists, return 'NO_PRAYER'.

Message: %s`

const noPrayerSentinel = "NO_PRAYER"

// PrayerService captures prayer requests from raw chat messages and serves
// the weekly digest. Extraction goes through the LLM with at most one
// retry; a message with nothing to extract is silently dropped.
type PrayerService struct {
	logger     *zap.Logger
	client     llm.Client
	prayers    repository.PrayerRepository
	location   *time.Location
	retryDelay time.Duration
	now        func() time.Time
}

func NewPrayerService(logger *zap.Logger, client llm.Client, prayers repository.PrayerRepository, location *time.Location) *PrayerService {
	if location == nil {
		location = time.UTC
	}
	return &PrayerService{
		logger:     logger,
		client:     client,
		prayers:    prayers,
		location:   location,
		retryDelay: 2 * time.Second,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CaptureInput is one raw message from the prayer-wall channel.
type CaptureInput struct {
	MessageID string
	UserID    string
	Username  string
	ChannelID string
	Content   string
	PostedAt  time.Time
}

// Capture extracts the prayer from the message and stores it. The bool
// reports whether anything was stored; extraction failures and
// no-prayer messages both resolve to (false, nil).
func (s *PrayerService) Capture(ctx context.Context, input CaptureInput) (domain.Prayer, bool, error) {
	if strings.TrimSpace(input.Content) == "" {
		return domain.Prayer{}, false, nil
	}

	extracted, ok := s.extract(ctx, input.Content)
	if !ok {
		return domain.Prayer{}, false, nil
	}

	prayer := domain.Prayer{
		ID:            uuid.NewString(),
		MessageID:     input.MessageID,
		UserID:        input.UserID,
		Username:      input.Username,
		ChannelID:     input.ChannelID,
		RawMessage:    input.Content,
		ExtractedText: extracted,
		PostedAt:      input.PostedAt,
		CreatedAt:     s.now(),
	}
	if err := s.prayers.Create(ctx, prayer); err != nil {
		return domain.Prayer{}, false, fmt.Errorf("save prayer for message %s: %w", input.MessageID, err)
	}

	s.logger.Info("prayer captured",
		zap.String("message_id", input.MessageID),
		zap.String("user_id", input.UserID),
	)
	return prayer, true, nil
}

// extract asks the LLM for the core prayer sentence. One retry on
// transient failure; a disabled client or cancelled context is not
// retried.
func (s *PrayerService) extract(ctx context.Context, content string) (string, bool) {
	prompt := fmt.Sprintf(prayerExtractionPrompt, content)

	for attempt := 0; attempt < 2; attempt++ {
		response, err := s.client.Generate(ctx, prompt, llm.Options{Temperature: 0.3, MaxTokens: 100})
		if err == nil {
			response = strings.TrimSpace(response)
			if response == "" || strings.EqualFold(response, noPrayerSentinel) {
				return "", false
			}
			return response, true
		}

		if errors.Is(err, llm.ErrDisabled) || ctx.Err() != nil {
			s.logger.Warn("prayer extraction unavailable", zap.Error(err))
			return "", false
		}

		s.logger.Warn("prayer extraction attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if attempt == 0 {
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				return "", false
			}
		}
	}

	s.logger.Error("prayer extraction failed after retry")
	return "", false
}

// WeekWindow returns the Monday 00:00:00 to Sunday 23:59:59.999999999
// bounds of the week containing t, in the service's time zone.
func (s *PrayerService) WeekWindow(t time.Time) (time.Time, time.Time) {
	local := t.In(s.location)

	daysSinceMonday := (int(local.Weekday()) + 6) % 7
	monday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location).
		AddDate(0, 0, -daysSinceMonday)
	sundayEnd := monday.AddDate(0, 0, 7).Add(-time.Nanosecond)

	return monday, sundayEnd
}

// CurrentWeek lists the prayers posted in the current week, oldest first.
func (s *PrayerService) CurrentWeek(ctx context.Context) ([]domain.Prayer, time.Time, time.Time, error) {
	from, to := s.WeekWindow(s.now())
	prayers, err := s.prayers.ListBetween(ctx, from, to)
	if err != nil {
		return nil, from, to, fmt.Errorf("list prayers: %w", err)
	}
	return prayers, from, to, nil
}
