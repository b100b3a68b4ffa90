package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"personabot/internal/domain"
	"personabot/internal/llm"
)

type memoryPrayerRepo struct {
	prayers  []domain.Prayer
	failNext error
}

func (m *memoryPrayerRepo) Create(_ context.Context, prayer domain.Prayer) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	m.prayers = append(m.prayers, prayer)
	return nil
}

func (m *memoryPrayerRepo) ListBetween(_ context.Context, from, to time.Time) ([]domain.Prayer, error) {
	var out []domain.Prayer
	for _, p := range m.prayers {
		if !p.PostedAt.Before(from) && !p.PostedAt.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestPrayerService(client llm.Client, repo *memoryPrayerRepo) *PrayerService {
	svc := NewPrayerService(zap.NewNop(), client, repo, time.UTC)
	svc.retryDelay = time.Millisecond
	return svc
}

func captureInput() CaptureInput {
	return CaptureInput{
		MessageID: "msg-1",
		UserID:    "user-1",
		Username:  "sam",
		ChannelID: "prayer-wall",
		Content:   "Please pray for my grandmother, she is in the hospital.",
		PostedAt:  time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC),
	}
}

func TestCapture_StoresExtractedPrayer(t *testing.T) {
	repo := &memoryPrayerRepo{}
	client := &llm.MockClient{Responses: []string{"Healing for her grandmother in the hospital."}}
	svc := newTestPrayerService(client, repo)

	prayer, stored, err := svc.Capture(context.Background(), captureInput())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if !stored {
		t.Fatalf("expected prayer to be stored")
	}
	if prayer.ExtractedText != "Healing for her grandmother in the hospital." {
		t.Fatalf("unexpected extracted text: %q", prayer.ExtractedText)
	}
	if len(repo.prayers) != 1 {
		t.Fatalf("expected 1 stored prayer, got %d", len(repo.prayers))
	}
}

func TestCapture_NoPrayerSentinelSkipsStore(t *testing.T) {
	repo := &memoryPrayerRepo{}
	client := &llm.MockClient{Responses: []string{"NO_PRAYER"}}
	svc := newTestPrayerService(client, repo)

	_, stored, err := svc.Capture(context.Background(), captureInput())
	if err != nil || stored {
		t.Fatalf("expected nothing stored, got stored=%v err=%v", stored, err)
	}
	if len(repo.prayers) != 0 {
		t.Fatalf("repo must stay empty")
	}
}

func TestCapture_EmptyMessageSkipsExtraction(t *testing.T) {
	repo := &memoryPrayerRepo{}
	client := &llm.MockClient{Responses: []string{"should not be called"}}
	svc := newTestPrayerService(client, repo)

	in := captureInput()
	in.Content = "   "
	_, stored, err := svc.Capture(context.Background(), in)
	if err != nil || stored {
		t.Fatalf("expected nothing stored, got stored=%v err=%v", stored, err)
	}
	if len(client.Calls) != 0 {
		t.Fatalf("extraction must not run for empty content")
	}
}

func TestCapture_RetriesOnceThenSucceeds(t *testing.T) {
	repo := &memoryPrayerRepo{}
	client := &llm.MockClient{
		Responses: []string{"", "Peace for an upcoming exam."},
		Errs:      []error{errors.New("transient"), nil},
	}
	svc := newTestPrayerService(client, repo)

	_, stored, err := svc.Capture(context.Background(), captureInput())
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if !stored {
		t.Fatalf("expected store after retry")
	}
	if len(client.Calls) != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", len(client.Calls))
	}
}

func TestCapture_GivesUpAfterOneRetry(t *testing.T) {
	repo := &memoryPrayerRepo{}
	client := &llm.MockClient{Errs: []error{errors.New("still down")}}
	svc := newTestPrayerService(client, repo)

	_, stored, err := svc.Capture(context.Background(), captureInput())
	if err != nil || stored {
		t.Fatalf("extraction failure must resolve to nothing stored, got stored=%v err=%v", stored, err)
	}
	if len(client.Calls) != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", len(client.Calls))
	}
}

func TestCapture_DisabledClientNotRetried(t *testing.T) {
	repo := &memoryPrayerRepo{}
	svc := newTestPrayerService(llm.NewDisabledClient("no api key"), repo)

	_, stored, err := svc.Capture(context.Background(), captureInput())
	if err != nil || stored {
		t.Fatalf("disabled client must resolve to nothing stored, got stored=%v err=%v", stored, err)
	}
}

func TestCapture_SaveFailureSurfaces(t *testing.T) {
	repo := &memoryPrayerRepo{failNext: errors.New("db down")}
	client := &llm.MockClient{Responses: []string{"A new job."}}
	svc := newTestPrayerService(client, repo)

	_, stored, err := svc.Capture(context.Background(), captureInput())
	if err == nil || stored {
		t.Fatalf("expected save failure to surface, got stored=%v err=%v", stored, err)
	}
}

func TestWeekWindow(t *testing.T) {
	svc := newTestPrayerService(&llm.MockClient{}, &memoryPrayerRepo{})

	cases := []struct {
		name       string
		in         time.Time
		wantMonday time.Time
	}{
		{
			"wednesday mid-week",
			time.Date(2024, 3, 6, 15, 30, 0, 0, time.UTC),
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			"monday midnight is its own week",
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday belongs to the preceding monday",
			time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC),
			time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			from, to := svc.WeekWindow(tc.in)
			if !from.Equal(tc.wantMonday) {
				t.Fatalf("monday: got %v, want %v", from, tc.wantMonday)
			}
			wantEnd := tc.wantMonday.AddDate(0, 0, 7).Add(-time.Nanosecond)
			if !to.Equal(wantEnd) {
				t.Fatalf("sunday end: got %v, want %v", to, wantEnd)
			}
			if !from.Before(tc.in.Add(time.Nanosecond)) || to.Before(tc.in) {
				t.Fatalf("window [%v, %v] must contain %v", from, to, tc.in)
			}
		})
	}
}

func TestWeekWindow_ConfiguredZone(t *testing.T) {
	zone := time.FixedZone("UTC+10", 10*60*60)
	svc := NewPrayerService(zap.NewNop(), &llm.MockClient{}, &memoryPrayerRepo{}, zone)

	// Sunday 20:00 UTC is already Monday 06:00 in UTC+10.
	in := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	from, _ := svc.WeekWindow(in)
	if from.In(zone).Day() != 11 {
		t.Fatalf("expected week starting Monday the 11th in UTC+10, got %v", from.In(zone))
	}
}

func TestCurrentWeek_FiltersByWindow(t *testing.T) {
	repo := &memoryPrayerRepo{prayers: []domain.Prayer{
		{ID: "in", PostedAt: time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)},
		{ID: "out", PostedAt: time.Date(2024, 2, 27, 12, 0, 0, 0, time.UTC)},
	}}
	svc := newTestPrayerService(&llm.MockClient{}, repo)
	svc.now = func() time.Time { return time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC) }

	prayers, from, to, err := svc.CurrentWeek(context.Background())
	if err != nil {
		t.Fatalf("CurrentWeek: %v", err)
	}
	if len(prayers) != 1 || prayers[0].ID != "in" {
		t.Fatalf("expected only the in-window prayer, got %+v", prayers)
	}
	if from.Weekday() != time.Monday || to.Weekday() != time.Sunday {
		t.Fatalf("window must run Monday to Sunday, got %v to %v", from.Weekday(), to.Weekday())
	}
}
