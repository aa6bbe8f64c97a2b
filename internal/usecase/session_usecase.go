package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"gorm.io/gorm"

	"github.com/fahrezy/interview-pilot/internal/config"
	"github.com/fahrezy/interview-pilot/internal/model"
	"github.com/fahrezy/interview-pilot/internal/service"
	"github.com/fahrezy/interview-pilot/internal/util"
)

var (
	ErrInterviewNotFound   = errors.New("interview not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrCallAlreadyActive   = errors.New("a call is already active for this user")
	ErrNoActiveCall        = errors.New("no active call for this session")
	ErrSessionNotCompleted = errors.New("session has no completed transcript yet")
	ErrVoiceStart          = errors.New("failed to start AI interviewer")
	ErrFeedbackGeneration  = errors.New("unable to generate feedback")
)

const transcriptCharBudget = 5000

type SessionStore interface {
	UpsertStart(tx *gorm.DB, session *model.InterviewSession) error
	FindSession(userID, interviewID string) (*model.InterviewSession, error)
	GetSessionsForUser(userID string) ([]model.InterviewSession, error)
	Complete(userID, interviewID string, endedAt time.Time, transcript []model.TranscriptEntry) error
	SaveFeedback(userID, interviewID string, fb *model.InterviewSession) (bool, error)
}

type CatalogStore interface {
	FindInterviewByID(id string) (*model.Interview, error)
	IncrementUsage(tx *gorm.DB, id string) error
	Transaction(fn func(tx *gorm.DB) error) error
}

// FeedbackResult is the generator's output, held by the client until the user
// confirms saving it to the session record.
type FeedbackResult struct {
	Score        int      `json:"score"`
	Feedback     string   `json:"feedback"`
	GoodParts    []string `json:"good_parts"`
	Improvements []string `json:"improvements"`
	Motivation   string   `json:"motivation"`
}

// SessionUsecase drives one interview attempt from start through saved
// feedback: voice call lifecycle, transcript capture, scoring, persistence.
type SessionUsecase struct {
	sessions SessionStore
	catalog  CatalogStore
	voice    service.VoiceServiceInterface
	gemini   service.GeminiServiceInterface

	mu     sync.Mutex
	active map[string]*activeCall // keyed by user ID, one call per user
}

// activeCall owns the in-memory transcript buffer for one running call. The
// buffer is durable only once the completion write succeeds.
type activeCall struct {
	userID      string
	interviewID string
	call        service.VoiceCall
	unsubscribe func()

	mu         sync.Mutex
	transcript []model.TranscriptEntry
}

func (a *activeCall) append(entry model.TranscriptEntry) {
	a.mu.Lock()
	a.transcript = append(a.transcript, entry)
	a.mu.Unlock()
}

func (a *activeCall) snapshot() []model.TranscriptEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.TranscriptEntry, len(a.transcript))
	copy(out, a.transcript)
	return out
}

func NewSessionUsecase(sessions SessionStore, catalog CatalogStore, voice service.VoiceServiceInterface, gemini service.GeminiServiceInterface) *SessionUsecase {
	return &SessionUsecase{
		sessions: sessions,
		catalog:  catalog,
		voice:    voice,
		gemini:   gemini,
		active:   make(map[string]*activeCall),
	}
}

// StartSession begins (or restarts) the user's attempt at an interview pack.
// The usage-counter bump and the session upsert commit in one transaction;
// the voice call is opened afterwards, so a voice failure leaves a "started"
// row behind and the caller may simply retry.
func (uc *SessionUsecase) StartSession(ctx context.Context, userID, interviewID string) (*model.InterviewSession, error) {
	interview, err := uc.catalog.FindInterviewByID(interviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInterviewNotFound
		}
		return nil, fmt.Errorf("load interview: %w", err)
	}

	// Reserve the user's single call slot up front so two concurrent
	// starts can't both open a call.
	uc.mu.Lock()
	if _, busy := uc.active[userID]; busy {
		uc.mu.Unlock()
		return nil, ErrCallAlreadyActive
	}
	placeholder := &activeCall{userID: userID, interviewID: interviewID}
	uc.active[userID] = placeholder
	uc.mu.Unlock()

	session := &model.InterviewSession{
		UserID:      userID,
		InterviewID: interview.ID,
		Attempts:    1,
		Status:      model.SessionStatusStarted,
		Title:       interview.Title,
		Category:    interview.Category,
		Difficulty:  interview.Difficulty,
		StartedAt:   time.Now().UTC(),
	}

	err = uc.catalog.Transaction(func(tx *gorm.DB) error {
		if err := uc.catalog.IncrementUsage(tx, interviewID); err != nil {
			return fmt.Errorf("increment usage: %w", err)
		}
		if err := uc.sessions.UpsertStart(tx, session); err != nil {
			return fmt.Errorf("upsert session: %w", err)
		}
		return nil
	})
	if err != nil {
		uc.releaseCall(userID, placeholder)
		return nil, err
	}

	call := uc.voice.NewCall()
	ac := placeholder
	ac.call = call
	ac.unsubscribe = call.Subscribe(func(ev service.VoiceEvent) {
		uc.handleVoiceEvent(ac, ev)
	})

	vars := service.AssistantVariables{
		JobRole:     interview.Title,
		Description: interview.Description,
		Difficulty:  interview.Difficulty,
		TechStack:   strings.Join(interview.Syllabus, ", "),
	}
	if err := call.Start(ctx, vars); err != nil {
		ac.unsubscribe()
		call.Stop()
		uc.releaseCall(userID, ac)
		// Counter stays bumped: it counts attempts, not completions.
		return nil, fmt.Errorf("%w: %v", ErrVoiceStart, err)
	}

	stored, err := uc.sessions.FindSession(userID, interviewID)
	if err != nil {
		return session, nil
	}
	return stored, nil
}

// handleVoiceEvent appends final transcript chunks to the call's buffer.
// Partial chunks are dropped; nothing here blocks or touches storage.
func (uc *SessionUsecase) handleVoiceEvent(ac *activeCall, ev service.VoiceEvent) {
	switch ev.Type {
	case service.VoiceEventTranscript:
		if ev.Final && ev.Text != "" {
			ac.append(model.TranscriptEntry{Role: ev.Role, Content: ev.Text})
		}
	case service.VoiceEventCallEnd:
		go uc.finishProviderEndedCall(ac)
	case service.VoiceEventError:
		log.Printf("voice call error (interview %s): %v", ac.interviewID, ev.Err)
	}
}

// EndSession stops the voice call and makes the transcript durable. The
// user's call slot is released only after the completion write succeeds, so
// a transient store failure keeps the buffer and the client can retry.
func (uc *SessionUsecase) EndSession(ctx context.Context, userID, interviewID string) (*model.InterviewSession, error) {
	uc.mu.Lock()
	ac, ok := uc.active[userID]
	if !ok || ac.interviewID != interviewID || ac.call == nil {
		uc.mu.Unlock()
		return nil, ErrNoActiveCall
	}
	uc.mu.Unlock()

	ac.call.Stop()

	transcript := ac.snapshot()
	if err := uc.sessions.Complete(userID, interviewID, time.Now().UTC(), transcript); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("complete session: %w", err)
		}
		// The guarded update matched no "started" row: either the provider
		// hangup path already completed it, or the row is gone.
		session, findErr := uc.sessions.FindSession(userID, interviewID)
		if findErr != nil || session.Status != model.SessionStatusCompleted {
			ac.unsubscribe()
			uc.releaseCall(userID, ac)
			return nil, ErrSessionNotFound
		}
		ac.unsubscribe()
		uc.releaseCall(userID, ac)
		return session, nil
	}

	ac.unsubscribe()
	uc.releaseCall(userID, ac)

	session, err := uc.sessions.FindSession(userID, interviewID)
	if err != nil {
		return nil, fmt.Errorf("reload session: %w", err)
	}
	return session, nil
}

// finishProviderEndedCall persists the transcript when the provider hangs up
// on its own, e.g. the assistant concluded the interview. The slot is
// released so the user can start the next interview without an explicit end
// request. On a store failure the slot stays held and an explicit end
// retries the write.
func (uc *SessionUsecase) finishProviderEndedCall(ac *activeCall) {
	uc.mu.Lock()
	current := uc.active[ac.userID] == ac
	uc.mu.Unlock()
	if !current {
		return
	}

	ac.call.Stop()

	transcript := ac.snapshot()
	err := uc.sessions.Complete(ac.userID, ac.interviewID, time.Now().UTC(), transcript)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("session %s/%s: persist on provider call-end failed: %v", ac.userID, ac.interviewID, err)
		return
	}

	ac.unsubscribe()
	uc.releaseCall(ac.userID, ac)
}

func (uc *SessionUsecase) releaseCall(userID string, ac *activeCall) {
	uc.mu.Lock()
	if uc.active[userID] == ac {
		delete(uc.active, userID)
	}
	uc.mu.Unlock()
}

// GenerateFeedback returns scoring for a completed session. When feedback
// was already saved, the stored values come back untouched and the generator
// is never invoked again, so revisiting a result page costs nothing.
func (uc *SessionUsecase) GenerateFeedback(ctx context.Context, userID, interviewID string) (*FeedbackResult, bool, error) {
	session, err := uc.sessions.FindSession(userID, interviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrSessionNotFound
		}
		return nil, false, fmt.Errorf("load session: %w", err)
	}

	if session.HasFeedback() {
		return &FeedbackResult{
			Score:        *session.Score,
			Feedback:     session.Feedback,
			GoodParts:    session.GoodParts,
			Improvements: session.Improvements,
			Motivation:   session.Motivation,
		}, true, nil
	}

	if session.Status != model.SessionStatusCompleted || session.Transcript == nil {
		return nil, false, ErrSessionNotCompleted
	}

	// Syllabus topics sharpen the prompt when the pack still exists; a
	// deleted pack just means a plainer prompt.
	var syllabus []string
	if interview, err := uc.catalog.FindInterviewByID(interviewID); err == nil {
		syllabus = interview.Syllabus
	}

	prompt := buildFeedbackPrompt(session.Title, session.Transcript, syllabus)
	text, err := uc.gemini.GenerateContent(ctx, config.LoadGeminiConfig().FeedbackModel, prompt)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrFeedbackGeneration, err)
	}

	result, err := parseFeedback(text)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrFeedbackGeneration, err)
	}
	return result, false, nil
}

// SaveFeedback commits a previewed result to the session record. A session
// that already carries feedback is left untouched and reported as saved.
func (uc *SessionUsecase) SaveFeedback(ctx context.Context, userID, interviewID string, result *FeedbackResult) error {
	if err := validateFeedback(result); err != nil {
		return err
	}

	session, err := uc.sessions.FindSession(userID, interviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("load session: %w", err)
	}
	if session.HasFeedback() {
		return nil
	}

	now := time.Now().UTC()
	score := result.Score
	_, err = uc.sessions.SaveFeedback(userID, interviewID, &model.InterviewSession{
		Score:           &score,
		Feedback:        result.Feedback,
		GoodParts:       result.GoodParts,
		Improvements:    result.Improvements,
		Motivation:      result.Motivation,
		FeedbackSavedAt: &now,
	})
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

func (uc *SessionUsecase) GetSession(userID, interviewID string) (*model.InterviewSession, error) {
	session, err := uc.sessions.FindSession(userID, interviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (uc *SessionUsecase) ListSessions(userID string) ([]model.InterviewSession, error) {
	return uc.sessions.GetSessionsForUser(userID)
}

// SetMuted toggles the microphone on the user's active call.
func (uc *SessionUsecase) SetMuted(userID string, muted bool) error {
	uc.mu.Lock()
	ac, ok := uc.active[userID]
	uc.mu.Unlock()
	if !ok {
		return ErrNoActiveCall
	}
	ac.call.SetMuted(muted)
	return nil
}

func buildFeedbackPrompt(jobRole string, transcript []model.TranscriptEntry, syllabus []string) string {
	var b strings.Builder
	for _, entry := range transcript {
		b.WriteString(entry.Role)
		b.WriteString(": ")
		b.WriteString(entry.Content)
		b.WriteString("\n")
	}
	transcriptText := b.String()
	if len(transcriptText) > transcriptCharBudget {
		transcriptText = transcriptText[:transcriptCharBudget]
	}

	syllabusLine := ""
	if len(syllabus) > 0 {
		syllabusLine = fmt.Sprintf("\nThe interview syllabus was: %s.\n", strings.Join(syllabus, ", "))
	}

	return fmt.Sprintf(`
Analyze the following interview transcript for the role of "%s".
%s
Transcript:
"%s"
(Note: Transcript might be truncated if too long)

Your Task:
1. Rate the candidate's performance on a scale of 1-100.
2. Provide a brief 2-3 sentence overall feedback summary.
3. List 2-4 things the candidate did well.
4. List 3-5 specific actionable improvements based on their answers.
5. Write one short motivational sentence for the candidate.

Return the response ONLY as a VALID JSON object with this structure:
{
  "score": 85,
  "feedback": "...",
  "good_parts": ["...", "..."],
  "improvements": ["...", "...", "..."],
  "motivation": "..."
}

Do not include markdown formatting.
`, jobRole, syllabusLine, transcriptText)
}

// parseFeedback turns raw model output into a complete FeedbackResult, or
// fails. A half-parsed object never becomes a score of zero.
func parseFeedback(text string) (*FeedbackResult, error) {
	clean, err := util.ExtractJSONObject(text)
	if err != nil {
		return nil, err
	}

	scoreField := gjson.Get(clean, "score")
	if !scoreField.Exists() {
		return nil, fmt.Errorf("model output missing score")
	}

	result := &FeedbackResult{
		Score:        int(scoreField.Int()),
		Feedback:     gjson.Get(clean, "feedback").String(),
		GoodParts:    stringSlice(gjson.Get(clean, "good_parts")),
		Improvements: stringSlice(gjson.Get(clean, "improvements")),
		Motivation:   gjson.Get(clean, "motivation").String(),
	}
	if err := validateFeedback(result); err != nil {
		return nil, err
	}
	return result, nil
}

func validateFeedback(result *FeedbackResult) error {
	if result == nil {
		return fmt.Errorf("feedback result is nil")
	}
	if result.Score < 0 || result.Score > 100 {
		return fmt.Errorf("score %d out of range 0-100", result.Score)
	}
	if strings.TrimSpace(result.Feedback) == "" {
		return fmt.Errorf("feedback summary is empty")
	}
	if len(result.Improvements) == 0 {
		return fmt.Errorf("improvements list is empty")
	}
	return nil
}

func stringSlice(value gjson.Result) []string {
	if !value.IsArray() {
		return nil
	}
	items := value.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}
