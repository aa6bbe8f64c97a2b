package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fahrezy/interview-pilot/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db}
}

// UpsertStart inserts the session row on first start, or atomically resets an
// existing one (attempts+1, status back to "started", fresh snapshot, cleared
// transcript and feedback). One conditional write, no read-then-branch race.
func (r *SessionRepository) UpsertStart(tx *gorm.DB, session *model.InterviewSession) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "interview_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"attempts":          gorm.Expr("interview_sessions.attempts + 1"),
			"status":            model.SessionStatusStarted,
			"title":             session.Title,
			"category":          session.Category,
			"difficulty":        session.Difficulty,
			"started_at":        session.StartedAt,
			"ended_at":          nil,
			"transcript":        nil,
			"score":             nil,
			"feedback":          "",
			"good_parts":        nil,
			"improvements":      nil,
			"motivation":        "",
			"feedback_saved_at": nil,
			"updated_at":        time.Now(),
		}),
	}).Create(session).Error
}

func (r *SessionRepository) FindSession(userID, interviewID string) (*model.InterviewSession, error) {
	var session model.InterviewSession
	err := r.db.First(&session, "user_id = ? AND interview_id = ?", userID, interviewID).Error
	return &session, err
}

func (r *SessionRepository) GetSessionsForUser(userID string) ([]model.InterviewSession, error) {
	var sessions []model.InterviewSession
	err := r.db.Where("user_id = ?", userID).Order("started_at DESC").Find(&sessions).Error
	return sessions, err
}

// Complete transitions the session to "completed" and writes the transcript
// in the same update. Only a "started" session may complete.
func (r *SessionRepository) Complete(userID, interviewID string, endedAt time.Time, transcript []model.TranscriptEntry) error {
	if transcript == nil {
		transcript = []model.TranscriptEntry{}
	}
	res := r.db.Model(&model.InterviewSession{}).
		Where("user_id = ? AND interview_id = ? AND status = ?", userID, interviewID, model.SessionStatusStarted).
		Select("status", "ended_at", "transcript").
		Updates(&model.InterviewSession{
			Status:     model.SessionStatusCompleted,
			EndedAt:    &endedAt,
			Transcript: transcript,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SaveFeedback writes all five feedback fields plus the save timestamp in a
// single update, guarded so an already-saved session is never rewritten.
// Returns false when the guard skipped the write.
func (r *SessionRepository) SaveFeedback(userID, interviewID string, fb *model.InterviewSession) (bool, error) {
	res := r.db.Model(&model.InterviewSession{}).
		Where("user_id = ? AND interview_id = ? AND score IS NULL", userID, interviewID).
		Select("score", "feedback", "good_parts", "improvements", "motivation", "feedback_saved_at").
		Updates(&model.InterviewSession{
			Score:           fb.Score,
			Feedback:        fb.Feedback,
			GoodParts:       fb.GoodParts,
			Improvements:    fb.Improvements,
			Motivation:      fb.Motivation,
			FeedbackSavedAt: fb.FeedbackSavedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
