package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	applog "switchmarket/internal/log"
	"switchmarket/models"
)

// SessionStore persists scs sessions in the sessions table.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore returns a SessionStore over db.
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Find(token string) ([]byte, bool, error) {
	return s.FindCtx(context.Background(), token)
}

func (s *SessionStore) Commit(token string, b []byte, expiry time.Time) error {
	return s.CommitCtx(context.Background(), token, b, expiry)
}

func (s *SessionStore) Delete(token string) error {
	return s.DeleteCtx(context.Background(), token)
}

// FindCtx returns the data of an unexpired session.
func (s *SessionStore) FindCtx(ctx context.Context, token string) ([]byte, bool, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Where("token = ? AND expiry > ?", token, time.Now().UTC()).
		Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return session.Data, true, nil
}

// CommitCtx inserts or replaces a session.
func (s *SessionStore) CommitCtx(ctx context.Context, token string, b []byte, expiry time.Time) error {
	session := models.Session{Token: token, Data: b, Expiry: expiry.UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expiry"}),
	}).Create(&session).Error
}

// DeleteCtx removes a session.
func (s *SessionStore) DeleteCtx(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error
}

// DeleteExpired removes sessions past their expiry and returns how many went.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expiry <= ?", time.Now().UTC()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

// StartCleanup deletes expired sessions every interval until ctx is done.
func (s *SessionStore) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.DeleteExpired(ctx)
				if err != nil {
					applog.Error(ctx, "session cleanup failed", "error", err)
					continue
				}
				applog.Debug(ctx, "session cleanup", "removed", removed)
			}
		}
	}()
}
