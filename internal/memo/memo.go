package memo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

const MaxTextLength = 2000

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
)

// Memo is a short free-form note not tied to a date.
type Memo struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

type Service struct {
	DB *gorm.DB
}

func (s *Service) Save(ctx context.Context, text string) (Memo, error) {
	if !utf8.ValidString(text) {
		return Memo{}, fmt.Errorf("%w: text is not valid UTF-8", ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return Memo{}, fmt.Errorf("%w: text required", ErrValidation)
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return Memo{}, fmt.Errorf("%w: text longer than %d characters", ErrValidation, MaxTextLength)
	}

	m := Memo{Text: text}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return Memo{}, fmt.Errorf("save memo: %w", err)
	}
	return m, nil
}

// List returns memos newest first, at most limit (all when limit <= 0).
func (s *Service) List(ctx context.Context, limit int) ([]Memo, error) {
	q := s.DB.WithContext(ctx).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	out := []Memo{}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list memos: %w", err)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id uint64) (Memo, error) {
	var m Memo
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Memo{}, ErrNotFound
	}
	if err != nil {
		return Memo{}, fmt.Errorf("get memo %d: %w", id, err)
	}
	return m, nil
}
