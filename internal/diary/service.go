package diary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"weatherdiary/internal/weather"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const MaxTextLength = 10000

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("invalid input")
	// ErrWeatherUnavailable is returned for a past date with no cached
	// weather when fetching current weather for it is disabled.
	ErrWeatherUnavailable = errors.New("weather unavailable")
)

// WeatherSource supplies the current observation.
type WeatherSource interface {
	FetchCurrent(ctx context.Context) (weather.Observation, error)
}

type Service struct {
	DB      *gorm.DB
	Weather WeatherSource
	Log     *slog.Logger

	// Location decides which calendar day "today" is. Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time

	// RequireCachedWeatherForPastDates refuses to stamp the current weather
	// onto a past date that has no cached observation.
	RequireCachedWeatherForPastDates bool
}

// CreateDiary stores a new entry for date with the weather cached for that
// date, fetching and caching current weather when there is none.
func (s *Service) CreateDiary(ctx context.Context, date Date, text string) (Entry, error) {
	if err := validate(date, text); err != nil {
		return Entry{}, err
	}
	log := s.logger().With("date", date.String())
	log.Info("creating diary")

	cached, err := s.DailyWeatherFor(ctx, date)
	var fetched *DailyWeather
	switch {
	case err == nil:
		log.Debug("using cached weather", "weather_id", cached.ID)
	case errors.Is(err, ErrNotFound):
		w, err := s.fetchFor(ctx, date, log)
		if err != nil {
			return Entry{}, err
		}
		fetched = &w
	default:
		return Entry{}, err
	}

	entry := Entry{Date: date, Text: text, Tags: ExtractTags(text)}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snap := cached
		if fetched != nil {
			w, _, err := insertWeatherIfAbsent(tx, *fetched)
			if err != nil {
				return err
			}
			snap = w
		}
		entry.Weather = snap.Weather
		entry.Icon = snap.Icon
		entry.Temperature = snap.Temperature
		return tx.Create(&entry).Error
	})
	if err != nil {
		return Entry{}, fmt.Errorf("create diary: %w", err)
	}

	log.Info("diary created", "id", entry.ID)
	return entry, nil
}

// FetchDailyWeather caches the current weather for today. An existing row for
// today wins; in that case no fetch is made and created is false.
func (s *Service) FetchDailyWeather(ctx context.Context) (w DailyWeather, created bool, err error) {
	today := s.today()
	log := s.logger().With("date", today.String())

	if existing, err := s.DailyWeatherFor(ctx, today); err == nil {
		log.Info("daily weather already cached", "weather_id", existing.ID)
		return existing, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return DailyWeather{}, false, err
	}

	obs, err := s.Weather.FetchCurrent(ctx)
	if err != nil {
		log.Error("daily weather fetch failed", "error", err)
		return DailyWeather{}, false, fmt.Errorf("fetch daily weather: %w", err)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		w, created, err = insertWeatherIfAbsent(tx, newDailyWeather(today, obs))
		return err
	})
	if err != nil {
		return DailyWeather{}, false, fmt.Errorf("store daily weather: %w", err)
	}

	log.Info("daily weather stored", "weather_id", w.ID, "weather", w.Weather, "created", created)
	return w, created, nil
}

// DailyWeatherFor returns the cached weather for date.
func (s *Service) DailyWeatherFor(ctx context.Context, date Date) (DailyWeather, error) {
	var w DailyWeather
	err := s.DB.WithContext(ctx).Where("date = ?", date).Order("id asc").First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DailyWeather{}, ErrNotFound
	}
	if err != nil {
		return DailyWeather{}, fmt.Errorf("lookup weather for %s: %w", date, err)
	}
	return w, nil
}

// ReadDiary returns every entry for date in insertion order.
func (s *Service) ReadDiary(ctx context.Context, date Date) ([]Entry, error) {
	s.logger().Debug("read diary", "date", date.String())

	out := []Entry{}
	if err := s.DB.WithContext(ctx).Where("date = ?", date).Order("id asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("read diary %s: %w", date, err)
	}
	return out, nil
}

// ReadDiaries returns entries dated within [start, end].
func (s *Service) ReadDiaries(ctx context.Context, start, end Date) ([]Entry, error) {
	out := []Entry{}
	if start.After(end) {
		return out, nil
	}
	err := s.DB.WithContext(ctx).
		Where("date >= ? AND date <= ?", start, end).
		Order("date asc").Order("id asc").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("read diaries %s..%s: %w", start, end, err)
	}
	return out, nil
}

// UpdateDiary replaces the text of the first entry for date. The weather
// snapshot is left as it was.
func (s *Service) UpdateDiary(ctx context.Context, date Date, text string) error {
	if err := validate(date, text); err != nil {
		return err
	}
	log := s.logger().With("date", date.String())

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e Entry
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("date = ?", date).
			Order("id asc").
			First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&e).Updates(map[string]any{
			"text": text,
			"tags": ExtractTags(text),
		}).Error; err != nil {
			return err
		}
		log.Info("diary updated", "id", e.ID)
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("update diary: %w", err)
	}
	return nil
}

// DeleteDiary removes every entry for date. Deleting nothing is not an error.
func (s *Service) DeleteDiary(ctx context.Context, date Date) (int64, error) {
	res := s.DB.WithContext(ctx).Where("date = ?", date).Delete(&Entry{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete diary %s: %w", date, res.Error)
	}
	s.logger().Info("diary deleted", "date", date.String(), "count", res.RowsAffected)
	return res.RowsAffected, nil
}

func (s *Service) fetchFor(ctx context.Context, date Date, log *slog.Logger) (DailyWeather, error) {
	today := s.today()
	if date.Before(today) && s.RequireCachedWeatherForPastDates {
		return DailyWeather{}, fmt.Errorf("%w: no cached weather for %s", ErrWeatherUnavailable, date)
	}
	if date != today {
		// Only current weather is available; it is stored under the requested date.
		log.Warn("no cached weather, using current weather for another day", "today", today.String())
	}

	obs, err := s.Weather.FetchCurrent(ctx)
	if err != nil {
		log.Error("weather fetch failed", "error", err)
		return DailyWeather{}, fmt.Errorf("fetch weather for %s: %w", date, err)
	}
	return newDailyWeather(date, obs), nil
}

// insertWeatherIfAbsent inserts w unless a row for its date exists, and
// returns whichever row is stored.
func insertWeatherIfAbsent(tx *gorm.DB, w DailyWeather) (DailyWeather, bool, error) {
	res := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoNothing: true,
	}).Create(&w)
	if res.Error != nil {
		return DailyWeather{}, false, res.Error
	}
	if res.RowsAffected == 1 {
		return w, true, nil
	}

	var existing DailyWeather
	if err := tx.Where("date = ?", w.Date).Order("id asc").First(&existing).Error; err != nil {
		return DailyWeather{}, false, err
	}
	return existing, false, nil
}

func newDailyWeather(date Date, obs weather.Observation) DailyWeather {
	return DailyWeather{
		Date:        date,
		Weather:     obs.Condition,
		Icon:        obs.Icon,
		Temperature: obs.Temperature,
	}
}

func validate(date Date, text string) error {
	if date.IsZero() {
		return fmt.Errorf("%w: date required", ErrValidation)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: text is not valid UTF-8", ErrValidation)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text required", ErrValidation)
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return fmt.Errorf("%w: text longer than %d characters", ErrValidation, MaxTextLength)
	}
	return nil
}

func (s *Service) today() Date {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return DateOf(now().In(loc))
}

func (s *Service) logger() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
