package feedback

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"roz-chat/internal/domain"
	"roz-chat/internal/infra/metrics"
)

var (
	ErrSessionRequired = errors.New("идентификатор сессии обязателен")
	ErrRatingRange     = errors.New("оценка должна быть от 1 до 5")
)

// Service проверяет и сохраняет отзывы, считает агрегаты.
type Service struct {
	repo domain.FeedbackRepo
	log  zerolog.Logger
	now  func() time.Time
}

// NewService создаёт сервис отзывов.
func NewService(repo domain.FeedbackRepo, logger zerolog.Logger) *Service {
	return &Service{repo: repo, log: logger, now: time.Now}
}

// Submit валидирует отзыв и дописывает его в журнал.
func (s *Service) Submit(sessionID string, rating int, comment string) (domain.Feedback, error) {
	if strings.TrimSpace(sessionID) == "" {
		return domain.Feedback{}, ErrSessionRequired
	}
	if rating < 1 || rating > 5 {
		return domain.Feedback{}, ErrRatingRange
	}
	fb := domain.Feedback{
		SessionID: sessionID,
		Rating:    rating,
		Comment:   comment,
		Timestamp: s.now().UTC(),
	}
	if err := s.repo.Append(fb); err != nil {
		metrics.FeedbackAppendsTotal.WithLabelValues("error").Inc()
		return domain.Feedback{}, fmt.Errorf("сохранение отзыва: %w", err)
	}
	metrics.FeedbackAppendsTotal.WithLabelValues("success").Inc()
	metrics.FeedbackRatings.WithLabelValues(strconv.Itoa(rating)).Inc()
	return fb, nil
}

// List возвращает все отзывы в порядке добавления.
// Повреждённый журнал отдаётся как пустой, но попадает в лог:
// внешний контракт не отличает "нет данных" от "данные не читаются".
func (s *Service) List() ([]domain.Feedback, error) {
	list, err := s.repo.ReadAll()
	if err != nil {
		if errors.Is(err, domain.ErrCorruptLog) {
			s.log.Warn().Err(err).Msg("feedback: журнал повреждён, отдаём пустой список")
			return nil, nil
		}
		return nil, fmt.Errorf("чтение отзывов: %w", err)
	}
	return list, nil
}

// Summary содержит агрегаты по набору отзывов.
type Summary struct {
	Count        int         `json:"count"`
	Mean         float64     `json:"mean"`
	Distribution map[int]int `json:"distribution"`
}

// Aggregate считает количество, среднюю оценку (округлённую до одного
// знака, 0 для пустого набора) и распределение оценок 1-5.
// Функция чистая: хранилище не перечитывается.
func Aggregate(records []domain.Feedback) Summary {
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	sum := 0
	for _, fb := range records {
		dist[fb.Rating]++
		sum += fb.Rating
	}
	mean := 0.0
	if len(records) > 0 {
		mean = math.Round(float64(sum)/float64(len(records))*10) / 10
	}
	return Summary{Count: len(records), Mean: mean, Distribution: dist}
}

// SortForDisplay возвращает копию, отсортированную по убыванию времени.
// Порядок хранения не меняется: сортировка — забота представления.
func SortForDisplay(records []domain.Feedback) []domain.Feedback {
	out := make([]domain.Feedback, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
