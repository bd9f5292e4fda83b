package feedbackfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"roz-chat/internal/domain"
)

// Store хранит журнал отзывов в одном JSON-файле, переписывая его
// целиком при каждом добавлении. Добавления сериализуются мьютексом,
// а запись идёт через временный файл и os.Rename, поэтому параллельные
// Append не теряют записи, а читатель не видит недописанный журнал.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore создаёт хранилище поверх указанного файла.
// Файл и его каталог создаются лениво при первом добавлении.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Append дописывает отзыв в конец журнала.
func (s *Store) Append(fb domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.load()
	if err != nil && !errors.Is(err, domain.ErrCorruptLog) {
		return err
	}
	// Повреждённый журнал восстановить нельзя: начинаем заново,
	// как и исходное поведение "нет данных".
	list = append(list, fb)
	return s.write(list)
}

// ReadAll возвращает все отзывы в порядке добавления.
// Отсутствующий файл — пустой журнал без ошибки; нечитаемый
// файл — ошибка, обёрнутая в domain.ErrCorruptLog.
func (s *Store) ReadAll() ([]domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]domain.Feedback, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("чтение журнала: %w", err)
	}
	var list []domain.Feedback
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptLog, err)
	}
	return list, nil
}

func (s *Store) write(list []domain.Feedback) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("создание каталога: %w", err)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("сериализация журнала: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "feedback-*.json")
	if err != nil {
		return fmt.Errorf("создание временного файла: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("запись журнала: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("закрытие временного файла: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("выставление прав: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("замена журнала: %w", err)
	}
	return nil
}
