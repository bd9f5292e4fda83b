package feedbackfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"roz-chat/internal/domain"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "feedback.json")
	return NewStore(path), path
}

func TestAppendThenReadAll(t *testing.T) {
	store, path := newTestStore(t)

	fb := domain.Feedback{
		SessionID: "sess-1",
		Rating:    4,
		Comment:   "fijn gesprek",
		Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Append(fb); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	list, err := store.ReadAll()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ожидали 1 запись, получили %d", len(list))
	}
	if list[0].SessionID != fb.SessionID || list[0].Rating != fb.Rating || list[0].Comment != fb.Comment {
		t.Fatalf("запись не совпадает: %+v", list[0])
	}
	if !list[0].Timestamp.Equal(fb.Timestamp) {
		t.Fatalf("ожидали %v, получили %v", fb.Timestamp, list[0].Timestamp)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("файл журнала не создан: %v", err)
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	store, _ := newTestStore(t)

	for i := 1; i <= 5; i++ {
		fb := domain.Feedback{SessionID: "sess", Rating: i, Timestamp: time.Now().UTC()}
		if err := store.Append(fb); err != nil {
			t.Fatalf("не ожидали ошибку: %v", err)
		}
	}

	list, err := store.ReadAll()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(list) != 5 {
		t.Fatalf("ожидали 5 записей, получили %d", len(list))
	}
	for i, fb := range list {
		if fb.Rating != i+1 {
			t.Fatalf("нарушен порядок добавления: %+v", list)
		}
	}
}

func TestReadAllMissingFile(t *testing.T) {
	store, _ := newTestStore(t)

	list, err := store.ReadAll()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("ожидали пустой журнал, получили %d записей", len(list))
	}
}

func TestReadAllCorruptFile(t *testing.T) {
	store, path := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{не json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := store.ReadAll()
	if !errors.Is(err, domain.ErrCorruptLog) {
		t.Fatalf("ожидали ErrCorruptLog, получили %v", err)
	}
}

func TestAppendAfterCorruptStartsFresh(t *testing.T) {
	store, path := newTestStore(t)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	fb := domain.Feedback{SessionID: "sess-2", Rating: 5, Timestamp: time.Now().UTC()}
	if err := store.Append(fb); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	list, err := store.ReadAll()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(list) != 1 || list[0].SessionID != "sess-2" {
		t.Fatalf("ожидали одну свежую запись, получили %+v", list)
	}
}

func TestConcurrentAppendsLoseNothing(t *testing.T) {
	store, _ := newTestStore(t)

	const writers = 10
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			fb := domain.Feedback{SessionID: "sess", Rating: n%5 + 1, Timestamp: time.Now().UTC()}
			if err := store.Append(fb); err != nil {
				t.Errorf("не ожидали ошибку: %v", err)
			}
		}(i)
	}
	wg.Wait()

	list, err := store.ReadAll()
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(list) != writers {
		t.Fatalf("потеряны записи: ожидали %d, получили %d", writers, len(list))
	}
}

func TestFileIsHumanReadableJSON(t *testing.T) {
	store, path := newTestStore(t)

	fb := domain.Feedback{SessionID: "sess-3", Rating: 3, Timestamp: time.Now().UTC()}
	if err := store.Append(fb); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "\n  {") || !strings.Contains(text, `"sessionId": "sess-3"`) {
		t.Fatalf("ожидали JSON с отступами, получили:\n%s", text)
	}
}
