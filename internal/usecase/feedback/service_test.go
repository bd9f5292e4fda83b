package feedback

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"roz-chat/internal/domain"
)

type fakeRepo struct {
	records []domain.Feedback
	appendE error
	readE   error
}

func (f *fakeRepo) Append(fb domain.Feedback) error {
	if f.appendE != nil {
		return f.appendE
	}
	f.records = append(f.records, fb)
	return nil
}

func (f *fakeRepo) ReadAll() ([]domain.Feedback, error) {
	if f.readE != nil {
		return nil, f.readE
	}
	return f.records, nil
}

func TestSubmitValidRatings(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, zerolog.Nop())

	for rating := 1; rating <= 5; rating++ {
		fb, err := svc.Submit("sess", rating, "")
		if err != nil {
			t.Fatalf("не ожидали ошибку для оценки %d: %v", rating, err)
		}
		if fb.Rating != rating {
			t.Fatalf("ожидали оценку %d, получили %d", rating, fb.Rating)
		}
		if fb.Timestamp.IsZero() || fb.Timestamp.Location() != time.UTC {
			t.Fatalf("ожидали метку времени в UTC, получили %v", fb.Timestamp)
		}
	}
	if len(repo.records) != 5 {
		t.Fatalf("ожидали 5 записей, получили %d", len(repo.records))
	}
}

func TestSubmitRejectsBadInput(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, zerolog.Nop())

	cases := map[string]struct {
		sessionID string
		rating    int
		want      error
	}{
		"пустая сессия":      {"", 3, ErrSessionRequired},
		"сессия из пробелов": {"   ", 3, ErrSessionRequired},
		"оценка ниже порога": {"sess", 0, ErrRatingRange},
		"оценка выше порога": {"sess", 6, ErrRatingRange},
		"отрицательная":      {"sess", -1, ErrRatingRange},
	}
	for name, tc := range cases {
		if _, err := svc.Submit(tc.sessionID, tc.rating, ""); !errors.Is(err, tc.want) {
			t.Fatalf("%s: ожидали %v, получили %v", name, tc.want, err)
		}
	}
	if len(repo.records) != 0 {
		t.Fatalf("невалидные отзывы не должны сохраняться: %+v", repo.records)
	}
}

func TestSubmitWrapsStorageError(t *testing.T) {
	repo := &fakeRepo{appendE: errors.New("диск переполнен")}
	svc := NewService(repo, zerolog.Nop())

	if _, err := svc.Submit("sess", 4, ""); err == nil {
		t.Fatal("ожидали ошибку хранилища")
	}
}

func TestListTreatsCorruptAsEmpty(t *testing.T) {
	repo := &fakeRepo{readE: domain.ErrCorruptLog}
	svc := NewService(repo, zerolog.Nop())

	list, err := svc.List()
	if err != nil {
		t.Fatalf("повреждённый журнал не должен быть ошибкой для клиента: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("ожидали пустой список, получили %d", len(list))
	}
}

func TestListPropagatesIOError(t *testing.T) {
	repo := &fakeRepo{readE: errors.New("нет доступа")}
	svc := NewService(repo, zerolog.Nop())

	if _, err := svc.List(); err == nil {
		t.Fatal("ожидали ошибку чтения")
	}
}

func TestAggregateEmpty(t *testing.T) {
	sum := Aggregate(nil)
	if sum.Count != 0 {
		t.Fatalf("ожидали count=0, получили %d", sum.Count)
	}
	if sum.Mean != 0 {
		t.Fatalf("ожидали mean=0, получили %v", sum.Mean)
	}
	for rating := 1; rating <= 5; rating++ {
		if sum.Distribution[rating] != 0 {
			t.Fatalf("ожидали пустое распределение, получили %+v", sum.Distribution)
		}
	}
}

func TestAggregateUniformRatings(t *testing.T) {
	var records []domain.Feedback
	for i := 0; i < 7; i++ {
		records = append(records, domain.Feedback{Rating: 4})
	}

	sum := Aggregate(records)
	if sum.Count != 7 {
		t.Fatalf("ожидали count=7, получили %d", sum.Count)
	}
	if sum.Mean != 4 {
		t.Fatalf("ожидали mean=4, получили %v", sum.Mean)
	}
	if sum.Distribution[4] != 7 {
		t.Fatalf("ожидали distribution[4]=7, получили %+v", sum.Distribution)
	}
	for _, r := range []int{1, 2, 3, 5} {
		if sum.Distribution[r] != 0 {
			t.Fatalf("лишние оценки в распределении: %+v", sum.Distribution)
		}
	}
}

func TestAggregateMeanRounding(t *testing.T) {
	cases := map[string]struct {
		ratings []int
		want    float64
	}{
		"полтора":      {[]int{1, 2}, 1.5},
		"пять третьих": {[]int{1, 2, 2}, 1.7},
		"единица":      {[]int{1}, 1},
	}
	for name, tc := range cases {
		var records []domain.Feedback
		for _, r := range tc.ratings {
			records = append(records, domain.Feedback{Rating: r})
		}
		if got := Aggregate(records).Mean; got != tc.want {
			t.Fatalf("%s: ожидали %v, получили %v", name, tc.want, got)
		}
	}
}

func TestSortForDisplayDoesNotMutate(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.Feedback{
		{SessionID: "a", Timestamp: base},
		{SessionID: "b", Timestamp: base.Add(2 * time.Hour)},
		{SessionID: "c", Timestamp: base.Add(time.Hour)},
	}

	sorted := SortForDisplay(records)

	if sorted[0].SessionID != "b" || sorted[1].SessionID != "c" || sorted[2].SessionID != "a" {
		t.Fatalf("ожидали порядок от новых к старым, получили %+v", sorted)
	}
	if records[0].SessionID != "a" || records[2].SessionID != "c" {
		t.Fatalf("исходный порядок хранения изменён: %+v", records)
	}
}
