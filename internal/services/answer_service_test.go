package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-qa-backend/internal/domain"
	"github.com/tbourn/go-qa-backend/internal/repo"
	"github.com/tbourn/go-qa-backend/internal/store"
)

func newIdemDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:answers_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestAnswerService_Add(t *testing.T) {
	st := store.New(seedQuestions())
	svc := NewAnswerService(st, nil, 0)
	ctx := context.Background()

	a, replayed, err := svc.Add(ctx, "1", "Use a mutex.", "")
	if err != nil || replayed {
		t.Fatalf("Add = %+v, %v, %v", a, replayed, err)
	}
	if a.ID == "" || a.QuestionID != "1" || a.Content != "Use a mutex." {
		t.Fatalf("unexpected answer: %+v", a)
	}
	b, _, err := svc.Add(ctx, "1", "Or a channel.", "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("answer ids collide: %s", a.ID)
	}
	if _, n := st.Counts(); n != 2 {
		t.Fatalf("answers = %d; want 2", n)
	}
}

func TestAnswerService_Add_MissingQuestionNoMutation(t *testing.T) {
	st := store.New(seedQuestions())
	svc := NewAnswerService(st, nil, 0)

	_, _, err := svc.Add(context.Background(), "Q9", "orphan", "")
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err = %v; want ErrQuestionNotFound", err)
	}
	if _, n := st.Counts(); n != 0 {
		t.Fatalf("answers = %d; want 0", n)
	}

	if _, _, err := svc.Add(context.Background(), "", "x", ""); !errors.Is(err, ErrEmptyQuestionID) {
		t.Fatalf("empty id err = %v; want ErrEmptyQuestionID", err)
	}
}

// racingStore reports the question as present but loses it before the insert.
type racingStore struct{ *store.Store }

func (racingStore) QuestionExists(context.Context, domain.QuestionID) (bool, error) {
	return true, nil
}

func TestAnswerService_Add_QuestionDeletedAfterCheck(t *testing.T) {
	st := store.New(nil)
	svc := NewAnswerService(racingStore{st}, nil, 0)

	_, _, err := svc.Add(context.Background(), "gone", "late", "")
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err = %v; want ErrQuestionNotFound", err)
	}
	if _, n := st.Counts(); n != 0 {
		t.Fatalf("answers = %d; want 0", n)
	}
}

func TestAnswerService_Add_IdempotentReplay(t *testing.T) {
	st := store.New(seedQuestions())
	db := newIdemDB(t)
	svc := NewAnswerService(st, db, time.Hour)
	ctx := context.Background()

	first, replayed, err := svc.Add(ctx, "1", "once", "key-1")
	if err != nil || replayed {
		t.Fatalf("first Add = %v, %v", replayed, err)
	}
	second, replayed, err := svc.Add(ctx, "1", "twice", "key-1")
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if !replayed || second.ID != first.ID || second.Content != "once" {
		t.Fatalf("replay = %+v (replayed=%v); want %+v", second, replayed, first)
	}
	if _, n := st.Counts(); n != 1 {
		t.Fatalf("answers = %d; want 1", n)
	}

	// Same key on another question is a different operation.
	other, replayed, err := svc.Add(ctx, "2", "elsewhere", "key-1")
	if err != nil || replayed || other.ID == first.ID {
		t.Fatalf("other question = %+v, %v, %v", other, replayed, err)
	}

	// A missing question is reported even when the key is known.
	if _, _, err := svc.Add(ctx, "Q9", "x", "key-1"); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err = %v; want ErrQuestionNotFound", err)
	}
}

func TestAnswerService_Add_ExpiredKeyInsertsAgain(t *testing.T) {
	st := store.New(seedQuestions())
	db := newIdemDB(t)
	svc := NewAnswerService(st, db, time.Nanosecond)
	ctx := context.Background()

	first, _, err := svc.Add(ctx, "1", "a", "k")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second, replayed, err := svc.Add(ctx, "1", "b", "k")
	if err != nil || replayed || second.ID == first.ID {
		t.Fatalf("expired key replayed: %+v, %v, %v", second, replayed, err)
	}
}

func TestAnswerService_Add_ExpiredKeyIsReclaimedForRetries(t *testing.T) {
	st := store.New(seedQuestions())
	db := newIdemDB(t)
	svc := NewAnswerService(st, db, time.Hour)
	ctx := context.Background()

	// An expired record the janitor has not purged yet.
	now := time.Now().UTC()
	stale := &domain.Idempotency{
		ID:         "stale",
		QuestionID: "1",
		Key:        "k",
		AnswerID:   "gone",
		Status:     201,
		CreatedAt:  now.Add(-2 * time.Hour),
		ExpiresAt:  now.Add(-time.Hour),
	}
	if err := db.Create(stale).Error; err != nil {
		t.Fatalf("seed stale record: %v", err)
	}

	fresh, replayed, err := svc.Add(ctx, "1", "b", "k")
	if err != nil || replayed {
		t.Fatalf("Add over expired key = %+v, %v, %v", fresh, replayed, err)
	}
	retry, replayed, err := svc.Add(ctx, "1", "b", "k")
	if err != nil || !replayed || retry.ID != fresh.ID {
		t.Fatalf("retry = %+v (replayed=%v, err=%v); want replay of %s", retry, replayed, err, fresh.ID)
	}
	if _, n := st.Counts(); n != 1 {
		t.Fatalf("answers = %d; want 1", n)
	}
}

func TestAnswerService_Add_KeyHeldByUnfinishedRequest(t *testing.T) {
	st := store.New(seedQuestions())
	db := newIdemDB(t)
	svc := NewAnswerService(st, db, time.Hour)
	ctx := context.Background()

	// A live claim whose answer has not reached the store.
	if _, err := repo.CreateIdempotency(ctx, db, "1", "k", domain.NewAnswerID().String(), 201, time.Hour); err != nil {
		t.Fatalf("seed claim: %v", err)
	}

	_, replayed, err := svc.Add(ctx, "1", "x", "k")
	if !errors.Is(err, ErrIdempotencyInProgress) || replayed {
		t.Fatalf("Add = replayed %v, err %v; want ErrIdempotencyInProgress", replayed, err)
	}
	if _, n := st.Counts(); n != 0 {
		t.Fatalf("answers = %d; want 0", n)
	}
}

func TestAnswerService_Add_FailedInsertReleasesKey(t *testing.T) {
	st := store.New(nil)
	db := newIdemDB(t)
	svc := NewAnswerService(racingStore{st}, db, time.Hour)
	ctx := context.Background()

	if _, _, err := svc.Add(ctx, "gone", "late", "k"); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("err = %v; want ErrQuestionNotFound", err)
	}
	if _, err := repo.GetIdempotency(ctx, db, "gone", "k", time.Now().UTC()); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("claim kept after failed insert: %v", err)
	}
}

func TestAnswerService_Add_ConcurrentSameKey(t *testing.T) {
	st := store.New(seedQuestions())
	db := newIdemDB(t)
	svc := NewAnswerService(st, db, time.Hour)
	// One connection serializes the claims without SQLite lock errors.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	const n = 16
	ids := make([]domain.AnswerID, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, _, err := svc.Add(context.Background(), "1", "same", "k")
			ids[i], errs[i] = a.ID, err
		}(i)
	}
	wg.Wait()

	if _, count := st.Counts(); count != 1 {
		t.Fatalf("answers = %d; want 1", count)
	}
	var winner domain.AnswerID
	for i := range ids {
		if errs[i] != nil {
			if !errors.Is(errs[i], ErrIdempotencyInProgress) {
				t.Fatalf("call %d: %v", i, errs[i])
			}
			continue
		}
		if winner == "" {
			winner = ids[i]
		}
		if ids[i] != winner {
			t.Fatalf("call %d got %s; want %s", i, ids[i], winner)
		}
	}
}

func TestAnswerService_List(t *testing.T) {
	st := store.New(seedQuestions())
	svc := NewAnswerService(st, nil, 0)
	ctx := context.Background()

	items, err := svc.List(ctx, "1")
	if err != nil || items == nil || len(items) != 0 {
		t.Fatalf("List empty = %v, %v", items, err)
	}
	for i := 0; i < 3; i++ {
		if _, _, err := svc.Add(ctx, "1", fmt.Sprint(i), ""); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	_, _, _ = svc.Add(ctx, "2", "other", "")

	items, err = svc.List(ctx, "1")
	if err != nil || len(items) != 3 {
		t.Fatalf("List = %v, %v", items, err)
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].ID >= items[i].ID {
			t.Fatalf("answers not sorted by id: %v", items)
		}
	}

	if _, err := svc.List(ctx, "Q9"); !errors.Is(err, ErrQuestionNotFound) {
		t.Fatalf("List(Q9) err = %v; want ErrQuestionNotFound", err)
	}
}

func TestAnswerService_ConcurrentAdd(t *testing.T) {
	st := store.New(seedQuestions())
	svc := NewAnswerService(st, nil, 0)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = svc.Add(context.Background(), "1", "x", "")
		}()
	}
	wg.Wait()

	if _, n := st.Counts(); n != 64 {
		t.Fatalf("answers = %d; want 64", n)
	}
}
