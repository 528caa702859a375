package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	customErrors "github.com/Velmor/DuoChat/chat-service/internal/domain/errors"
	redisv9 "github.com/redis/go-redis/v9"
)

func newRepo(t *testing.T) (*RedisCodeRepo, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	t.Cleanup(mr.Close)

	client := redisv9.NewClient(&redisv9.Options{
		Addr: mr.Addr(),
	})
	return NewRedisCodeRepo(client, 120*time.Second), mr
}

func TestRedisCodeRepo_PutGet(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	if err := repo.Put(ctx, "a@x.com", "ABC123"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	code, err := repo.Get(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if code != "ABC123" {
		t.Fatalf("want ABC123, got %s", code)
	}
}

func TestRedisCodeRepo_GetAbsent(t *testing.T) {
	repo, _ := newRepo(t)

	_, err := repo.Get(context.Background(), "nobody@x.com")
	if !customErrors.IsInvalidCode(err) {
		t.Fatalf("absent key must yield invalid code, got %v", err)
	}
}

func TestRedisCodeRepo_PutOverwrites(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	if err := repo.Put(ctx, "a@x.com", "OLD000"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := repo.Put(ctx, "a@x.com", "NEW111"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// the old code must not be accepted anymore
	if err := repo.Consume(ctx, "a@x.com", "OLD000"); !customErrors.IsInvalidCode(err) {
		t.Fatalf("old code must be invalid, got %v", err)
	}
	if err := repo.Consume(ctx, "a@x.com", "NEW111"); err != nil {
		t.Fatalf("new code must consume: %v", err)
	}
}

func TestRedisCodeRepo_ConsumeOnce(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	if err := repo.Put(ctx, "a@x.com", "ZZ99AA"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := repo.Consume(ctx, "a@x.com", "ZZ99AA"); err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if err := repo.Consume(ctx, "a@x.com", "ZZ99AA"); !customErrors.IsInvalidCode(err) {
		t.Fatalf("replayed code must fail, got %v", err)
	}
}

func TestRedisCodeRepo_ConsumeMismatch(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	if err := repo.Put(ctx, "a@x.com", "RIGHT1"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := repo.Consume(ctx, "a@x.com", "WRONG1"); !customErrors.IsInvalidCode(err) {
		t.Fatalf("mismatched code must fail, got %v", err)
	}
	// wrong guess must not destroy the live code
	if _, err := repo.Get(ctx, "a@x.com"); err != nil {
		t.Fatalf("code should survive a wrong guess: %v", err)
	}
}

func TestRedisCodeRepo_Expiry(t *testing.T) {
	repo, mr := newRepo(t)
	ctx := context.Background()

	if err := repo.Put(ctx, "a@x.com", "EXP000"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	mr.FastForward(121 * time.Second)

	if _, err := repo.Get(ctx, "a@x.com"); !customErrors.IsInvalidCode(err) {
		t.Fatalf("expired code must be absent, got %v", err)
	}
	if err := repo.Consume(ctx, "a@x.com", "EXP000"); !customErrors.IsInvalidCode(err) {
		t.Fatalf("expired code must not consume, got %v", err)
	}
}

func TestRedisCodeRepo_DeleteAbsentNoop(t *testing.T) {
	repo, _ := newRepo(t)

	if err := repo.Delete(context.Background(), "nobody@x.com"); err != nil {
		t.Fatalf("delete of absent entry must be a no-op: %v", err)
	}
}

func TestRedisCodeRepo_StoreUnavailable(t *testing.T) {
	repo, mr := newRepo(t)
	mr.Close()

	if err := repo.Put(context.Background(), "a@x.com", "ABC123"); !customErrors.IsStoreUnavailable(err) {
		t.Fatalf("want store unavailable, got %v", err)
	}
	if _, err := repo.Get(context.Background(), "a@x.com"); !customErrors.IsStoreUnavailable(err) {
		t.Fatalf("want store unavailable, got %v", err)
	}
}
