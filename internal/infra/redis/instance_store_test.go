package redis

import (
	"context"
	"testing"
	"time"

	"escape-room-service/internal/app"
	"escape-room-service/internal/content"
	"escape-room-service/internal/infra/memory"
	"escape-room-service/internal/scoring"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestInstanceStoreRehydratesAcrossProcesses(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	client := newClient(mr)
	rounds := memory.NewRoundRepository(memory.NewStaticRoundLoader(content.SampleRounds()), time.Minute)

	first := app.NewRoundService(NewInstanceStore(client, time.Hour, rounds, scoring.Engine{}), rounds, memory.NewProgressStore())
	view, err := first.Start(ctx, "s1-r2-red-flags", "p1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := first.Select(ctx, view.InstanceID, "p1", "no-author", ""); err != nil {
		t.Fatalf("select: %v", err)
	}
	if !mr.Exists("round:instance:" + view.InstanceID) {
		t.Fatalf("expected instance snapshot in redis")
	}

	// A second process only shares Redis.
	second := app.NewRoundService(NewInstanceStore(client, time.Hour, rounds, scoring.Engine{}), rounds, memory.NewProgressStore())
	restored, err := second.View(ctx, view.InstanceID, "p1")
	if err != nil {
		t.Fatalf("view after restart: %v", err)
	}
	if restored.Phase != "collecting" || restored.Response.Selections["no-author"] != "flagged" || !restored.CanValidate {
		t.Fatalf("unexpected restored view %+v", restored)
	}

	validated, err := second.Validate(ctx, view.InstanceID, "p1")
	if err != nil {
		t.Fatalf("validate after restart: %v", err)
	}
	if validated.Result == nil || validated.Result.Score != 15 {
		t.Fatalf("expected one critical flag scored, got %+v", validated.Result)
	}
}

func TestInstanceStoreDelete(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	rounds := memory.NewRoundRepository(memory.NewStaticRoundLoader(content.SampleRounds()), time.Minute)
	store := NewInstanceStore(newClient(mr), time.Hour, rounds, scoring.Engine{})
	service := app.NewRoundService(store, rounds, memory.NewProgressStore())

	view, _ := service.Start(ctx, "s1-r1-credibility", "p1")
	store.Delete(ctx, view.InstanceID)

	if mr.Exists("round:instance:" + view.InstanceID) {
		t.Fatalf("expected snapshot removed")
	}
	if _, ok := store.Get(ctx, view.InstanceID); ok {
		t.Fatalf("expected deleted instance to be gone")
	}
}

func TestInstanceStoreExpiredSnapshotIsNotServed(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	rounds := memory.NewRoundRepository(memory.NewStaticRoundLoader(content.SampleRounds()), time.Minute)
	store := NewInstanceStore(newClient(mr), time.Minute, rounds, scoring.Engine{})
	service := app.NewRoundService(store, rounds, memory.NewProgressStore())

	view, err := service.Start(ctx, "s1-r1-credibility", "p1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, ok := store.Get(ctx, view.InstanceID); !ok {
		t.Fatalf("expected live instance")
	}

	mr.FastForward(2 * time.Minute)
	if _, ok := store.Get(ctx, view.InstanceID); ok {
		t.Fatalf("expected expired instance to be gone")
	}
	if _, err := service.View(ctx, view.InstanceID, "p1"); err == nil {
		t.Fatalf("expected view of expired instance to fail")
	}
}
