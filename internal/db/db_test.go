package db

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"switchmarket/internal/config"
	"switchmarket/models"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), GormConfig(logger.Silent))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("automigrate sqlite database: %v", err)
	}
	return db
}

func TestInitializeRequiresURL(t *testing.T) {
	t.Parallel()

	db, err := Initialize(config.DatabaseConfig{URL: ""})
	if err == nil {
		t.Fatal("expected error when database URL is empty")
	}
	if db != nil {
		t.Fatal("expected returned db handle to be nil on error")
	}
}

func TestAutoMigrateRejectsNilDatabase(t *testing.T) {
	t.Parallel()

	if err := AutoMigrate(nil); err == nil {
		t.Fatal("expected error when database handle is nil")
	}
}

func TestConfigurePropagatesInitializationError(t *testing.T) {
	t.Parallel()

	if _, err := Configure(config.DatabaseConfig{}); err == nil {
		t.Fatal("expected configuration error when initialize fails")
	}
}

func TestSessionStoreLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore(openSQLite(t))

	if _, found, err := store.Find("missing"); err != nil || found {
		t.Fatalf("expected missing session, found=%v err=%v", found, err)
	}

	expiry := time.Now().Add(time.Hour)
	if err := store.Commit("tok", []byte("one"), expiry); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := store.CommitCtx(ctx, "tok", []byte("two"), expiry); err != nil {
		t.Fatalf("recommit: %v", err)
	}

	data, found, err := store.FindCtx(ctx, "tok")
	if err != nil || !found || string(data) != "two" {
		t.Fatalf("unexpected find result %q found=%v err=%v", data, found, err)
	}

	if err := store.Delete("tok"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := store.Find("tok"); found {
		t.Fatal("session should be gone")
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewSessionStore(openSQLite(t))

	if err := store.CommitCtx(ctx, "old", []byte("x"), time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, found, _ := store.FindCtx(ctx, "old"); found {
		t.Fatal("expired session must not be returned")
	}

	removed, err := store.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("delete expired: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one expired session removed, got %d", removed)
	}
}

func TestImageCacheUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := NewImageCache(openSQLite(t))

	if _, ok, err := cache.Get(ctx, "3600523614455"); err != nil || ok {
		t.Fatalf("expected empty cache, ok=%v err=%v", ok, err)
	}

	first := models.ImageLookup{EAN: "3600523614455", URL: "/a.jpg", Source: models.ImageSourcePattern, CheckedAt: time.Now()}
	if err := cache.Put(ctx, first); err != nil {
		t.Fatalf("put: %v", err)
	}
	second := first
	second.URL, second.Source = "/b.jpg", models.ImageSourceOBF
	if err := cache.Put(ctx, second); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, ok, err := cache.Get(ctx, "3600523614455")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if got.URL != "/b.jpg" || got.Source != models.ImageSourceOBF {
		t.Fatalf("unexpected lookup %+v", got)
	}
}
