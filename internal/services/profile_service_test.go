package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"QROLY_BACK-END/internal/models"
)

func TestLoad_NormalizesMissingCollections(t *testing.T) {
	p := profileWith("kishor", "")
	p.Links = models.Links{}
	svc := NewProfileService(newMemProfiles(p), nil)

	got, err := svc.Load(context.Background(), "kishor")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Links.Social == nil || got.Links.Payment == nil {
		t.Fatalf("collections should be empty, not nil: %+v", got.Links)
	}
}

func TestLoad_NotFound(t *testing.T) {
	svc := NewProfileService(newMemProfiles(), nil)
	if _, err := svc.Load(context.Background(), "nobody"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
}

func TestSaveThenLoad_RoundTrip(t *testing.T) {
	svc := NewProfileService(newMemProfiles(profileWith("kishor", "")), nil)
	ctx := context.Background()

	links := models.Links{
		Social: map[string]string{
			"instagram": "https://instagram.com/kishor",
			"twitter":   "",
			"myspace":   "not a url",
		},
		Payment: map[string]models.PaymentEntry{
			"gpay":    {UPIID: "kishor@okicici", PayerName: "Kishor", Amount: "abc", Currency: "INR"},
			"phonepe": {UPIID: "malformed"},
		},
	}
	if err := svc.Save(ctx, "kishor", links, "kishor@okicici"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := svc.Load(ctx, "kishor")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Links, links) {
		t.Errorf("links = %+v, want %+v", got.Links, links)
	}
	if got.DefaultRedirect != "kishor@okicici" {
		t.Errorf("defaultRedirect = %q", got.DefaultRedirect)
	}
}

func TestSave_FullOverwrite(t *testing.T) {
	p := profileWith("kishor", "https://instagram.com/kishor")
	p.Links.Social["instagram"] = "https://instagram.com/kishor"
	p.Links.Payment["gpay"] = models.PaymentEntry{UPIID: "kishor@upi"}
	svc := NewProfileService(newMemProfiles(p), nil)
	ctx := context.Background()

	links := models.Links{Social: map[string]string{"youtube": "https://youtube.com/@kishor"}}
	if err := svc.Save(ctx, "kishor", links, ""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ := svc.Load(ctx, "kishor")
	if _, ok := got.Links.Social["instagram"]; ok {
		t.Error("old social link should be replaced")
	}
	if len(got.Links.Payment) != 0 {
		t.Errorf("payment entries should be cleared, got %+v", got.Links.Payment)
	}
	if got.DefaultRedirect != "" {
		t.Errorf("defaultRedirect = %q, want empty", got.DefaultRedirect)
	}
}

func TestSave_WritesThroughCache(t *testing.T) {
	repo := newMemProfiles(profileWith("kishor", "https://old.example.com"))
	cache := newMemCache()
	resolver := NewRedirectService(repo, cache)
	editor := NewProfileService(repo, cache)
	ctx := context.Background()

	if _, err := resolver.Resolve(ctx, "kishor"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := editor.Save(ctx, "kishor", models.Links{}, "https://new.example.com"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if cached := cache.data["kishor"]; cached.DefaultRedirect != "https://new.example.com" {
		t.Errorf("cached defaultRedirect = %q, want the saved value", cached.DefaultRedirect)
	}
	got, err := resolver.Resolve(ctx, "kishor")
	if err != nil || got != "https://new.example.com" {
		t.Fatalf("Resolve after save = %q, %v", got, err)
	}
	if len(cache.invalidated) != 0 {
		t.Errorf("invalidated = %v, want none when the write-through succeeds", cache.invalidated)
	}
}

func TestSave_CacheWriteFailureInvalidates(t *testing.T) {
	repo := newMemProfiles(profileWith("kishor", "https://old.example.com"))
	cache := newMemCache()
	resolver := NewRedirectService(repo, cache)
	editor := NewProfileService(repo, cache)
	ctx := context.Background()

	if _, err := resolver.Resolve(ctx, "kishor"); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	cache.setErr = errors.New("redis down")
	if err := editor.Save(ctx, "kishor", models.Links{}, "https://new.example.com"); err != nil {
		t.Fatalf("Save should not fail on cache errors: %v", err)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "kishor" {
		t.Errorf("invalidated = %v", cache.invalidated)
	}
	got, err := resolver.Resolve(ctx, "kishor")
	if err != nil || got != "https://new.example.com" {
		t.Fatalf("Resolve after save = %q, %v", got, err)
	}
}

func TestSave_Errors(t *testing.T) {
	svc := NewProfileService(newMemProfiles(), nil)
	if err := svc.Save(context.Background(), "ghost", models.Links{}, ""); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("unknown user: err = %v", err)
	}

	repo := newMemProfiles(profileWith("kishor", ""))
	repo.saveErr = errStorage
	svc = NewProfileService(repo, nil)
	if err := svc.Save(context.Background(), "kishor", models.Links{}, ""); !errors.Is(err, errStorage) {
		t.Fatalf("storage failure: err = %v", err)
	}
}
