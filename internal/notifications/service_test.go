package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wares/internal/config"
	"wares/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyPublished(context.Background(), "Forklift", 42); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceSendsHeadersAndBody(t *testing.T) {
	var gotTitle, gotTags, gotPriority, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		gotPriority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyPublished(context.Background(), "Toyota Forklift", 42); err != nil {
		t.Fatalf("NotifyPublished returned error: %v", err)
	}
	if gotTitle != "Wares - Published" {
		t.Fatalf("unexpected title %q", gotTitle)
	}
	if gotTags != "wares,publish,completed" {
		t.Fatalf("unexpected tags %q", gotTags)
	}
	if gotPriority != "high" {
		t.Fatalf("unexpected priority %q", gotPriority)
	}
	if !strings.Contains(gotBody, "Toyota Forklift") || !strings.Contains(gotBody, "#42") {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestNtfyServicePartialListsFailedSteps(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyPublishedPartial(context.Background(), "Forklift", 42, []string{"upload_images"}); err != nil {
		t.Fatalf("NotifyPublishedPartial returned error: %v", err)
	}
	if !strings.Contains(gotBody, "upload_images") {
		t.Fatalf("expected failed step listed, got %q", gotBody)
	}
}

func TestNtfyServiceSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic rejected", http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	err := svc.NotifyPublishFailed(context.Background(), "Forklift", "backend down")
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected status in error, got %v", err)
	}
}
