package domain

import (
	"errors"
	"testing"
)

func TestQueueItem_IsLive(t *testing.T) {
	live := QueueItem{StreamType: StreamTypeLiveStream}
	video := QueueItem{StreamType: StreamTypeVideo}

	if !live.IsLive() {
		t.Error("expected IsLive() to return true for live stream")
	}
	if video.IsLive() {
		t.Error("expected IsLive() to return false for video")
	}
}

func TestPage_HasNextPage(t *testing.T) {
	var nilPage *Page

	tests := []struct {
		name     string
		page     *Page
		expected bool
	}{
		{"nil page", nilPage, false},
		{"empty token", &Page{}, false},
		{"token present", &Page{NextPage: "p2"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.HasNextPage(); got != tt.expected {
				t.Errorf("HasNextPage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestInfo_FirstPage(t *testing.T) {
	info := &Info{
		ServiceID:    ServiceSoundCloud,
		URL:          "https://soundcloud.com/artist/sets/a",
		RelatedItems: []QueueItem{{URL: "a"}, {URL: "b"}},
		NextPage:     "p2",
		Errors:       []error{&ItemError{Message: "broken"}},
	}

	page := info.FirstPage()

	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.NextPage != "p2" {
		t.Errorf("expected next page 'p2', got %q", page.NextPage)
	}
	if len(page.Errors) != 1 {
		t.Errorf("expected 1 item error, got %d", len(page.Errors))
	}

	page.Items[0].URL = "changed"
	if info.RelatedItems[0].URL != "a" {
		t.Error("expected FirstPage to copy items")
	}

	src := info.Source()
	if src.ServiceID != ServiceSoundCloud || src.URL != info.URL {
		t.Errorf("unexpected source %+v", src)
	}
}

func TestItemError_Error(t *testing.T) {
	withURL := &ItemError{URL: "https://x/1", Message: "unavailable"}
	withoutURL := &ItemError{Message: "unavailable"}

	if got := withURL.Error(); got != "https://x/1: unavailable" {
		t.Errorf("unexpected message %q", got)
	}
	if got := withoutURL.Error(); got != "unavailable" {
		t.Errorf("unexpected message %q", got)
	}

	var target *ItemError
	if !errors.As(error(withURL), &target) {
		t.Error("expected errors.As to match *ItemError")
	}
}
