package handlers

import "testing"

func TestParsePaginationParams(t *testing.T) {
	page, limit, err := parsePaginationParams("2", "50")
	if err != nil || page != 2 || limit != 50 {
		t.Fatalf("expected page=2 limit=50, got page=%d limit=%d err=%v", page, limit, err)
	}

	page, limit, err = parsePaginationParams("", "")
	if err != nil || page != 1 || limit != 20 {
		t.Fatalf("expected defaults page=1 limit=20, got page=%d limit=%d err=%v", page, limit, err)
	}

	if _, _, err := parsePaginationParams("0", "10"); err == nil {
		t.Fatal("expected error for page=0")
	}
	if _, _, err := parsePaginationParams("1", "nope"); err == nil {
		t.Fatal("expected error for non-numeric limit")
	}
}

func TestParseLimitSkip(t *testing.T) {
	limit, skip, err := parseLimitSkip("10", "30")
	if err != nil || limit != 10 || skip != 30 {
		t.Fatalf("expected limit=10 skip=30, got limit=%d skip=%d err=%v", limit, skip, err)
	}

	limit, skip, err = parseLimitSkip("", "")
	if err != nil || limit != 20 || skip != 0 {
		t.Fatalf("expected defaults limit=20 skip=0, got limit=%d skip=%d err=%v", limit, skip, err)
	}

	if _, _, err := parseLimitSkip("-1", ""); err == nil {
		t.Fatal("expected error for negative limit")
	}
	if _, _, err := parseLimitSkip("10", "-2"); err == nil {
		t.Fatal("expected error for negative skip")
	}
}
