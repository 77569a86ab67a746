package helper

import "testing"

func TestBuildPagination(t *testing.T) {
	p := BuildPagination(45, 2, 20)
	if p.TotalPages != 3 {
		t.Fatalf("TotalPages = %d, want 3", p.TotalPages)
	}
	if !p.HasNext || !p.HasPrev {
		t.Fatalf("HasNext/HasPrev = %v/%v", p.HasNext, p.HasPrev)
	}

	empty := BuildPagination(0, 1, 20)
	if empty.TotalPages != 1 {
		t.Fatalf("empty TotalPages = %d, want 1", empty.TotalPages)
	}
	if empty.HasNext || empty.HasPrev {
		t.Fatal("empty result set must have no next/prev")
	}
}

func TestStatusToErrorCode(t *testing.T) {
	cases := map[int]string{
		400: "BAD_REQUEST",
		401: "UNAUTHORIZED",
		404: "NOT_FOUND",
		409: "CONFLICT",
		422: "VALIDATION_ERROR",
		502: "GATEWAY_UNAVAILABLE",
		503: "GATEWAY_UNAVAILABLE",
		500: "INTERNAL_ERROR",
		418: "ERROR",
	}
	for status, want := range cases {
		if got := statusToErrorCode(status); got != want {
			t.Errorf("statusToErrorCode(%d) = %q, want %q", status, got, want)
		}
	}
}
