package domain_test

import (
	"testing"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

func TestPaginate_FirstOfThreePages(t *testing.T) {
	info := domain.Paginate(1, 6, 15)

	if info.Offset != 0 {
		t.Fatalf("expected offset 0, got %d", info.Offset)
	}
	if info.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", info.TotalPages)
	}
	if info.NextPage == nil || *info.NextPage != 2 {
		t.Fatalf("expected next page 2, got %v", info.NextPage)
	}
	if info.PrevPage != nil {
		t.Fatalf("expected no prev page on first page, got %d", *info.PrevPage)
	}
}

func TestPaginate_MiddlePage(t *testing.T) {
	info := domain.Paginate(2, 6, 15)

	if info.Offset != 6 {
		t.Fatalf("expected offset 6, got %d", info.Offset)
	}
	if info.NextPage == nil || *info.NextPage != 3 {
		t.Fatalf("expected next page 3, got %v", info.NextPage)
	}
	if info.PrevPage == nil || *info.PrevPage != 1 {
		t.Fatalf("expected prev page 1, got %v", info.PrevPage)
	}
}

func TestPaginate_LastPage(t *testing.T) {
	info := domain.Paginate(3, 6, 15)

	if info.Offset != 12 {
		t.Fatalf("expected offset 12, got %d", info.Offset)
	}
	if info.NextPage != nil {
		t.Fatalf("expected no next page on last page, got %d", *info.NextPage)
	}
	if info.PrevPage == nil || *info.PrevPage != 2 {
		t.Fatalf("expected prev page 2, got %v", info.PrevPage)
	}
}

func TestPaginate_EmptyCollection(t *testing.T) {
	info := domain.Paginate(1, 6, 0)

	if info.TotalPages != 0 {
		t.Fatalf("expected 0 pages, got %d", info.TotalPages)
	}
	if info.NextPage != nil || info.PrevPage != nil {
		t.Fatal("expected no next/prev pages for empty collection")
	}
}

// Перебор сочетаний: next отсутствует только на последней странице
// и дальше, prev — только на первой.
func TestPaginate_Properties(t *testing.T) {
	for totalCount := 0; totalCount <= 40; totalCount++ {
		for limit := 1; limit <= 7; limit++ {
			for page := 1; page <= 10; page++ {
				info := domain.Paginate(page, limit, totalCount)

				if info.Offset != (page-1)*limit {
					t.Fatalf("page=%d limit=%d: expected offset %d, got %d", page, limit, (page-1)*limit, info.Offset)
				}

				wantNext := page < info.TotalPages
				if (info.NextPage != nil) != wantNext {
					t.Fatalf("page=%d limit=%d total=%d: next page presence mismatch", page, limit, totalCount)
				}
				wantPrev := page > 1
				if (info.PrevPage != nil) != wantPrev {
					t.Fatalf("page=%d limit=%d total=%d: prev page presence mismatch", page, limit, totalCount)
				}
			}
		}
	}
}

func TestNormalizePageParams(t *testing.T) {
	cases := []struct {
		page, limit  int
		defaultLimit int
		wantPage     int
		wantLimit    int
	}{
		{0, 0, 6, 1, 6},
		{-3, -1, 15, 1, 15},
		{2, 10, 6, 2, 10},
		{1, 0, 15, 1, 15},
	}

	for _, tc := range cases {
		page, limit := domain.NormalizePageParams(tc.page, tc.limit, tc.defaultLimit)
		if page != tc.wantPage || limit != tc.wantLimit {
			t.Fatalf("normalize(%d, %d, %d): expected (%d, %d), got (%d, %d)",
				tc.page, tc.limit, tc.defaultLimit, tc.wantPage, tc.wantLimit, page, limit)
		}
	}
}
