package fetch

import (
	"context"
	"net/http"
	"testing"

	"github.com/soraredata/auction-tracker/internal/testutil"
)

func TestFetchGroup_Success(t *testing.T) {
	mock := testutil.NewMockSorare()
	defer mock.Close()

	mock.SetHandler(func(req testutil.CapturedRequest) (int, string) {
		if !req.IsBatch() {
			t.Errorf("expected batch request, got variables %v", req.Variables)
		}
		return http.StatusOK, testutil.BatchPageBody(
			[]testutil.Entry{
				testutil.Sale("2026-01-02T00:00:00Z", 1000),
				testutil.Sale("2026-01-01T00:00:00Z", 1100),
			},
			[]testutil.Entry{},
		)
	})

	f := NewBatchFetcher(newTestClient(mock), fastThrottler(), 20)
	outcomes, err := f.FetchGroup(context.Background(), []string{"alpha-one", "beta-two"})
	if err != nil {
		t.Fatalf("FetchGroup: %v", err)
	}

	if o := outcomes["alpha-one"]; o.Rejected || len(o.Records) != 2 {
		t.Errorf("alpha-one outcome = %+v, want 2 records", o)
	}
	if o := outcomes["beta-two"]; o.Rejected || len(o.Records) != 0 {
		t.Errorf("beta-two outcome = %+v, want 0 records", o)
	}
}

func TestFetchGroup_UniformBudgetFallback(t *testing.T) {
	mock := testutil.NewMockSorare()
	defer mock.Close()

	mock.SetHandler(func(req testutil.CapturedRequest) (int, string) {
		return http.StatusOK, testutil.ComplexityErrorBody()
	})

	f := NewBatchFetcher(newTestClient(mock), fastThrottler(), 20)
	slugs := []string{"alpha-one", "beta-two", "gamma-three"}
	outcomes, err := f.FetchGroup(context.Background(), slugs)
	if err != nil {
		t.Fatalf("FetchGroup: %v", err)
	}

	// The batch either fully succeeds or fully falls back, never a mix.
	for _, slug := range slugs {
		o, ok := outcomes[slug]
		if !ok {
			t.Fatalf("no outcome for %s", slug)
		}
		if !o.Rejected {
			t.Errorf("%s not marked rejected", slug)
		}
		if len(o.Records) != 0 {
			t.Errorf("%s carries records alongside rejection: %v", slug, o.Records)
		}
	}
}

func TestFetchGroup_DealFiltering(t *testing.T) {
	mock := testutil.NewMockSorare()
	defer mock.Close()

	mock.SetHandler(func(req testutil.CapturedRequest) (int, string) {
		return http.StatusOK, testutil.BatchPageBody(
			[]testutil.Entry{
				testutil.Sale("2026-01-02T00:00:00Z", 1000),
				testutil.Observation("2026-01-01T00:00:00Z", 900),
			},
		)
	})

	f := NewBatchFetcher(newTestClient(mock), fastThrottler(), 20)
	outcomes, err := f.FetchGroup(context.Background(), []string{"alpha-one"})
	if err != nil {
		t.Fatalf("FetchGroup: %v", err)
	}

	if len(outcomes["alpha-one"].Records) != 1 {
		t.Errorf("records = %d, want 1 (observation filtered)", len(outcomes["alpha-one"].Records))
	}
}

func TestFetchGroup_APIErrorYieldsEmptySuccess(t *testing.T) {
	mock := testutil.NewMockSorare()
	defer mock.Close()

	mock.SetHandler(func(req testutil.CapturedRequest) (int, string) {
		return http.StatusOK, testutil.APIErrorBody("Player not found")
	})

	f := NewBatchFetcher(newTestClient(mock), fastThrottler(), 20)
	outcomes, err := f.FetchGroup(context.Background(), []string{"no-such-player"})
	if err != nil {
		t.Fatalf("FetchGroup: %v", err)
	}

	o := outcomes["no-such-player"]
	if o.Rejected {
		t.Error("non-budget error marked as rejection")
	}
	if len(o.Records) != 0 {
		t.Errorf("records = %d, want 0", len(o.Records))
	}
}

func TestFetchGroup_TransportFailureIsFatal(t *testing.T) {
	mock := testutil.NewMockSorare()
	defer mock.Close()

	mock.SetHandler(func(req testutil.CapturedRequest) (int, string) {
		return http.StatusBadGateway, "bad gateway"
	})

	f := NewBatchFetcher(newTestClient(mock), fastThrottler(), 20)
	if _, err := f.FetchGroup(context.Background(), []string{"alpha-one"}); err == nil {
		t.Fatal("FetchGroup succeeded on HTTP 502, want error")
	}
}
