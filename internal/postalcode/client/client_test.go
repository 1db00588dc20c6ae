package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"cep_lookup/internal/lookup"
	"cep_lookup/internal/postalcode/transport"
	"cep_lookup/platform/apperr"
	"cep_lookup/platform/logger"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != searchPath || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req transport.SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.City != "Springfield" || req.RegionCode != "IL" {
			t.Errorf("unexpected request %+v", req)
		}
		_, _ = w.Write([]byte(`{"found":true,"code":"62701"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, logger.Discard())
	got, err := c.Search(context.Background(), lookup.Query{City: "Springfield", RegionCode: "IL"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != (lookup.LookupResult{Found: true, Code: "62701"}) {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestSaveSendsCandidateAsCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req transport.SaveRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if r.URL.Path != savePath || req.Code != "00000" {
			t.Errorf("unexpected request %s %+v", r.URL.Path, req)
		}
		_, _ = w.Write([]byte(`{"success":false,"message":"invalid code"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, logger.Discard())
	got, err := c.Save(context.Background(), lookup.SaveRequest{City: "Nowhere", RegionCode: "ZZ", CandidateCode: "00000"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got.Success || got.Message != "invalid code" {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestTransportFailuresAreUnavailable(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
		}},
		{"bad request", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"message":"nope"}`))
		}},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			c := New(srv.URL, logger.Discard())
			_, err := c.Search(context.Background(), lookup.Query{City: "a", RegionCode: "b"})
			if !apperr.Is(err, apperr.KindUnavailable) {
				t.Fatalf("expected unavailable, got %v", err)
			}
			_, err = c.Save(context.Background(), lookup.SaveRequest{City: "a", RegionCode: "b", CandidateCode: "c"})
			if !apperr.Is(err, apperr.KindUnavailable) {
				t.Fatalf("expected unavailable, got %v", err)
			}
		})
	}
}

func TestUnreachableServiceIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, logger.Discard())
	_, err := c.Search(context.Background(), lookup.Query{City: "a", RegionCode: "b"})
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
