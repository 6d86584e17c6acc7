package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWordsProviderCompletesFromBuffer(t *testing.T) {
	p := &WordsProvider{}
	resp, err := p.Fetch(context.Background(), Request{
		Lines: []string{"tracker := NewLineTracker()", "track"},
		Line:  1,
		Col:   5,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(resp.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1: %+v", len(resp.Recommendations), resp.Recommendations)
	}
	if resp.Recommendations[0].Text != "er" {
		t.Fatalf("got %q, want %q", resp.Recommendations[0].Text, "er")
	}
}

func TestWordsProviderRanksByFrequency(t *testing.T) {
	p := &WordsProvider{}
	resp, err := p.Fetch(context.Background(), Request{
		Lines: []string{"alp", "alpine alpine alpha"},
		Line:  0,
		Col:   3,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	got := make([]string, len(resp.Recommendations))
	for i, r := range resp.Recommendations {
		got[i] = r.Text
	}
	want := []string{"ine", "ha"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestWordsProviderSkipsShortPrefixes(t *testing.T) {
	p := &WordsProvider{}
	resp, err := p.Fetch(context.Background(), Request{
		Lines: []string{"a", "alpha apex"},
		Line:  0,
		Col:   1,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(resp.Recommendations) != 0 {
		t.Fatalf("got %d recommendations for a 1-rune prefix, want 0", len(resp.Recommendations))
	}
}

func TestWordsProviderOutOfRangeCaret(t *testing.T) {
	p := &WordsProvider{}
	resp, err := p.Fetch(context.Background(), Request{Lines: []string{"x"}, Line: 5, Col: 0})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(resp.Recommendations) != 0 {
		t.Fatal("out-of-range caret should yield no recommendations")
	}
}

func TestHTTPProviderRequestShape(t *testing.T) {
	var gotAuth string
	var gotWire completionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("got method %s, want POST", r.Method)
		}
		if r.URL.Path != "/v1/completions" {
			t.Errorf("got path %s, want /v1/completions", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotWire); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"completions": []map[string]string{{"text": "Println(\"hi\")"}, {"text": ""}},
			"model":       "demo-model",
		})
	}))
	defer srv.Close()

	p := NewHTTPProvider(HTTPProviderConfig{URL: srv.URL, Token: "sekrit", Model: "demo-model"})
	resp, err := p.Fetch(context.Background(), Request{
		Path:    "main.go",
		Lines:   []string{"fmt."},
		Line:    0,
		Col:     4,
		Trigger: TriggerOnDemand,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotAuth != "Bearer sekrit" {
		t.Fatalf("got auth %q, want bearer token", gotAuth)
	}
	if gotWire.CursorRow != 1 {
		t.Fatalf("got cursor_row %d, want 1 (1-indexed on the wire)", gotWire.CursorRow)
	}
	if gotWire.Trigger != string(TriggerOnDemand) {
		t.Fatalf("got trigger %q, want %q", gotWire.Trigger, TriggerOnDemand)
	}

	// Empty completion texts are dropped.
	if len(resp.Recommendations) != 1 {
		t.Fatalf("got %d recommendations, want 1", len(resp.Recommendations))
	}
	if resp.Model != "demo-model" {
		t.Fatalf("got model %q, want %q", resp.Model, "demo-model")
	}
}

func TestHTTPProviderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPProvider(HTTPProviderConfig{URL: srv.URL})
	_, err := p.Fetch(context.Background(), Request{Lines: []string{""}})
	if err == nil {
		t.Fatal("expected error for a 500 response")
	}
}
