package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		url  string
		want string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?list=PL123&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://example.com/watch?v=dQw4w9WgXcQ", ""},
		{"not a url", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ExtractVideoID(tc.url); got != tc.want {
			t.Fatalf("ExtractVideoID(%q): got=%q want=%q", tc.url, got, tc.want)
		}
	}
}

func TestEmbedLink(t *testing.T) {
	t.Parallel()

	if got := EmbedLink("https://youtu.be/dQw4w9WgXcQ"); got != "https://www.youtube.com/embed/dQw4w9WgXcQ" {
		t.Fatalf("EmbedLink: got=%q", got)
	}
	if got := EmbedLink("https://example.com/nope"); got != "" {
		t.Fatalf("EmbedLink for invalid url: got=%q want empty", got)
	}
}

func TestParseISODuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"PT3M33S", 213, false},
		{"PT1H2M3S", 3723, false},
		{"PT45S", 45, false},
		{"PT2H", 7200, false},
		{"P1DT2H", 0, true},
		{"3m33s", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseISODuration(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseISODuration(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseISODuration(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseISODuration(%q): got=%d want=%d", tc.in, got, tc.want)
		}
	}
}

func TestDurationQueriesDataAPI(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/videos" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("id") != "dQw4w9WgXcQ" || q.Get("part") != "contentDetails" || q.Get("key") != "test-key" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"items": [{"contentDetails": {"duration": "PT3M33S"}}]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	got, err := c.Duration(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if got != 213 {
		t.Fatalf("duration: got=%d want=213", got)
	}
}

func TestDurationUnknownVideo(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	if _, err := c.Duration(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown video")
	}
}
