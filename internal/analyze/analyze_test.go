package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClient_Analyze(t *testing.T) {
	t.Run("posts json and decodes reply", func(t *testing.T) {
		var gotBody map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/analyze" {
				t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Errorf("decode body: %v", err)
			}
			_, _ = io.WriteString(w, `{"text":"ok","svg":"<svg/>"}`)
		}))
		defer srv.Close()

		c := NewClient(srv.URL + "/")
		resp, err := c.Analyze(context.Background(), Request{
			GitHubLink:   "https://github.com/org/repo",
			ForceInitial: true,
		})
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if diff := cmp.Diff(&Response{Text: "ok", SVG: "<svg/>"}, resp); diff != "" {
			t.Errorf("response mismatch (-want +got):\n%s", diff)
		}

		want := map[string]any{
			"github_link":   "https://github.com/org/repo",
			"history":       []any{},
			"force_initial": true,
		}
		if diff := cmp.Diff(want, gotBody); diff != "" {
			t.Errorf("body mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("non-2xx yields HTTPError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Analyze(context.Background(), Request{})
		var httpErr *HTTPError
		if !errors.As(err, &httpErr) {
			t.Fatalf("error = %v, want *HTTPError", err)
		}
		if httpErr.StatusCode != 500 || err.Error() != "HTTP error! status: 500" {
			t.Errorf("error = %q", err)
		}
	})

	t.Run("unreachable backend yields ErrNetwork", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewClient(url).Analyze(context.Background(), Request{})
		if !errors.Is(err, ErrNetwork) {
			t.Errorf("error = %v, want ErrNetwork", err)
		}
	})

	t.Run("malformed body is a decode error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, "not json")
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL).Analyze(context.Background(), Request{})
		if err == nil || !strings.Contains(err.Error(), "decoding response") {
			t.Errorf("error = %v", err)
		}
	})
}

func TestRequest_JSON(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "send omits navigation fields",
			req: Request{
				GitHubLink: "l",
				History:    []HistoryMessage{{Role: "user", Content: "hi"}},
			},
			want: `{"github_link":"l","history":[{"role":"user","content":"hi"}],"force_initial":false}`,
		},
		{
			name: "drill carries module and path",
			req: Request{
				GitHubLink:      "l",
				History:         []HistoryMessage{},
				DrillDownModule: "parser",
				CurrentPath:     []string{"parser"},
			},
			want: `{"github_link":"l","history":[],"force_initial":false,"drill_down_module":"parser","current_path":["parser"]}`,
		},
		{
			name: "back sends empty path",
			req: Request{
				GitHubLink:   "l",
				History:      []HistoryMessage{},
				ForceInitial: true,
				CurrentPath:  []string{},
			},
			want: `{"github_link":"l","history":[],"force_initial":true,"current_path":[]}`,
		},
		{
			name: "history keeps svg",
			req: Request{
				GitHubLink: "l",
				History:    []HistoryMessage{{Role: "assistant", Content: "x", SVG: "<svg/>"}},
			},
			want: `{"github_link":"l","history":[{"role":"assistant","content":"x","svg":"<svg/>"}],"force_initial":false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.req)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	c := NewClient(srv.URL)
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	srv.Close()
	if err := c.Ping(context.Background()); !errors.Is(err, ErrNetwork) {
		t.Errorf("Ping() after close error = %v, want ErrNetwork", err)
	}
}
