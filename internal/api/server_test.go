package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	qaapi "github.com/futig/docqa-backend/internal/api/qa"
	"github.com/futig/docqa-backend/internal/entity"
	"go.uber.org/zap"
)

type stubUsecase struct {
	resp *entity.RunResponse
	err  error
	got  *entity.RunRequest
}

func (s *stubUsecase) Run(_ context.Context, req *entity.RunRequest) (*entity.RunResponse, error) {
	s.got = req
	return s.resp, s.err
}

func newTestRouter(uc *stubUsecase) http.Handler {
	return SetupRouter(RouterConfig{
		AuthToken:       "secret-token",
		GenerationModel: "gemini-1.5-flash",
		RequestTimeout:  time.Minute,
	}, qaapi.NewHandler(uc), nil, zap.NewNop())
}

func doRun(t *testing.T, h http.Handler, auth, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/hackrx/run", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"documents":"https://example.com/policy.pdf","questions":["What is covered?","How long?"]}`

func TestRun_Success(t *testing.T) {
	uc := &stubUsecase{resp: &entity.RunResponse{Answers: []string{"Defects are covered.", "24 months."}}}
	rec := doRun(t, newTestRouter(uc), "Bearer secret-token", validBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp entity.RunResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Answers) != 2 || resp.Answers[1] != "24 months." {
		t.Errorf("unexpected answers %v", resp.Answers)
	}
	if uc.got.Documents != "https://example.com/policy.pdf" || len(uc.got.Questions) != 2 {
		t.Errorf("request not passed through: %+v", uc.got)
	}
}

func TestRun_Auth(t *testing.T) {
	for _, auth := range []string{"", "Bearer wrong", "Basic secret-token", "secret-token"} {
		uc := &stubUsecase{}
		rec := doRun(t, newTestRouter(uc), auth, validBody)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("auth %q: expected 401, got %d", auth, rec.Code)
		}
		if uc.got != nil {
			t.Errorf("auth %q: usecase must not run", auth)
		}
	}

	rec := doRun(t, newTestRouter(&stubUsecase{resp: &entity.RunResponse{}}), "bearer secret-token", validBody)
	if rec.Code != http.StatusOK {
		t.Errorf("scheme should be case-insensitive, got %d", rec.Code)
	}
}

func TestRun_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{name: "malformed json", body: `{"documents":`, want: http.StatusBadRequest},
		{name: "validation", body: validBody, err: fmt.Errorf("%w: questions", entity.ErrMissingField), want: http.StatusBadRequest},
		{name: "too many questions", body: validBody, err: entity.ErrTooManyQuestions, want: http.StatusBadRequest},
		{name: "download", body: validBody, err: fmt.Errorf("download: %w", entity.ErrDownload), want: http.StatusInternalServerError},
		{name: "indexing", body: validBody, err: entity.ErrIndexing, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRun(t, newTestRouter(&stubUsecase{err: tt.err}), "Bearer secret-token", tt.body)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			var errResp entity.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if errResp.Error == "" {
				t.Errorf("expected error field")
			}
			if tt.want == http.StatusInternalServerError && !strings.HasPrefix(errResp.Message, "An internal processing error occurred: ") {
				t.Errorf("unexpected message %q", errResp.Message)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&stubUsecase{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var health entity.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := entity.HealthResponse{Status: "healthy", Version: "5.1.0", Model: "gemini-1.5-flash"}
	if health != want {
		t.Errorf("expected %+v, got %+v", want, health)
	}
}
