package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dailymath/dailymath/internal/apperr"
	"github.com/dailymath/dailymath/internal/auth"
	"github.com/dailymath/dailymath/internal/core"
	"github.com/dailymath/dailymath/internal/grading"
	"github.com/dailymath/dailymath/internal/identity"
)

const (
	maxImageBytes  = 10 << 20
	maxUploadBytes = grading.MaxImages*maxImageBytes + 1<<20
)

type contextKey string

const userIDKey contextKey = "userID"

// Services are the components the handlers call.
type Services struct {
	Users       *identity.Store
	Linker      *auth.Linker
	Questions   *core.QuestionService
	History     *core.HistoryService
	Submissions *core.SubmissionService
}

type APIHandler struct {
	svc Services
}

func NewAPIHandler(svc Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// IdentityMiddleware resolves the device's AppUser and stores its id in the
// request context.
func (h *APIHandler) IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.svc.Users.GetOrCreateUser(r.Context())
		if err != nil {
			log.Printf("Error in IdentityMiddleware: %v", err)
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, user.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.svc.Users.GetOrCreateUser(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type SessionResponse struct {
	UID       string    `json:"uid"`
	ExpiresAt time.Time `json:"expiresAt"`
	Anonymous bool      `json:"anonymous"`
}

func (h *APIHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Linker.EnsureAnonymousSignIn(r.Context())
	if err != nil {
		log.Printf("Error signing in anonymously: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{
		UID:       session.UID,
		ExpiresAt: session.ExpiresAt,
		Anonymous: session.Anonymous,
	})
}

func (h *APIHandler) DeleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Linker.SignOut(r.Context()); err != nil {
		log.Printf("Error signing out: %v", err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) DailyQuestionHandler(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Questions.DailyQuestion(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type SubmitResponse struct {
	ID string `json:"id"`
}

// SubmitHandler accepts multipart fields questionId, question and 1 to 5
// "images" files, in page order.
func (h *APIHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, fmt.Errorf("%w: invalid multipart body: %v", apperr.ErrValidation, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	images, err := readImages(r)
	if err != nil {
		writeError(w, err)
		return
	}

	id, err := h.svc.Submissions.Submit(r.Context(), core.SubmitRequest{
		UserID:     userID,
		QuestionID: strings.TrimSpace(r.FormValue("questionId")),
		Question:   strings.TrimSpace(r.FormValue("question")),
		Images:     images,
	})
	if err != nil {
		log.Printf("Error submitting solution for user %s: %v", userID, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SubmitResponse{ID: id})
}

func readImages(r *http.Request) ([]grading.Image, error) {
	files := r.MultipartForm.File["images"]
	if len(files) < grading.MinImages || len(files) > grading.MaxImages {
		return nil, fmt.Errorf("%w: between %d and %d images are required, got %d",
			apperr.ErrValidation, grading.MinImages, grading.MaxImages, len(files))
	}

	images := make([]grading.Image, 0, len(files))
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open image %d: %w", i+1, err)
		}
		data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read image %d: %w", i+1, err)
		}
		if len(data) > maxImageBytes {
			return nil, fmt.Errorf("%w: image %d is larger than %d bytes", apperr.ErrValidation, i+1, maxImageBytes)
		}
		mimeType := http.DetectContentType(data)
		if !strings.HasPrefix(mimeType, "image/") {
			return nil, fmt.Errorf("%w: file %d is %s, not an image", apperr.ErrValidation, i+1, mimeType)
		}
		images = append(images, grading.Image{MIMEType: mimeType, Data: data})
	}
	return images, nil
}

func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.History.History(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *APIHandler) ResultHandler(w http.ResponseWriter, r *http.Request) {
	h.writeResult(w, r, chi.URLParam(r, "resultID"))
}

// GradingResultHandler keeps the older link format working: the result id
// may arrive as ?id= or ?resultId=.
func (h *APIHandler) GradingResultHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("id")
	if id == "" {
		id = q.Get("resultId")
	}
	h.writeResult(w, r, id)
}

func (h *APIHandler) writeResult(w http.ResponseWriter, r *http.Request, resultID string) {
	result, err := h.svc.History.Result(r.Context(), userIDFrom(r.Context()), resultID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// LatestResultHandler responds with JSON null when the question has no result.
func (h *APIHandler) LatestResultHandler(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.History.LatestForQuestion(r.Context(), userIDFrom(r.Context()), chi.URLParam(r, "questionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError && !errors.Is(err, context.Canceled) {
		log.Printf("Internal error: %v", err)
	}
	writeJSON(w, status, errorResponse{Error: apperr.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
