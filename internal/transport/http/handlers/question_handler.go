package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/mkozic/askbox/internal/service"
	"github.com/mkozic/askbox/internal/transport/http/middleware"
	"github.com/mkozic/askbox/pkg/logger"
)

type QuestionHandler struct {
	questionService *service.QuestionService
}

func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

func (h *QuestionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreateQuestionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	q, err := h.questionService.Create(r.Context(), userID, input)
	if err != nil {
		var unknown *service.UnknownRecipientsError
		switch {
		case errors.Is(err, service.ErrEmptyQuestion):
			writeError(w, http.StatusBadRequest, "MISSING_TEXT", "Question text is required")
		case errors.Is(err, service.ErrInvalidPayload):
			writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Invalid visibility or identity value")
		case errors.Is(err, service.ErrMissingEndTime):
			writeError(w, http.StatusBadRequest, "INVALID_END_TIME", "A timed question needs a future end time")
		case errors.As(err, &unknown):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error": map[string]any{
					"code":          "UNKNOWN_RECIPIENTS",
					"message":       "Some recipient ids do not exist",
					"recipient_ids": unknown.IDs,
				},
			})
		default:
			logger.Errorf("create question: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, q)
}

func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	questions, err := h.questionService.ListQuestions(r.Context(), userID, pageParam(r))
	if err != nil {
		logger.Errorf("list questions: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, questions)
}

func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	questionID, err := uuid.Parse(r.PathValue("questionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid question ID")
		return
	}

	q, err := h.questionService.Get(r.Context(), userID, questionID)
	if err != nil {
		writeQuestionError(w, err, "get question")
		return
	}

	writeJSON(w, http.StatusOK, q)
}

// GetByPublicLink serves publicly shared questions; the link is the
// credential, so this route sits outside the auth middleware.
func (h *QuestionHandler) GetByPublicLink(w http.ResponseWriter, r *http.Request) {
	link := r.PathValue("publicLink")

	q, err := h.questionService.GetByPublicLink(r.Context(), link)
	if err != nil {
		if errors.Is(err, service.ErrQuestionNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Question not found")
		} else {
			logger.Errorf("get question by link: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, q)
}

func (h *QuestionHandler) ListAnswers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	questionID, err := uuid.Parse(r.PathValue("questionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid question ID")
		return
	}

	answers, err := h.questionService.ListAnswers(r.Context(), userID, questionID, pageParam(r))
	if err != nil {
		writeQuestionError(w, err, "list answers")
		return
	}

	writeJSON(w, http.StatusOK, answers)
}

func (h *QuestionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	questionID, err := uuid.Parse(r.PathValue("questionId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid question ID")
		return
	}

	var input struct {
		Answer string `json:"answer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	a, err := h.questionService.SubmitAnswer(r.Context(), userID, questionID, input.Answer)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyAnswer):
			writeError(w, http.StatusBadRequest, "MISSING_TEXT", "Answer text is required")
		case errors.Is(err, service.ErrQuestionClosed):
			writeError(w, http.StatusBadRequest, "CLOSED", "The answer window for this question has closed")
		case errors.Is(err, service.ErrAlreadyAnswered):
			writeError(w, http.StatusConflict, "ALREADY_ANSWERED", "You have already answered this question")
		default:
			writeQuestionError(w, err, "submit answer")
		}
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

func writeQuestionError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrQuestionNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Question not found")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "You do not have access to this question")
	default:
		logger.Errorf("%s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
