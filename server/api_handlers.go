package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/ideathon-portal/internal/errors"
	"github.com/jrsteele09/ideathon-portal/server/flowrepo"
	"github.com/jrsteele09/ideathon-portal/token"
)

type sessionSummary struct {
	Authenticated bool       `json:"authenticated"`
	Loading       bool       `json:"loading"`
	Admin         bool       `json:"admin"`
	Expired       bool       `json:"expired"`
	Role          token.Role `json:"role,omitempty"`
	Email         string     `json:"email,omitempty"`
}

// SessionSummaryHandler tells the landing page whether to offer "Dashboard" or "Login".
func (s *Server) SessionSummaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		store := sessionFrom(r)
		summary := sessionSummary{
			Authenticated: store.IsAuthenticated(),
			Loading:       store.IsLoading(),
			Admin:         store.IsAdmin(ctx),
			Expired:       store.IsExpired(ctx),
			Role:          store.Role(ctx),
			Email:         store.Email(ctx),
		}
		if store.LegacyAdmin(ctx) {
			summary.Email = store.AdminEmail(ctx)
		}
		writeJSON(w, r, http.StatusOK, summary)
	}
}

// otpInput is one keystroke on the digit boxes.
type otpInput struct {
	Op    string `json:"op"` // digit, backspace or paste
	Index int    `json:"index"`
	Value string `json:"value"`
}

// OTPHandler reports (GET) or edits (POST) the digit entry of this tab's login or
// registration flow. Every edit answers with the resulting state.
func (s *Server) OTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind := flowrepo.Kind(r.PathValue("flow"))
		f, release, ok := s.otpFlow(sessionFrom(r), kind)
		if !ok {
			writeJSONError(w, r, http.StatusNotFound, apperrors.ErrFlowNotFound)
			return
		}
		defer release()

		if r.Method == http.MethodPost {
			var in otpInput
			if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&in); err != nil {
				writeJSONError(w, r, http.StatusBadRequest, apperrors.ErrInvalidInput)
				return
			}
			entry := f.Entry()
			switch in.Op {
			case "digit":
				entry.SetDigit(in.Index, in.Value)
			case "backspace":
				entry.HandleBackspace(in.Index)
			case "paste":
				entry.HandlePaste(in.Value, in.Index)
			default:
				writeJSONError(w, r, http.StatusBadRequest, apperrors.ErrInvalidInput)
				return
			}
		}
		writeJSON(w, r, http.StatusOK, newOTPView(f, kind))
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logError(r.Method, r.URL.Path, err)
	}
}

func writeJSONError(w http.ResponseWriter, r *http.Request, status int, err error) {
	writeJSON(w, r, status, map[string]string{"error": err.Error()})
}
