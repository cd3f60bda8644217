package httpapi

import (
	"errors"
	"net/http"

	"authgate.org/internal/audit"
	"authgate.org/internal/auth"
	"authgate.org/internal/obs"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string          `json:"token"`
	SessionID string          `json:"session_id"`
	User      auth.PublicUser `json:"user"`
}

type logoutRequest struct {
	SessionID string `json:"session_id"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			obs.RecordRegistration("duplicate")
			writeError(w, r, http.StatusConflict, "email already registered")
		case errors.Is(err, auth.ErrInvalidInput):
			obs.RecordRegistration("error")
			writeError(w, r, http.StatusBadRequest, safeInputError(err))
		default:
			obs.RecordRegistration("error")
			writeEngineError(w, r, err)
		}
		return
	}

	obs.RecordRegistration("ok")
	_ = audit.LogEvent(r.Context(), "auth.user.registered", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	writeJSON(w, http.StatusCreated, user)
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := a.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			obs.RecordLogin("rejected")
			writeError(w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		obs.RecordLogin("error")
		writeEngineError(w, r, err)
		return
	}

	obs.RecordLogin("ok")
	_ = audit.LogEvent(r.Context(), "auth.user.login", map[string]any{
		"user_id": result.User.ID,
	})
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     result.Token,
		SessionID: result.SessionID,
		User:      result.User,
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req logoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.svc.Logout(r.Context(), req.SessionID); err != nil {
		if errors.Is(err, auth.ErrInvalidInput) {
			writeError(w, r, http.StatusBadRequest, safeInputError(err))
			return
		}
		writeEngineError(w, r, err)
		return
	}

	obs.RecordLogout()
	_ = audit.LogEvent(r.Context(), "auth.user.logout", nil)
	writeJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
}

// handleProfile serves the authenticated user's record: GET fetches, PUT
// updates name/email, DELETE removes the account. The bearer middleware has
// already verified the token and resolved the user id.
func (a *API) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "missing bearer token")
		return
	}

	switch r.Method {
	case http.MethodGet:
		user, err := a.svc.UserByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				writeError(w, r, http.StatusNotFound, "user not found")
				return
			}
			writeEngineError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)

	case http.MethodPut:
		var req struct {
			Name  *string `json:"name"`
			Email *string `json:"email"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		user, err := a.svc.UpdateProfile(r.Context(), userID, auth.UpdateParams{Name: req.Name, Email: req.Email})
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrUserNotFound):
				writeError(w, r, http.StatusNotFound, "user not found")
			case errors.Is(err, auth.ErrEmailTaken):
				writeError(w, r, http.StatusConflict, "email already registered")
			case errors.Is(err, auth.ErrInvalidInput):
				writeError(w, r, http.StatusBadRequest, safeInputError(err))
			default:
				writeEngineError(w, r, err)
			}
			return
		}
		_ = audit.LogEvent(r.Context(), "auth.user.updated", nil)
		writeJSON(w, http.StatusOK, user)

	case http.MethodDelete:
		if _, err := a.svc.DeleteUser(r.Context(), userID); err != nil {
			writeEngineError(w, r, err)
			return
		}
		_ = audit.LogEvent(r.Context(), "auth.user.deleted", nil)
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// writeEngineError maps unexpected engine failures to safe responses.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrStoreUnavailable) {
		writeError(w, r, http.StatusServiceUnavailable, "service temporarily unavailable")
		return
	}
	writeError(w, r, http.StatusInternalServerError, "internal error")
}

// safeInputError strips the sentinel prefix, leaving the human hint only.
func safeInputError(err error) string {
	msg := err.Error()
	const prefix = "auth: invalid input: "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return "invalid input"
}
