package storefront

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"Storefront/internal/session"
	"Storefront/pkg/kit"
)

type sessionView struct {
	SignedIn bool          `json:"signedIn"`
	User     *session.User `json:"user,omitempty"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetReq struct {
	Email string `json:"email"`
}

type resetConfirmReq struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func viewOf(u session.User) sessionView {
	u.IDToken = ""
	return sessionView{SignedIn: true, User: &u}
}

func (s *Server) getSession(w http.ResponseWriter, _ *http.Request) {
	u, ok := s.Session.CurrentUser()
	if !ok {
		kit.WriteJSON(w, http.StatusOK, sessionView{})
		return
	}
	kit.WriteJSON(w, http.StatusOK, viewOf(u))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if !s.decode(w, r, &req) {
		return
	}

	u, err := s.Session.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, viewOf(u))
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req session.RegisterForm
	if !s.decode(w, r, &req) {
		return
	}

	u, err := s.Session.Register(r.Context(), req)
	if err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, viewOf(u))
}

func (s *Server) passwordReset(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.Session.ResetPassword(r.Context(), req.Email); err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusAccepted, map[string]any{"sent": true})
}

func (s *Server) confirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmReq
	if !s.decode(w, r, &req) {
		return
	}

	if err := s.Resets.ConfirmPasswordReset(r.Context(), req.Token, req.Password); err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Session.SignOut(r.Context()); err != nil {
		s.writeSessionError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, sessionView{})
}

func (s *Server) writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *session.ValidationError
	if errors.As(err, &ve) {
		kit.WriteError(w, r, http.StatusBadRequest, ve.Message, map[string]any{"field": ve.Field})
		return
	}

	code := session.Code(err)
	status := http.StatusBadGateway
	switch code {
	case session.CodeInvalidEmail, session.CodeWeakPassword:
		status = http.StatusBadRequest
	case session.CodeWrongPassword, session.CodeInvalidCredential:
		status = http.StatusUnauthorized
	case session.CodeUserDisabled:
		status = http.StatusForbidden
	case session.CodeUserNotFound:
		status = http.StatusNotFound
	case session.CodeEmailAlreadyInUse:
		status = http.StatusConflict
	case session.CodeTooManyRequests:
		status = http.StatusTooManyRequests
	}
	if status == http.StatusBadGateway {
		s.logger().Warn("auth provider failed", zap.String("code", code), zap.Error(err))
	}

	var details any
	if code != "" {
		details = map[string]any{"code": code}
	}
	kit.WriteError(w, r, status, session.Message(err), details)
}
