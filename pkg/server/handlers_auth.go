package server

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/Fepozopo/lunaratelier/pkg/auth"
	"github.com/Fepozopo/lunaratelier/pkg/store"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type userSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type authResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    userSummary `json:"user"`
}

func summarize(u store.User) userSummary {
	return userSummary{ID: u.ID, Email: u.Email, Name: u.Name}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !s.decodeOrReject(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" || strings.TrimSpace(in.Name) == "" {
		writeError(w, http.StatusBadRequest, "All fields required")
		return
	}
	if utf8.RuneCountInString(in.Password) < auth.MinPasswordLength {
		writeError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		writeError(w, http.StatusBadRequest, "Password must be at most 72 bytes")
		return
	}
	ctx := r.Context()
	if _, err := s.store.UserByEmail(ctx, in.Email); err == nil {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		s.serverError(w, "Server error during signup", err)
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		s.serverError(w, "Server error during signup", err)
		return
	}
	u, err := s.store.CreateUser(ctx, in.Email, in.Name, hash)
	if errors.Is(err, store.ErrEmailTaken) {
		writeError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if err != nil {
		s.serverError(w, "Server error during signup", err)
		return
	}
	token, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		s.serverError(w, "Server error during signup", err)
		return
	}
	s.log.Info("user signed up", zap.String("user_id", u.ID))
	writeJSON(w, http.StatusCreated, authResponse{Message: "User created successfully", Token: token, User: summarize(u)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !s.decodeOrReject(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password required")
		return
	}
	u, err := s.store.UserByEmail(r.Context(), in.Email)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		s.serverError(w, "Server error during login", err)
		return
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token, err := s.issuer.Issue(u.ID, u.Email)
	if err != nil {
		s.serverError(w, "Server error during login", err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Message: "Login successful", Token: token, User: summarize(u)})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.UserByID(r.Context(), userID(r))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.serverError(w, "Server error", err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) serverError(w http.ResponseWriter, msg string, err error) {
	s.log.Error(msg, zap.Error(err))
	writeError(w, http.StatusInternalServerError, msg)
}
