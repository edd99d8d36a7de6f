package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/kalahboard/internal/common"
	"github.com/dmitrijs2005/kalahboard/internal/server/models"
)

const (
	maxJSONBody      = 1 << 20
	avatarFormField  = "avatar"
	multipartMemory  = 1 << 20
	multipartOverrun = 1 << 20

	avatarTooLargeMessage = "Avatar file is too large"
)

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Welcome to Kalah Game API"})
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	user, err := s.svc.Auth.Register(r.Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrConflict):
			writeError(w, http.StatusBadRequest, "Username or email already registered")
		case errors.Is(err, common.ErrValidation):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, internalErrorMessage)
		}
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

// handleToken is the OAuth2 password grant: form fields username and password.
func (s *HTTPServer) handleToken(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid form body")
		return
	}

	userName, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if userName == "" || !r.PostForm.Has("password") {
		writeError(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	token, err := s.svc.Auth.Login(r.Context(), userName, password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			writeUnauthorized(w, "Incorrect username or password")
			return
		}
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: common.TokenType})
}

func (s *HTTPServer) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserResponse(userFromContext(r.Context())))
}

func (s *HTTPServer) handleProtected(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, protectedResponse{
		Message: "This is a protected route",
		User:    userFromContext(r.Context()).UserName,
	})
}

func (s *HTTPServer) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	user, err := s.svc.Profiles.UpdateProfile(r.Context(), userFromContext(r.Context()), models.ProfileUpdate{
		UserName: req.UserName,
		Email:    req.Email,
		Avatar:   req.Avatar,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUserNameTaken):
			writeError(w, http.StatusBadRequest, "Username already exists")
		case errors.Is(err, common.ErrEmailTaken):
			writeError(w, http.StatusBadRequest, "Email already exists")
		case errors.Is(err, common.ErrConflict):
			writeError(w, http.StatusBadRequest, "Username or email already registered")
		case errors.Is(err, common.ErrValidation):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, common.ErrUnauthorized):
			writeUnauthorized(w, "Could not validate credentials")
		default:
			writeError(w, http.StatusInternalServerError, internalErrorMessage)
		}
		return
	}

	writeJSON(w, http.StatusOK, updateProfileResponse{
		Message: "Profile updated successfully",
		User:    toUserResponse(user),
	})
}

func (s *HTTPServer) handleUploadAvatar(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxAvatarSize+multipartOverrun)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, avatarTooLargeMessage)
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "invalid multipart body")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(avatarFormField)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "avatar file is required")
		return
	}
	defer file.Close()

	upload, err := s.svc.Avatars.Upload(r.Context(), userFromContext(r.Context()), header.Filename, header.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrAvatarTooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, avatarTooLargeMessage)
		case errors.Is(err, common.ErrValidation):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, common.ErrUnauthorized):
			writeUnauthorized(w, "Could not validate credentials")
		default:
			writeError(w, http.StatusInternalServerError, "Error uploading avatar")
		}
		return
	}

	writeJSON(w, http.StatusOK, toAvatarUploadResponse(upload))
}

func (s *HTTPServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Leaderboard.Top(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching leaderboard")
		return
	}

	resp := make([]leaderboardEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toLeaderboardEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleAddLeaderboardEntry(w http.ResponseWriter, r *http.Request) {
	var req leaderboardEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	entry, err := s.svc.Leaderboard.Add(r.Context(), models.LeaderboardEntry{
		PlayerName: req.PlayerName,
		Score:      req.Score,
		Duration:   req.Duration,
		Avatar:     req.Avatar,
	})
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Error adding leaderboard entry")
		return
	}

	writeJSON(w, http.StatusOK, toLeaderboardEntryResponse(*entry))
}
