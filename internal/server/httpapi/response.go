package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/kalahboard/internal/common"
	"github.com/dmitrijs2005/kalahboard/internal/server/models"
	"github.com/dmitrijs2005/kalahboard/internal/server/services"
)

const internalErrorMessage = "Internal server error"

// writeJSON marshals v to JSON and writes it with the given status code.
// If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeUnauthorized answers 401 with a bearer challenge.
func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", common.BearerScheme)
	writeError(w, http.StatusUnauthorized, detail)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type registerRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// userResponse is the public view of a user; the password hash never
// leaves the server.
type userResponse struct {
	ID       string  `json:"id"`
	UserName string  `json:"username"`
	Email    string  `json:"email"`
	Avatar   *string `json:"avatar"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type updateProfileResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type protectedResponse struct {
	Message string `json:"message"`
	User    string `json:"user"`
}

type avatarUploadResponse struct {
	AvatarURL string `json:"avatar_url"`
	FullURL   string `json:"full_url"`
}

type leaderboardEntryRequest struct {
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
	Duration   int    `json:"duration"`
	Avatar     string `json:"avatar,omitempty"`
}

type leaderboardEntryResponse struct {
	ID         string `json:"id"`
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
	Duration   int    `json:"duration"`
	Avatar     string `json:"avatar"`
}

func toUserResponse(u *models.User) userResponse {
	resp := userResponse{
		ID:       u.ID,
		UserName: u.UserName,
		Email:    u.Email,
	}
	if u.Avatar != "" {
		avatar := u.Avatar
		resp.Avatar = &avatar
	}
	return resp
}

func toLeaderboardEntryResponse(e models.LeaderboardEntry) leaderboardEntryResponse {
	return leaderboardEntryResponse{
		ID:         e.ID,
		PlayerName: e.PlayerName,
		Score:      e.Score,
		Duration:   e.Duration,
		Avatar:     e.Avatar,
	}
}

func toAvatarUploadResponse(u *services.AvatarUpload) avatarUploadResponse {
	return avatarUploadResponse{AvatarURL: u.AvatarURL, FullURL: u.FullURL}
}
