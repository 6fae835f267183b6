package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vinaypatel8092/VideoTube/internal/accounts"
	"github.com/vinaypatel8092/VideoTube/internal/auth"
	"github.com/vinaypatel8092/VideoTube/internal/logging"
	"github.com/vinaypatel8092/VideoTube/internal/models"
)

// UserHandler implements registration, session and profile endpoints.
type UserHandler struct {
	Sessions SessionManager
	Accounts AccountService
	Queries  Queries
	Cookies  CookieConfig
	Uploads  UploadConfig
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type accountRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Register handles POST /api/v1/users/register. The avatar and optional
// cover image arrive as multipart files.
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	form, err := h.Uploads.readForm(w, r, "avatar", "coverImage")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	user, err := h.Accounts.Register(ctx, accounts.RegisterInput{
		FullName:       form.value("fullName"),
		Email:          form.value("email"),
		Username:       form.value("username"),
		Password:       form.value("password"),
		AvatarPath:     form.file("avatar"),
		CoverImagePath: form.file("coverImage"),
	})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("user registered", "userId", user.ID)
	respondJSON(ctx, w, http.StatusCreated, user, "User Registered Successfully")
}

// Login handles POST /api/v1/users/login.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}

	result, err := h.Sessions.Login(ctx, auth.LoginInput{Username: req.Username, Email: req.Email, Password: req.Password})
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	h.Cookies.setSession(w, result.Tokens)
	respondOK(ctx, w, loginResponse{
		User:         result.User,
		AccessToken:  result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	}, "User logged In Successfully")
}

// Logout handles POST /api/v1/users/logout.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.Sessions.Logout(ctx, user.ID); err != nil {
		respondError(ctx, w, err)
		return
	}
	h.Cookies.clearSession(w)
	respondOK(ctx, w, struct{}{}, "User Logged Out")
}

// Refresh handles POST /api/v1/users/refresh-token. The token is read from
// the refreshToken cookie, falling back to the request body.
func (h UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := ""
	if cookie, err := r.Cookie(auth.RefreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" && r.ContentLength != 0 {
		var req refreshRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(ctx, w, err)
			return
		}
		token = req.RefreshToken
	}

	tokens, err := h.Sessions.Refresh(ctx, token)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	h.Cookies.setSession(w, tokens)
	respondOK(ctx, w, tokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, "Access Token Refreshed")
}

// ChangePassword handles PATCH /api/v1/users/password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	if err := h.Sessions.ChangePassword(ctx, user.ID, req.OldPassword, req.NewPassword); err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, struct{}{}, "Password changed successfully")
}

// Current handles GET /api/v1/users/current-user.
func (h UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	respondOK(r.Context(), w, user.Sanitized(), "Current User Fetched Successfully")
}

// UpdateAccount handles PATCH /api/v1/users/account.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	var req accountRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(ctx, w, err)
		return
	}
	updated, err := h.Accounts.UpdateAccount(ctx, user.ID, accounts.AccountInput{FullName: req.FullName, Email: req.Email})
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, updated, "Account details updated successfully")
}

// UpdateAvatar handles PATCH /api/v1/users/avatar.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "avatar", h.Accounts.UpdateAvatar, "Avatar Image updated successfully")
}

// UpdateCoverImage handles PATCH /api/v1/users/cover-image.
func (h UserHandler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.replaceImage(w, r, "coverImage", h.Accounts.UpdateCoverImage, "Cover Image updated successfully")
}

type imageUpdate func(ctx context.Context, userID, localPath string) (models.User, error)

func (h UserHandler) replaceImage(w http.ResponseWriter, r *http.Request, field string, update imageUpdate, message string) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	form, err := h.Uploads.readMultipart(w, r, field)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	updated, err := update(ctx, user.ID, form.file(field))
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, updated, message)
}

// Channel handles GET /api/v1/users/channel/{username}.
func (h UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	profile, err := h.Queries.ChannelProfile(ctx, chi.URLParam(r, "username"), viewer.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, profile, "User channel fetched successfully")
}

// History handles GET /api/v1/users/history.
func (h UserHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := currentUser(r)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	videos, err := h.Queries.WatchHistory(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	respondOK(ctx, w, videos, "Watch history fetched successfully")
}
