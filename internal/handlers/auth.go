package handlers

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mirador-dev/mirador/internal/auth"
	"github.com/mirador-dev/mirador/internal/models"
	"github.com/mirador-dev/mirador/internal/store"
	"github.com/mirador-dev/mirador/internal/types"
	"github.com/mirador-dev/mirador/internal/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	FullName *string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// cookieDomain is read per call so a DOMAIN loaded from .env in main
// is honored; a package-level read would run before godotenv.Load.
func cookieDomain() string {
	return os.Getenv("DOMAIN")
}

func (h *Handler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	_, err := h.Profiles.GetByEmail(ctx.Request.Context(), req.Email)

	if err == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Email already exists"})
		return
	}

	if !errors.Is(err, store.ErrNotFound) {
		respondStoreError(ctx, "Failed to check existing profile", err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		logrus.WithError(err).Error("Failed to hash password")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	profile := models.Profile{
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         types.RoleViewer,
		PasswordHash: string(passwordHash),
	}

	if err := h.Profiles.Create(ctx.Request.Context(), &profile); err != nil {
		respondStoreError(ctx, "Failed to create profile", err)
		return
	}

	token, err := auth.GenerateJWT(profile.ID, profile.Email)

	if err != nil {
		logrus.WithError(err).Error("Failed to generate JWT")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	setSessionCookie(ctx, token)

	ctx.JSON(http.StatusCreated, gin.H{
		"user": types.ProfileResponse{
			ID:       profile.ID,
			Email:    profile.Email,
			FullName: profile.FullName,
			Role:     profile.Role,
		},
	})
}

func (h *Handler) Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	profile, err := h.Profiles.GetByEmail(ctx.Request.Context(), req.Email)

	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
			return
		}
		respondStoreError(ctx, "Failed to fetch profile", err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)) != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := auth.GenerateJWT(profile.ID, profile.Email)

	if err != nil {
		logrus.WithError(err).Error("Failed to generate JWT")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	setSessionCookie(ctx, token)

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.ProfileResponse{
			ID:       profile.ID,
			Email:    profile.Email,
			FullName: profile.FullName,
			Role:     profile.Role,
		},
	})
}

func (h *Handler) Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	profile, err := h.Profiles.Get(ctx.Request.Context(), currentUser.ID)

	if err != nil {
		// Externally provisioned principals may not have a profile row
		// until the bootstrap runs; answer with the token identity.
		if errors.Is(err, store.ErrNotFound) {
			ctx.JSON(http.StatusOK, gin.H{
				"user": types.ProfileResponse{
					ID:    currentUser.ID,
					Email: currentUser.Email,
					Role:  types.RoleViewer,
				},
			})
			return
		}
		respondStoreError(ctx, "Failed to fetch profile", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.ProfileResponse{
			ID:       profile.ID,
			Email:    profile.Email,
			FullName: profile.FullName,
			Role:     profile.Role,
		},
	})
}

func (h *Handler) Logout(ctx *gin.Context) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		Domain:   cookieDomain(),
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func setSessionCookie(ctx *gin.Context, token string) {
	http.SetCookie(ctx.Writer, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Domain:   cookieDomain(),
		MaxAge:   60 * 60 * 24 * 7,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}
