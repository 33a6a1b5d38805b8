package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/handlers/render"
	"github.com/nkiryanov/zifybot/internal/handlers/userctx"
	"github.com/nkiryanov/zifybot/internal/logger"
	"github.com/nkiryanov/zifybot/internal/models"
)

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	PhoneNumber string `json:"phoneNumber" validate:"required"`
}

func (registerRequest) ValidationMessage() string {
	return "Email, password, first name, last name, and phone number are required"
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (loginRequest) ValidationMessage() string {
	return "Email and password are required"
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (refreshRequest) ValidationMessage() string {
	return "Refresh token is required"
}

func handleRegister(authService authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[registerRequest](w, r)
		if err != nil {
			return
		}

		user, pair, err := authService.Register(r.Context(), models.Registration{
			Email:       req.Email,
			Password:    req.Password,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			PhoneNumber: req.PhoneNumber,
		})

		switch {
		case err == nil:
			render.Success(w, http.StatusCreated, "User registered successfully", newAuthResponse(user, pair))
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.Error(w, http.StatusConflict, "User with this email already exists")
		case errors.Is(err, apperrors.ErrValidation):
			render.Error(w, http.StatusBadRequest, registerRequest{}.ValidationMessage())
		default:
			l.Error("Failed to register user", "error", err)
			render.Error(w, http.StatusInternalServerError, "Registration failed")
		}
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[loginRequest](w, r)
		if err != nil {
			return
		}

		user, pair, err := authService.Login(r.Context(), req.Email, req.Password)

		switch {
		case err == nil:
			render.Success(w, http.StatusOK, "Login successful", newAuthResponse(user, pair))
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.Error(w, http.StatusUnauthorized, "Invalid email or password")
		default:
			l.Error("Failed to login user", "error", err)
			render.Error(w, http.StatusInternalServerError, "Login failed")
		}
	})
}

func handleAdminLogin(authService authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[loginRequest](w, r)
		if err != nil {
			return
		}

		user, pair, err := authService.AdminLogin(r.Context(), req.Email, req.Password)

		switch {
		case err == nil:
			render.Success(w, http.StatusOK, "Admin login successful", newAuthResponse(user, pair))
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.Error(w, http.StatusUnauthorized, "Invalid email or password")
		case errors.Is(err, apperrors.ErrAdminRequired):
			render.Error(w, http.StatusForbidden, "Access denied. Admin privileges required.")
		default:
			l.Error("Failed to login admin", "error", err)
			render.Error(w, http.StatusInternalServerError, "Admin login failed")
		}
	})
}

func handleTokenRefresh(authService authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := render.BindAndValidate[refreshRequest](w, r)
		if err != nil {
			return
		}

		pair, err := authService.Refresh(r.Context(), req.RefreshToken)

		switch {
		case err == nil:
			render.Success(w, http.StatusOK, "Token refreshed successfully", tokensResponse{
				AccessToken:  pair.Access.Value,
				RefreshToken: pair.Refresh.Value,
			})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.Error(w, http.StatusUnauthorized, "User not found")
		case errors.Is(err, apperrors.ErrInvalidToken):
			render.Error(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		default:
			l.Error("Failed to refresh tokens", "error", err)
			render.Error(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		}
	})
}

func handleUserMe(userService userService, l logger.Logger) http.Handler {
	type response struct {
		User userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := userctx.FromContext(r.Context())
		if !ok {
			render.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		user, err := userService.GetUserByID(r.Context(), payload.UserID)

		switch {
		case err == nil:
			render.Success(w, http.StatusOK, "", response{User: newUserResponse(user)})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.Error(w, http.StatusNotFound, "User not found")
		default:
			l.Error("Failed to get user", "user_id", payload.UserID, "error", err)
			render.Error(w, http.StatusInternalServerError, "Failed to fetch user profile")
		}
	})
}

// Echo the identity carried by the access token
func handleProtected(message string) http.Handler {
	type response struct {
		User models.TokenPayload `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := userctx.FromContext(r.Context())
		render.Success(w, http.StatusOK, message, response{User: payload})
	})
}
