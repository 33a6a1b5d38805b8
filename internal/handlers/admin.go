package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nkiryanov/zifybot/internal/apperrors"
	"github.com/nkiryanov/zifybot/internal/handlers/render"
	"github.com/nkiryanov/zifybot/internal/logger"
)

func handleListUsers(userService userService, l logger.Logger) http.Handler {
	type pagination struct {
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
		Total int64 `json:"total"`
		Pages int   `json:"pages"`
	}
	type response struct {
		Users      []userResponse `json:"users"`
		Pagination pagination     `json:"pagination"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Not numbers become zero, service falls back to defaults then
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		result, err := userService.ListUsers(r.Context(), page, limit)
		if err != nil {
			l.Error("Failed to list users", "error", err)
			render.Error(w, http.StatusInternalServerError, "Failed to fetch users")
			return
		}

		users := make([]userResponse, 0, len(result.Users))
		for _, u := range result.Users {
			users = append(users, newUserResponse(u))
		}

		render.Success(w, http.StatusOK, "", response{
			Users: users,
			Pagination: pagination{
				Page:  result.Page,
				Limit: result.Limit,
				Total: result.Total,
				Pages: result.Pages(),
			},
		})
	})
}

func handleGetUser(userService userService, l logger.Logger) http.Handler {
	type response struct {
		User userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			render.Error(w, http.StatusNotFound, "User not found")
			return
		}

		user, err := userService.GetUserByID(r.Context(), id)

		switch {
		case err == nil:
			render.Success(w, http.StatusOK, "", response{User: newUserResponse(user)})
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.Error(w, http.StatusNotFound, "User not found")
		default:
			l.Error("Failed to get user", "user_id", id, "error", err)
			render.Error(w, http.StatusInternalServerError, "Failed to fetch user")
		}
	})
}

func handleDashboardStats(userService userService, l logger.Logger) http.Handler {
	type stats struct {
		TotalUsers    int64 `json:"totalUsers"`
		TotalAdmins   int64 `json:"totalAdmins"`
		TotalAccounts int64 `json:"totalAccounts"`
	}
	type response struct {
		Stats stats `json:"stats"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		result, err := userService.Stats(r.Context())
		if err != nil {
			l.Error("Failed to count users", "error", err)
			render.Error(w, http.StatusInternalServerError, "Failed to fetch dashboard stats")
			return
		}

		render.Success(w, http.StatusOK, "", response{Stats: stats(result)})
	})
}
