package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookradio/bookradio-server/internal/http/response"
	"github.com/bookradio/bookradio-server/internal/service"
)

// handleGetProfile returns the authenticated user's profile.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.authService.GetProfile(r.Context(), getUserID(r.Context()))
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, profile, s.logger)
}

// handleUpdateProfile applies a multipart profile update. Text fields are
// optional; an "avatar" file part replaces the stored avatar.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.maxAvatarBytes); err != nil {
		response.BadRequest(w, "Invalid multipart form", s.logger)
		return
	}

	var update service.ProfileUpdate

	if values, ok := r.MultipartForm.Value["username"]; ok && len(values) > 0 {
		update.Username = &values[0]
	}
	if values, ok := r.MultipartForm.Value["bio"]; ok && len(values) > 0 {
		update.Bio = &values[0]
	}
	update.CurrentPassword = r.FormValue("current_password")
	update.NewPassword = r.FormValue("new_password")

	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		if header.Size > s.maxAvatarBytes {
			response.BadRequest(w, "Avatar image is too large", s.logger)
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, s.maxAvatarBytes+1))
		if err != nil {
			response.BadRequest(w, "Failed to read avatar upload", s.logger)
			return
		}
		if int64(len(data)) > s.maxAvatarBytes {
			response.BadRequest(w, "Avatar image is too large", s.logger)
			return
		}
		update.Avatar = data
	}

	profile, err := s.authService.UpdateProfile(r.Context(), getUserID(r.Context()), update)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, profile, s.logger)
}

// handleServeAvatar serves an uploaded avatar image from disk.
func (s *Server) handleServeAvatar(w http.ResponseWriter, r *http.Request) {
	path, err := s.avatarStorage.Resolve(chi.URLParam(r, "filename"))
	if err != nil {
		response.NotFound(w, "Avatar not found", s.logger)
		return
	}

	http.ServeFile(w, r, path)
}
