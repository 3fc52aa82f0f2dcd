package handlers

import (
	"log"
	"net/http"

	"github.com/AnshRaj112/luna-backend/internal/apperr"
	"github.com/AnshRaj112/luna-backend/internal/config"
	"github.com/AnshRaj112/luna-backend/internal/services"
)

const maxUploadBytes = 10 << 20

var cloudinaryService *services.CloudinaryService

// InitCloudinaryService connects Cloudinary when its credentials are set.
// Without them uploads answer 503 and STT skips storing clips.
func InitCloudinaryService(cfg *config.Config) error {
	if !cfg.CloudinaryConfigured() {
		log.Println("⚠️ Cloudinary not configured, uploads disabled")
		return nil
	}
	service, err := services.NewCloudinaryService(
		cfg.CloudinaryName,
		cfg.CloudinaryAPIKey,
		cfg.CloudinaryAPISecret,
	)
	if err != nil {
		return err
	}
	cloudinaryService = service
	return nil
}

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// mediaUploader returns the configured uploader, or nil. The explicit nil
// keeps a nil *CloudinaryService from becoming a non-nil interface.
func mediaUploader() services.MediaUploader {
	if cloudinaryService == nil {
		return nil
	}
	return cloudinaryService
}

// UploadFile stores the multipart "file" field in Cloudinary under ?folder=.
func UploadFile(w http.ResponseWriter, r *http.Request) {
	if cloudinaryService == nil {
		writeErrorMessage(w, http.StatusServiceUnavailable, apperr.ExternalServiceUnavailable, "Cloudinary is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputInvalid, "Failed to parse form: "+err.Error())
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, apperr.InputRequiredMissing, "No file provided")
		return
	}
	defer file.Close()

	url, err := cloudinaryService.UploadFileFromHeader(r.Context(), fileHeader, r.URL.Query().Get("folder"))
	if err != nil {
		writeError(w, apperr.New(apperr.ExternalServiceError, err, nil), "Failed to upload file")
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		Success: true,
		Message: "File uploaded successfully",
		URL:     url,
	})
}
