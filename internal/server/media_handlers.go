package server

import (
	"io"
	"strings"

	"shipits/internal/models"
	"shipits/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadMedia handles POST /api/media. Accepts a multipart "file" field,
// normalizes the image, and returns its content-addressed URL.
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("A 'file' field is required"))
	}
	if fileHeader.Size > service.MaxUploadBytes {
		return models.RespondWithError(c, fiber.StatusRequestEntityTooLarge,
			models.NewValidationError("File exceeds the maximum upload size"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, service.MaxUploadBytes+1))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	media, err := s.mediaService.Upload(c.UserContext(), service.UploadMediaInput{
		UserID:      currentUserID(c),
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(media)
}

// ServeMedia handles GET /media/:file. Files are content-addressed, so they
// never change and can be cached forever.
func (s *Server) ServeMedia(c *fiber.Ctx) error {
	hash := strings.TrimSuffix(c.Params("file"), ".webp")

	path, err := s.mediaService.Resolve(hash)
	if err != nil {
		return respondServiceError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/webp")
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	return c.SendFile(path)
}

// GetThreadSummary handles GET /api/projects/:id/summary
func (s *Server) GetThreadSummary(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	result, err := s.summaryService.GetThreadSummary(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}
