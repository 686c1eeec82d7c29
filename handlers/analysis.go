package handlers

import (
	"encoding/base64"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"genzhealth/models"
	ai "genzhealth/services/intelligence"
	"genzhealth/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// errImageTooLarge is returned when the request body exceeds the upload cap.
var errImageTooLarge = errors.New("image is too large")

// uploadOverhead covers form fields, multipart boundaries and JSON keys around the image.
const uploadOverhead = 64 << 10

// analysisFailedMessage is the only thing clients learn about an upstream failure.
const analysisFailedMessage = "failed to analyze, please try again"

type AnalysisHandler struct {
	Service       ai.AIService
	MaxImageBytes int64
}

func NewAnalysisHandler(svc ai.AIService, maxImageBytes int64) *AnalysisHandler {
	return &AnalysisHandler{Service: svc, MaxImageBytes: maxImageBytes}
}

func (h *AnalysisHandler) AnalyzeSymptomsHandler(c *gin.Context) {
	var req models.SymptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	result, err := h.Service.AnalyzeSymptoms(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// imageJSONRequest is the JSON alternative to a multipart upload.
type imageJSONRequest struct {
	ImageType      string `json:"imageType" binding:"required"`
	BodyPart       string `json:"bodyPart" binding:"required"`
	AdditionalInfo string `json:"additionalInfo"`
	ImageData      string `json:"imageData" binding:"required"`
	MimeType       string `json:"mimeType"`
}

func (h *AnalysisHandler) AnalyzeImageHandler(c *gin.Context) {
	req, err := h.readImageRequest(c)
	if errors.Is(err, errImageTooLarge) {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "Image is too large", "")
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid image upload", err.Error())
		return
	}

	result, err := h.Service.AnalyzeImage(c.Request.Context(), currentUserID(c), *req)
	if err != nil {
		h.respondAnalysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// maxBodyBytes bounds an image request: the image as base64 plus overhead.
func (h *AnalysisHandler) maxBodyBytes() int64 {
	if h.MaxImageBytes <= 0 {
		return 0
	}
	return int64(base64.StdEncoding.EncodedLen(int(h.MaxImageBytes))) + uploadOverhead
}

func (h *AnalysisHandler) readImageRequest(c *gin.Context) (*models.ImageRequest, error) {
	if limit := h.maxBodyBytes(); limit > 0 {
		if c.Request.ContentLength > limit {
			return nil, errImageTooLarge
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		fh, err := c.FormFile("image")
		if err != nil {
			if isBodyTooLarge(err) {
				return nil, errImageTooLarge
			}
			return nil, errors.New("missing image file")
		}
		data, err := h.readUpload(fh)
		if err != nil {
			return nil, err
		}
		mimeType := fh.Header.Get("Content-Type")
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = http.DetectContentType(data)
		}
		return &models.ImageRequest{
			ImageType:      c.PostForm("imageType"),
			BodyPart:       c.PostForm("bodyPart"),
			AdditionalInfo: c.PostForm("additionalInfo"),
			MimeType:       mimeType,
			Data:           data,
		}, nil
	}

	var body imageJSONRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		if isBodyTooLarge(err) {
			return nil, errImageTooLarge
		}
		return nil, err
	}
	mimeType, data, err := ai.DecodeDataURL(body.ImageData)
	if err != nil {
		return nil, err
	}
	if body.MimeType != "" {
		mimeType = body.MimeType
	}
	return &models.ImageRequest{
		ImageType:      body.ImageType,
		BodyPart:       body.BodyPart,
		AdditionalInfo: body.AdditionalInfo,
		MimeType:       mimeType,
		Data:           data,
	}, nil
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func (h *AnalysisHandler) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if h.MaxImageBytes > 0 && fh.Size > h.MaxImageBytes {
		return nil, errImageTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *AnalysisHandler) respondAnalysisError(c *gin.Context, err error) {
	var verr *ai.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.JSONError(c, http.StatusBadRequest, "Invalid analysis request", verr.Error())
	case errors.Is(err, ai.ErrGeminiNotConfigured):
		utils.JSONError(c, http.StatusBadRequest, "Gemini is not available", "Add your Gemini API key in settings")
	case ai.KindOf(err) != "":
		// Upstream detail is already logged by the service.
		utils.JSONKindError(c, http.StatusBadGateway, analysisFailedMessage, string(ai.KindOf(err)))
	default:
		getLogger(c).Error("Analysis failed", zap.Error(err))
		utils.JSONKindError(c, http.StatusBadGateway, analysisFailedMessage, string(ai.KindTransport))
	}
}

func (h *AnalysisHandler) SaveResultHandler(c *gin.Context) {
	var result models.AnalysisResult
	if err := c.ShouldBindJSON(&result); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	saved, err := h.Service.SaveResult(c.Request.Context(), currentUserID(c), result)
	var verr *ai.ValidationError
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, saved)
	case errors.As(err, &verr):
		utils.JSONError(c, http.StatusBadRequest, "Invalid analysis result", verr.Error())
	case errors.Is(err, ai.ErrSaveLimitReached):
		utils.JSONError(c, http.StatusForbidden, "Saved analyses limit reached", "Upgrade your plan to save more analyses")
	default:
		getLogger(c).Error("Failed to save analysis", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to save analysis", "")
	}
}

func (h *AnalysisHandler) LastResultHandler(c *gin.Context) {
	saved, err := h.Service.LastResult(c.Request.Context(), currentUserID(c))
	if errors.Is(err, ai.ErrNoSavedResult) {
		utils.JSONError(c, http.StatusNotFound, "No saved analysis", "")
		return
	}
	if err != nil {
		getLogger(c).Error("Failed to load last analysis", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load analysis", "")
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *AnalysisHandler) ListSavedHandler(c *gin.Context) {
	list, err := h.Service.ListSaved(c.Request.Context(), currentUserID(c))
	if err != nil {
		getLogger(c).Error("Failed to list analyses", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load analyses", "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": list})
}
