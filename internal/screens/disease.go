package screens

import (
	"context"
	"net/http"
	"strings"

	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// DetectDisease checks the upload locally, then asks the backend. A
// response with success=false is a rejection carrying the backend's reason.
func (s *Service) DetectDisease(ctx context.Context, img domain.DiseaseImage) (domain.DiseaseResult, error) {
	if len(img.Data) == 0 {
		return domain.DiseaseResult{}, domain.Invalid("file", "Choose a photo first.")
	}
	if img.ContentType == "" || img.ContentType == "application/octet-stream" {
		img.ContentType = http.DetectContentType(img.Data)
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return domain.DiseaseResult{}, domain.Invalid("file", "Upload a JPG or PNG image.")
	}

	res, err := s.gw.DetectDisease(ctx, img)
	if err != nil {
		return domain.DiseaseResult{}, err
	}
	if !res.Success {
		msg := strings.TrimSpace(res.Error)
		if msg == "" {
			msg = "Detection failed"
		}
		return domain.DiseaseResult{}, domain.Rejected(msg)
	}
	return res, nil
}
