package gateway

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strings"

	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// CropRecommendations returns the backend's top picks for coord, highest
// probability first.
func (c *Client) CropRecommendations(ctx context.Context, userID string, coord domain.Coordinate) ([]domain.CropReco, error) {
	if userID == "" {
		return nil, domain.Invalid("user_id", "User is required.")
	}
	path := "/api/users/" + url.PathEscape(userID) + "/recommendations/crop"

	var recos []domain.CropReco
	if err := c.getJSON(ctx, path, coordQuery(coord), &recos); err != nil {
		return nil, err
	}
	if err := c.checkSchema(path, struct {
		Recos []domain.CropReco `validate:"dive"`
	}{recos}); err != nil {
		return nil, err
	}
	if recos == nil {
		recos = []domain.CropReco{}
	}
	sort.SliceStable(recos, func(i, j int) bool { return recos[i].Probability > recos[j].Probability })
	return recos, nil
}

// DetectDisease uploads img as multipart form data.
func (c *Client) DetectDisease(ctx context.Context, img domain.DiseaseImage) (domain.DiseaseResult, error) {
	const path = "/api/v1/cropdisease/detect"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	filename := img.Filename
	if filename == "" {
		filename = "image.jpg"
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(img.Data)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return domain.DiseaseResult{}, err
	}
	if _, err := part.Write(img.Data); err != nil {
		return domain.DiseaseResult{}, err
	}
	if notes := strings.TrimSpace(img.Notes); notes != "" {
		if err := mw.WriteField("query", notes); err != nil {
			return domain.DiseaseResult{}, err
		}
	}
	if err := mw.Close(); err != nil {
		return domain.DiseaseResult{}, err
	}

	var result domain.DiseaseResult
	if err := c.do(ctx, http.MethodPost, path, nil, buf.Bytes(), mw.FormDataContentType(), &result); err != nil {
		return domain.DiseaseResult{}, err
	}
	return result, nil
}

type askPayload struct {
	Question       string   `json:"question"`
	TargetLanguage string   `json:"target_language"`
	Lat            *float64 `json:"lat,omitempty"`
	Lon            *float64 `json:"lon,omitempty"`
	District       string   `json:"district,omitempty"`
	FarmID         string   `json:"farm_id,omitempty"`
}

// AskAgentic sends a question to the agentic assistant.
func (c *Client) AskAgentic(ctx context.Context, req domain.AskRequest) (domain.AskAnswer, error) {
	const path = "/api/ai3/ask"
	payload := askPayload{
		Question:       req.Question,
		TargetLanguage: req.TargetLanguage,
		District:       req.District,
		FarmID:         req.FarmID,
	}
	if req.Coords != nil {
		lat, lon := req.Coords.Lat, req.Coords.Lon
		payload.Lat, payload.Lon = &lat, &lon
	}

	var answer domain.AskAnswer
	if err := c.sendJSON(ctx, http.MethodPost, path, payload, &answer); err != nil {
		return domain.AskAnswer{}, err
	}
	if strings.TrimSpace(answer.Answer) == "" {
		return domain.AskAnswer{}, fmt.Errorf("%w: %s: empty answer", domain.ErrPartialData, path)
	}
	return answer, nil
}
