package screens

import (
	"context"
	"strings"

	"github.com/i474232898/krishimitra-sync/internal/domain"
)

// Language is one supported answer language.
type Language struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Native string `json:"native"`
}

var Languages = []Language{
	{"en", "English", "English"},
	{"hi", "Hindi", "हिंदी"},
	{"bn", "Bengali", "বাংলা"},
	{"te", "Telugu", "తెలుగు"},
	{"mr", "Marathi", "मराठी"},
	{"ta", "Tamil", "தமிழ்"},
	{"ur", "Urdu", "اردو"},
	{"gu", "Gujarati", "ગુજરાતી"},
	{"kn", "Kannada", "ಕನ್ನಡ"},
	{"pa", "Punjabi", "ਪੰਜਾਬੀ"},
}

const languageCodes = "en hi bn te mr ta ur gu kn pa"

// QuickCommands are canned questions offered next to the input.
var QuickCommands = []string{
	"What's the weather forecast for the next week?",
	"What are the current market prices for my crops?",
	"Give me a soil health report for my farm",
	"Which crops should I plant this season?",
}

// AskInput is a question for the assistant. Language defaults to the user's
// preference, then English.
type AskInput struct {
	Question string `json:"question"`
	Language string `json:"language" validate:"omitempty,oneof=en hi bn te mr ta ur gu kn pa"`
}

// Ask forwards the question with whatever farm context is available:
// stored coordinates only, the district and the farm id.
func (s *Service) Ask(ctx context.Context, in AskInput) (domain.AskAnswer, error) {
	in.Question = strings.TrimSpace(in.Question)
	if in.Question == "" {
		return domain.AskAnswer{}, domain.Invalid("question", "Please enter a question")
	}
	in.Language = strings.TrimSpace(in.Language)
	snap := s.store.Snapshot()
	if in.Language == "" {
		in.Language = "en"
		if snap.User != nil && isLanguage(snap.User.LanguagePref) {
			in.Language = snap.User.LanguagePref
		}
	}
	if err := s.check(in); err != nil {
		return domain.AskAnswer{}, err
	}

	req := domain.AskRequest{Question: in.Question, TargetLanguage: in.Language}
	if farm := snap.Farm; farm != nil {
		if c, ok := farm.StoredCoordinate(); ok {
			req.Coords = &c
		}
		req.District = farm.District
		req.FarmID = farm.ID
	}
	return s.gw.AskAgentic(ctx, req)
}

func isLanguage(code string) bool {
	return code != "" && strings.Contains(" "+languageCodes+" ", " "+code+" ")
}
