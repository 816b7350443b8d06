package domain

// CropReco is one crop recommendation; lists are ordered highest first.
type CropReco struct {
	Crop        string  `json:"crop" validate:"required"`
	Probability float64 `json:"probability" validate:"gte=0,lte=1"`
}

// DiseaseImage is the photo submitted for disease detection.
type DiseaseImage struct {
	Filename    string
	ContentType string
	Data        []byte
	Notes       string
}

// DiseaseResult mirrors the detection response. Treatments keeps the
// backend's capitalised key.
type DiseaseResult struct {
	Success              bool      `json:"success"`
	Diseases             []string  `json:"diseases,omitempty"`
	DiseaseProbabilities []float64 `json:"disease_probabilities,omitempty"`
	Symptoms             []string  `json:"symptoms,omitempty"`
	Treatments           []string  `json:"Treatments,omitempty"`
	PreventionTips       []string  `json:"prevention_tips,omitempty"`
	ImagePath            string    `json:"image_path,omitempty"`
	Error                string    `json:"error,omitempty"`
}

// AskRequest is the agentic assistant question.
type AskRequest struct {
	Question       string
	TargetLanguage string
	Coords         *Coordinate
	District       string
	FarmID         string
}

// AskAnswer is the assistant reply.
type AskAnswer struct {
	Answer string `json:"answer"`
}
