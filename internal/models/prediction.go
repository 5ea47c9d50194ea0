package models

// MinPredictionHistory is the history size at which predictions are requested
const MinPredictionHistory = 5

// Probabilities holds category percentages, summing to roughly 100
type Probabilities struct {
	Low    float64 `json:"low"`
	Medium float64 `json:"medium"`
	High   float64 `json:"high"`
}

// Prediction is the next-round advice produced by the language model
type Prediction struct {
	PatternAnalysis     string        `json:"patternAnalysis"`
	NextRoundPrediction string        `json:"nextRoundPrediction"`
	Probabilities       Probabilities `json:"probabilities"`
	CashOutTarget       float64       `json:"cashOutTarget"`
	InvestmentAdvice    string        `json:"investmentAdvice"`
}

// DefaultPrediction is shown until enough history exists
func DefaultPrediction() Prediction {
	return Prediction{
		PatternAnalysis:     "Waiting for more data to analyze patterns.",
		NextRoundPrediction: "N/A",
		Probabilities:       Probabilities{},
		CashOutTarget:       0,
		InvestmentAdvice:    "Please add at least 5 multipliers to get initial advice.",
	}
}

// ErrorPrediction is shown when the prediction service fails
func ErrorPrediction() Prediction {
	p := DefaultPrediction()
	p.PatternAnalysis = "Error fetching analysis."
	p.InvestmentAdvice = "Could not connect to the prediction service."
	return p
}
