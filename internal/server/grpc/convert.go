package grpc

import (
	"github.com/dmitrijs2005/voicediary/internal/server/models"

	"github.com/dmitrijs2005/voicediary/internal/api"
)

func entryToWire(e *models.Entry) *api.Entry {
	return &api.Entry{
		ID:           e.ID,
		Kind:         string(e.Kind),
		Status:       string(e.Status),
		Tier:         string(e.Tier),
		AudioRef:     e.AudioRef,
		Transcript:   e.Transcript,
		TotalExpense: e.TotalExpense.StringFixed(2),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func expenseToWire(x *models.Expense) *api.Expense {
	return &api.Expense{
		ID:              x.ID,
		Amount:          x.Amount.StringFixed(2),
		Currency:        x.Currency,
		Category:        string(x.Category),
		PaymentMethod:   string(x.PaymentMethod),
		DetectedText:    x.DetectedText,
		ConfidenceScore: x.ConfidenceScore,
		CreatedAt:       x.CreatedAt,
	}
}
