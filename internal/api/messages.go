package api

import "time"

type SubmitEntryRequest struct {
	Kind      string `json:"kind"`
	Text      string `json:"text,omitempty"`
	AudioRef  string `json:"audio_ref,omitempty"`
	AudioName string `json:"audio_name,omitempty"`
	AudioSize int64  `json:"audio_size,omitempty"`
}

type SubmitEntryResponse struct {
	EntryID string `json:"entry_id"`
	Status  string `json:"status"`
	Tier    string `json:"tier"`
}

type GetEntryRequest struct {
	EntryID string `json:"entry_id"`
}

type ListEntriesRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

type ListEntriesResponse struct {
	Entries []*Entry `json:"entries"`
}

type DeleteEntryRequest struct {
	EntryID string `json:"entry_id"`
}

type DeleteEntryResponse struct{}

type ListExpensesRequest struct {
	EntryID string `json:"entry_id"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type RequestAudioUploadRequest struct {
	FileName string `json:"file_name"`
}

type RequestAudioUploadResponse struct {
	AudioRef  string `json:"audio_ref"`
	UploadURL string `json:"upload_url"`
}

type AskQuestionRequest struct {
	Question string `json:"question"`
}

type AskQuestionResponse struct {
	Allowed        bool  `json:"allowed"`
	QuestionsToday int64 `json:"questions_today"`
}

type GetQuotaRequest struct{}

type GetQuotaResponse struct {
	SubscriptionKind string `json:"subscription_kind"`
	PremiumAccess    bool   `json:"premium_access"`
	CanCreateEntry   bool   `json:"can_create_entry"`
	EntryCount       int64  `json:"entry_count"`
	QuestionsToday   int64  `json:"questions_today"`
	TrialDaysLeft    int    `json:"trial_days_left"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// Entry is the wire form of models.Entry. Amounts travel as decimal strings.
type Entry struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Status       string    `json:"status"`
	Tier         string    `json:"tier"`
	AudioRef     string    `json:"audio_ref,omitempty"`
	Transcript   string    `json:"transcript,omitempty"`
	TotalExpense string    `json:"total_expense"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Expense struct {
	ID              string    `json:"id"`
	Amount          string    `json:"amount"`
	Currency        string    `json:"currency"`
	Category        string    `json:"category"`
	PaymentMethod   string    `json:"payment_method"`
	DetectedText    string    `json:"detected_text"`
	ConfidenceScore float64   `json:"confidence_score"`
	CreatedAt       time.Time `json:"created_at"`
}
