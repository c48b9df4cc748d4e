package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/voicediary/internal/api"
	"github.com/dmitrijs2005/voicediary/internal/server/models"
	"github.com/dmitrijs2005/voicediary/internal/server/services"
	"github.com/dmitrijs2005/voicediary/internal/timex"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) SubmitEntry(ctx context.Context, req *api.SubmitEntryRequest) (*api.SubmitEntryResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	kind := models.EntryKind(req.Kind)
	if kind == models.EntryKindVoice && strings.TrimSpace(req.AudioRef) == "" {
		return nil, status.Error(codes.InvalidArgument, "voice entry requires an audio reference")
	}

	if err := s.admission.EnsureQuota(ctx, userID); err != nil {
		return nil, s.toStatus(ctx, "SubmitEntry", err)
	}

	entry, err := s.entries.Submit(ctx, services.SubmitRequest{
		UserID:    userID,
		Kind:      kind,
		AudioRef:  req.AudioRef,
		AudioName: req.AudioName,
		AudioSize: req.AudioSize,
		Text:      req.Text,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "SubmitEntry", err)
	}

	return &api.SubmitEntryResponse{EntryID: entry.ID, Status: string(entry.Status), Tier: string(entry.Tier)}, nil
}

func (s *GRPCServer) GetEntry(ctx context.Context, req *api.GetEntryRequest) (*api.Entry, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	entry, err := s.entries.Get(ctx, userID, req.EntryID)
	if err != nil {
		return nil, s.toStatus(ctx, "GetEntry", err)
	}
	return entryToWire(entry), nil
}

func (s *GRPCServer) ListEntries(ctx context.Context, req *api.ListEntriesRequest) (*api.ListEntriesResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.entries.List(ctx, userID, req.Limit, req.Offset)
	if err != nil {
		return nil, s.toStatus(ctx, "ListEntries", err)
	}

	resp := &api.ListEntriesResponse{Entries: make([]*api.Entry, 0, len(list))}
	for _, e := range list {
		resp.Entries = append(resp.Entries, entryToWire(e))
	}
	return resp, nil
}

func (s *GRPCServer) DeleteEntry(ctx context.Context, req *api.DeleteEntryRequest) (*api.DeleteEntryResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.entries.Delete(ctx, userID, req.EntryID); err != nil {
		return nil, s.toStatus(ctx, "DeleteEntry", err)
	}
	return &api.DeleteEntryResponse{}, nil
}

func (s *GRPCServer) ListExpenses(ctx context.Context, req *api.ListExpensesRequest) (*api.ListExpensesResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	list, err := s.entries.Expenses(ctx, userID, req.EntryID)
	if err != nil {
		return nil, s.toStatus(ctx, "ListExpenses", err)
	}

	resp := &api.ListExpensesResponse{Expenses: make([]*api.Expense, 0, len(list))}
	for _, x := range list {
		resp.Expenses = append(resp.Expenses, expenseToWire(x))
	}
	return resp, nil
}

func (s *GRPCServer) RequestAudioUpload(ctx context.Context, req *api.RequestAudioUploadRequest) (*api.RequestAudioUploadResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	key, url, err := s.entries.RequestAudioUpload(ctx, userID, req.FileName)
	if err != nil {
		return nil, s.toStatus(ctx, "RequestAudioUpload", err)
	}
	return &api.RequestAudioUploadResponse{AudioRef: key, UploadURL: url}, nil
}

// AskQuestion only meters the question against the daily allowance.
func (s *GRPCServer) AskQuestion(ctx context.Context, req *api.AskQuestionRequest) (*api.AskQuestionResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Question) == "" {
		return nil, status.Error(codes.InvalidArgument, "question is empty")
	}

	if err := s.admission.EnsureQuota(ctx, userID); err != nil {
		return nil, s.toStatus(ctx, "AskQuestion", err)
	}

	n, allowed, err := s.admission.AskQuestion(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "AskQuestion", err)
	}
	return &api.AskQuestionResponse{Allowed: allowed, QuestionsToday: n}, nil
}

func (s *GRPCServer) GetQuota(ctx context.Context, _ *api.GetQuotaRequest) (*api.GetQuotaResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.admission.EnsureQuota(ctx, userID); err != nil {
		return nil, s.toStatus(ctx, "GetQuota", err)
	}
	q, err := s.admission.Quota(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "GetQuota", err)
	}
	premium, err := s.admission.CheckPremiumAccess(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "GetQuota", err)
	}
	canCreate, err := s.admission.CanCreateEntry(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "GetQuota", err)
	}
	days, err := s.admission.TrialDaysLeft(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "GetQuota", err)
	}

	resp := &api.GetQuotaResponse{
		SubscriptionKind: string(q.SubscriptionKind),
		PremiumAccess:    premium,
		CanCreateEntry:   canCreate,
		EntryCount:       q.EntryCount,
		TrialDaysLeft:    days,
	}
	if q.DailyQuestionDate != nil && timex.SameDate(*q.DailyQuestionDate, s.now()) {
		resp.QuestionsToday = q.DailyQuestionCount
	}
	return resp, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

var _ api.DiaryServiceServer = (*GRPCServer)(nil)
