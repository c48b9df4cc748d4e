package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/voicediary/internal/api"
)

var errUsage = errors.New("wrong arguments, see help")

func (a *App) ping(ctx context.Context) error {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	resp, err := a.api.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, resp.Status)
	return nil
}

func (a *App) note(ctx context.Context, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		var err error
		if text, err = GetMultiline(a.reader, "Write your entry", a.out); err != nil {
			return err
		}
	}
	if text == "" {
		return errUsage
	}

	return a.submit(ctx, &api.SubmitEntryRequest{Kind: "text", Text: text})
}

func (a *App) voice(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	path := args[0]
	name := filepath.Base(path)

	data, err := a.readFile(path)
	if err != nil {
		return err
	}

	callCtx, cancel := a.callCtx(ctx)
	defer cancel()

	up, err := a.api.RequestAudioUpload(callCtx, &api.RequestAudioUploadRequest{FileName: name})
	if err != nil {
		return err
	}
	if err := a.upload(callCtx, up.UploadURL, data); err != nil {
		return fmt.Errorf("upload %s: %w", name, err)
	}

	return a.submit(ctx, &api.SubmitEntryRequest{
		Kind:      "voice",
		AudioRef:  up.AudioRef,
		AudioName: name,
		AudioSize: int64(len(data)),
	})
}

func (a *App) submit(ctx context.Context, req *api.SubmitEntryRequest) error {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	resp, err := a.api.SubmitEntry(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Entry %s %s (%s tier)\n", resp.EntryID, resp.Status, resp.Tier)
	return nil
}

func (a *App) list(ctx context.Context, args []string) error {
	req := &api.ListEntriesRequest{}
	for i, dst := range []*int{&req.Limit, &req.Offset} {
		if i >= len(args) {
			break
		}
		n, err := strconv.Atoi(args[i])
		if err != nil || n < 0 {
			return errUsage
		}
		*dst = n
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	resp, err := a.api.ListEntries(ctx, req)
	if err != nil {
		return err
	}
	if len(resp.Entries) == 0 {
		fmt.Fprintln(a.out, "No entries")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tSTATUS\tTOTAL\tCREATED")
	for _, e := range resp.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Kind, e.Status, e.TotalExpense, e.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func (a *App) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	e, err := a.api.GetEntry(ctx, &api.GetEntryRequest{EntryID: args[0]})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "ID:       %s\nKind:     %s\nStatus:   %s\nTier:     %s\nTotal:    %s\n",
		e.ID, e.Kind, e.Status, e.Tier, e.TotalExpense)
	if e.Transcript != "" {
		fmt.Fprintf(a.out, "Text:\n%s\n", e.Transcript)
	}
	return nil
}

func (a *App) expenses(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	resp, err := a.api.ListExpenses(ctx, &api.ListExpensesRequest{EntryID: args[0]})
	if err != nil {
		return err
	}
	if len(resp.Expenses) == 0 {
		fmt.Fprintln(a.out, "No expenses")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AMOUNT\tCURRENCY\tCATEGORY\tDETECTED")
	for _, x := range resp.Expenses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%q\n", x.Amount, x.Currency, x.Category, x.DetectedText)
	}
	return tw.Flush()
}

func (a *App) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	if _, err := a.api.DeleteEntry(ctx, &api.DeleteEntryRequest{EntryID: args[0]}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted", args[0])
	return nil
}

func (a *App) quota(ctx context.Context) error {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	q, err := a.api.GetQuota(ctx, &api.GetQuotaRequest{})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Plan:            %s\n", q.SubscriptionKind)
	fmt.Fprintf(a.out, "Premium access:  %t\n", q.PremiumAccess)
	fmt.Fprintf(a.out, "Entries used:    %d (can add more: %t)\n", q.EntryCount, q.CanCreateEntry)
	fmt.Fprintf(a.out, "Questions today: %d\n", q.QuestionsToday)
	if q.TrialDaysLeft > 0 {
		fmt.Fprintf(a.out, "Trial days left: %d\n", q.TrialDaysLeft)
	}
	return nil
}

func (a *App) ask(ctx context.Context, args []string) error {
	question := strings.Join(args, " ")
	if question == "" {
		return errUsage
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	resp, err := a.api.AskQuestion(ctx, &api.AskQuestionRequest{Question: question})
	if err != nil {
		return err
	}
	if !resp.Allowed {
		fmt.Fprintf(a.out, "Daily question limit reached (%d asked today)\n", resp.QuestionsToday)
		return nil
	}
	fmt.Fprintf(a.out, "Question %d accepted\n", resp.QuestionsToday)
	return nil
}
