// Package cli is an interactive client for the diary server: it submits
// text and voice entries and shows entries, expenses and quota.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/voicediary/internal/api"
	"github.com/dmitrijs2005/voicediary/internal/client/config"
	"github.com/dmitrijs2005/voicediary/internal/common"
	"github.com/dmitrijs2005/voicediary/internal/netx"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

type diaryAPI interface {
	SubmitEntry(ctx context.Context, in *api.SubmitEntryRequest, opts ...grpc.CallOption) (*api.SubmitEntryResponse, error)
	GetEntry(ctx context.Context, in *api.GetEntryRequest, opts ...grpc.CallOption) (*api.Entry, error)
	ListEntries(ctx context.Context, in *api.ListEntriesRequest, opts ...grpc.CallOption) (*api.ListEntriesResponse, error)
	DeleteEntry(ctx context.Context, in *api.DeleteEntryRequest, opts ...grpc.CallOption) (*api.DeleteEntryResponse, error)
	ListExpenses(ctx context.Context, in *api.ListExpensesRequest, opts ...grpc.CallOption) (*api.ListExpensesResponse, error)
	RequestAudioUpload(ctx context.Context, in *api.RequestAudioUploadRequest, opts ...grpc.CallOption) (*api.RequestAudioUploadResponse, error)
	AskQuestion(ctx context.Context, in *api.AskQuestionRequest, opts ...grpc.CallOption) (*api.AskQuestionResponse, error)
	GetQuota(ctx context.Context, in *api.GetQuotaRequest, opts ...grpc.CallOption) (*api.GetQuotaResponse, error)
	Ping(ctx context.Context, in *api.PingRequest, opts ...grpc.CallOption) (*api.PingResponse, error)
}

type App struct {
	config   *config.Config
	api      diaryAPI
	conn     io.Closer
	reader   *bufio.Reader
	out      io.Writer
	upload   func(ctx context.Context, url string, data []byte) error
	readFile func(name string) ([]byte, error)
}

func NewApp(c *config.Config) (*App, error) {
	conn, err := grpc.NewClient(c.ServerEndpointAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", c.ServerEndpointAddr, err)
	}

	return &App{
		config: c,
		api:    api.NewDiaryServiceClient(conn),
		conn:   conn,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		upload: func(ctx context.Context, url string, data []byte) error {
			return netx.UploadToPresignedURL(ctx, nil, url, data)
		},
		readFile: os.ReadFile,
	}, nil
}

func (a *App) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}

// Run asks for an access token when none is configured and starts the
// command loop.
func (a *App) Run(ctx context.Context) error {
	if a.config.AccessToken == "" {
		tok, err := GetSecret("Access token: ", a.out)
		if err != nil {
			return fmt.Errorf("read access token: %w", err)
		}
		a.config.AccessToken = tok
	}

	a.Root(ctx)
	return nil
}

// callCtx bounds one command and attaches the access token.
func (a *App) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.RequestTimeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
		return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, a.config.AccessToken), cancel
	}
	ctx, cancel := context.WithCancel(ctx)
	return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, a.config.AccessToken), cancel
}
