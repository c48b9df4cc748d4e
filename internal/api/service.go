package api

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "diary.DiaryService"

// DiaryServiceServer is the server API of diary.DiaryService.
type DiaryServiceServer interface {
	SubmitEntry(context.Context, *SubmitEntryRequest) (*SubmitEntryResponse, error)
	GetEntry(context.Context, *GetEntryRequest) (*Entry, error)
	ListEntries(context.Context, *ListEntriesRequest) (*ListEntriesResponse, error)
	DeleteEntry(context.Context, *DeleteEntryRequest) (*DeleteEntryResponse, error)
	ListExpenses(context.Context, *ListExpensesRequest) (*ListExpensesResponse, error)
	RequestAudioUpload(context.Context, *RequestAudioUploadRequest) (*RequestAudioUploadResponse, error)
	AskQuestion(context.Context, *AskQuestionRequest) (*AskQuestionResponse, error)
	GetQuota(context.Context, *GetQuotaRequest) (*GetQuotaResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// FullMethod returns the gRPC path of a diary.DiaryService method.
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary[Req, Resp any](name string, call func(DiaryServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(DiaryServiceServer), ctx, req.(*Req))
			}
			if interceptor == nil {
				return handler(ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// DiaryServiceDesc describes diary.DiaryService. Messages are encoded with
// the "json" codec.
var DiaryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DiaryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("SubmitEntry", DiaryServiceServer.SubmitEntry),
		unary("GetEntry", DiaryServiceServer.GetEntry),
		unary("ListEntries", DiaryServiceServer.ListEntries),
		unary("DeleteEntry", DiaryServiceServer.DeleteEntry),
		unary("ListExpenses", DiaryServiceServer.ListExpenses),
		unary("RequestAudioUpload", DiaryServiceServer.RequestAudioUpload),
		unary("AskQuestion", DiaryServiceServer.AskQuestion),
		unary("GetQuota", DiaryServiceServer.GetQuota),
		unary("Ping", DiaryServiceServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "diary/service.json",
}

// RegisterDiaryServiceServer registers srv with s.
func RegisterDiaryServiceServer(s grpc.ServiceRegistrar, srv DiaryServiceServer) {
	s.RegisterService(&DiaryServiceDesc, srv)
}

// DiaryServiceClient calls diary.DiaryService using the json codec.
type DiaryServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDiaryServiceClient(cc grpc.ClientConnInterface) *DiaryServiceClient {
	return &DiaryServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *DiaryServiceClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	out := new(Resp)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DiaryServiceClient) SubmitEntry(ctx context.Context, in *SubmitEntryRequest, opts ...grpc.CallOption) (*SubmitEntryResponse, error) {
	return invoke[SubmitEntryResponse](ctx, c, "SubmitEntry", in, opts)
}

func (c *DiaryServiceClient) GetEntry(ctx context.Context, in *GetEntryRequest, opts ...grpc.CallOption) (*Entry, error) {
	return invoke[Entry](ctx, c, "GetEntry", in, opts)
}

func (c *DiaryServiceClient) ListEntries(ctx context.Context, in *ListEntriesRequest, opts ...grpc.CallOption) (*ListEntriesResponse, error) {
	return invoke[ListEntriesResponse](ctx, c, "ListEntries", in, opts)
}

func (c *DiaryServiceClient) DeleteEntry(ctx context.Context, in *DeleteEntryRequest, opts ...grpc.CallOption) (*DeleteEntryResponse, error) {
	return invoke[DeleteEntryResponse](ctx, c, "DeleteEntry", in, opts)
}

func (c *DiaryServiceClient) ListExpenses(ctx context.Context, in *ListExpensesRequest, opts ...grpc.CallOption) (*ListExpensesResponse, error) {
	return invoke[ListExpensesResponse](ctx, c, "ListExpenses", in, opts)
}

func (c *DiaryServiceClient) RequestAudioUpload(ctx context.Context, in *RequestAudioUploadRequest, opts ...grpc.CallOption) (*RequestAudioUploadResponse, error) {
	return invoke[RequestAudioUploadResponse](ctx, c, "RequestAudioUpload", in, opts)
}

func (c *DiaryServiceClient) AskQuestion(ctx context.Context, in *AskQuestionRequest, opts ...grpc.CallOption) (*AskQuestionResponse, error) {
	return invoke[AskQuestionResponse](ctx, c, "AskQuestion", in, opts)
}

func (c *DiaryServiceClient) GetQuota(ctx context.Context, in *GetQuotaRequest, opts ...grpc.CallOption) (*GetQuotaResponse, error) {
	return invoke[GetQuotaResponse](ctx, c, "GetQuota", in, opts)
}

func (c *DiaryServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c, "Ping", in, opts)
}
