package grpc

// proto.go hand-writes the service descriptor for riskcore.v1.RiskService.
// Messages travel as JSON (content-subtype "json"), so the application DTOs
// double as the wire messages.

import (
	"context"
	"encoding/json"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/bibbank/riskcore/internal/application/dto"
)

const (
	riskServiceName = "riskcore.v1.RiskService"
	codecName       = "json"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec carries DTOs with their json tags, so decimals keep their exact
// string form on the wire. An empty payload decodes to the zero message.
type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// Wire messages.
type (
	EvaluateApplicationRequest = dto.EvaluateApplicationRequest
	GetAssessmentRequest       = dto.GetAssessmentRequest
	ListAssessmentsRequest     = dto.ListAssessmentsRequest
	CalculateBenefitsRequest   = dto.CalculateBenefitsRequest
	AssessmentResponse         = dto.AssessmentResponse
	ListAssessmentsResponse    = dto.ListAssessmentsResponse
	BenefitsResponse           = dto.BenefitsResponse
)

// RiskServiceServer is the server API for RiskService.
type RiskServiceServer interface {
	EvaluateApplication(context.Context, *EvaluateApplicationRequest) (*AssessmentResponse, error)
	GetAssessment(context.Context, *GetAssessmentRequest) (*AssessmentResponse, error)
	ListAssessments(context.Context, *ListAssessmentsRequest) (*ListAssessmentsResponse, error)
	CalculateBenefits(context.Context, *CalculateBenefitsRequest) (*BenefitsResponse, error)
	mustEmbedUnimplementedRiskServiceServer()
}

// UnimplementedRiskServiceServer provides forward-compatible default implementations.
type UnimplementedRiskServiceServer struct{}

func (UnimplementedRiskServiceServer) EvaluateApplication(context.Context, *EvaluateApplicationRequest) (*AssessmentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method EvaluateApplication not implemented")
}
func (UnimplementedRiskServiceServer) GetAssessment(context.Context, *GetAssessmentRequest) (*AssessmentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetAssessment not implemented")
}
func (UnimplementedRiskServiceServer) ListAssessments(context.Context, *ListAssessmentsRequest) (*ListAssessmentsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListAssessments not implemented")
}
func (UnimplementedRiskServiceServer) CalculateBenefits(context.Context, *CalculateBenefitsRequest) (*BenefitsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CalculateBenefits not implemented")
}
func (UnimplementedRiskServiceServer) mustEmbedUnimplementedRiskServiceServer() {}

// RegisterRiskServiceServer registers the RiskServiceServer with the gRPC server.
func RegisterRiskServiceServer(s grpclib.ServiceRegistrar, srv RiskServiceServer) {
	s.RegisterService(&riskServiceDesc, srv)
}

var riskServiceDesc = grpclib.ServiceDesc{
	ServiceName: riskServiceName,
	HandlerType: (*RiskServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "EvaluateApplication", Handler: unaryHandler(RiskServiceServer.EvaluateApplication, "EvaluateApplication")},
		{MethodName: "GetAssessment", Handler: unaryHandler(RiskServiceServer.GetAssessment, "GetAssessment")},
		{MethodName: "ListAssessments", Handler: unaryHandler(RiskServiceServer.ListAssessments, "ListAssessments")},
		{MethodName: "CalculateBenefits", Handler: unaryHandler(RiskServiceServer.CalculateBenefits, "CalculateBenefits")},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "riskcore/v1/risk.proto",
}

// unaryHandler adapts a typed server method to grpc's MethodHandler shape.
func unaryHandler[Req, Resp any](
	call func(RiskServiceServer, context.Context, *Req) (*Resp, error),
	method string,
) grpclib.MethodHandler {
	fullMethod := "/" + riskServiceName + "/" + method
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(RiskServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(RiskServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// RiskServiceClient is the client API for RiskService.
type RiskServiceClient interface {
	EvaluateApplication(ctx context.Context, in *EvaluateApplicationRequest, opts ...grpclib.CallOption) (*AssessmentResponse, error)
	GetAssessment(ctx context.Context, in *GetAssessmentRequest, opts ...grpclib.CallOption) (*AssessmentResponse, error)
	ListAssessments(ctx context.Context, in *ListAssessmentsRequest, opts ...grpclib.CallOption) (*ListAssessmentsResponse, error)
	CalculateBenefits(ctx context.Context, in *CalculateBenefitsRequest, opts ...grpclib.CallOption) (*BenefitsResponse, error)
}

type riskServiceClient struct {
	cc grpclib.ClientConnInterface
}

// NewRiskServiceClient returns a client that speaks the JSON codec.
func NewRiskServiceClient(cc grpclib.ClientConnInterface) RiskServiceClient {
	return &riskServiceClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpclib.ClientConnInterface, method string, in *Req, opts []grpclib.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpclib.CallOption{grpclib.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+riskServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *riskServiceClient) EvaluateApplication(ctx context.Context, in *EvaluateApplicationRequest, opts ...grpclib.CallOption) (*AssessmentResponse, error) {
	return invoke[EvaluateApplicationRequest, AssessmentResponse](ctx, c.cc, "EvaluateApplication", in, opts)
}

func (c *riskServiceClient) GetAssessment(ctx context.Context, in *GetAssessmentRequest, opts ...grpclib.CallOption) (*AssessmentResponse, error) {
	return invoke[GetAssessmentRequest, AssessmentResponse](ctx, c.cc, "GetAssessment", in, opts)
}

func (c *riskServiceClient) ListAssessments(ctx context.Context, in *ListAssessmentsRequest, opts ...grpclib.CallOption) (*ListAssessmentsResponse, error) {
	return invoke[ListAssessmentsRequest, ListAssessmentsResponse](ctx, c.cc, "ListAssessments", in, opts)
}

func (c *riskServiceClient) CalculateBenefits(ctx context.Context, in *CalculateBenefitsRequest, opts ...grpclib.CallOption) (*BenefitsResponse, error) {
	return invoke[CalculateBenefitsRequest, BenefitsResponse](ctx, c.cc, "CalculateBenefits", in, opts)
}
