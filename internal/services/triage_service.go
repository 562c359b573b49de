package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/mirador-crashkit/internal/api"
	"github.com/miradorstack/mirador-crashkit/internal/metrics"
	"github.com/miradorstack/mirador-crashkit/internal/models"
	"github.com/miradorstack/mirador-crashkit/internal/output"
	"github.com/miradorstack/mirador-crashkit/internal/utils"
)

// Triage runs the analysis over one bundle directory.
type Triage interface {
	Inspect(ctx context.Context, bundleDir string) (models.Inspection, error)
	Summarize(ctx context.Context, bundleDir string) (models.Summary, error)
}

// TriageService implements the gRPC triage service.
type TriageService struct {
	logger   *slog.Logger
	pipeline Triage
}

// NewTriageService constructs the triage service facade.
func NewTriageService(logger *slog.Logger, pipeline Triage) *TriageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TriageService{logger: logger, pipeline: pipeline}
}

// Summarize builds the full summary of a bundle and, when output_dir is
// set, writes summary.json and summary.txt there.
func (s *TriageService) Summarize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := api.FromProtoBundleRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if s.pipeline == nil {
		return nil, status.Error(codes.FailedPrecondition, "pipeline not configured")
	}

	s.logger.Debug("Summarize called", slog.String("bundle_dir", in.BundleDir))

	start := time.Now()
	resp, err := s.summarize(ctx, in)
	metrics.ObserveRun("rpc_summarize", time.Since(start), metrics.OutcomeOf(err))
	if err != nil {
		s.logger.Warn("summarize failed", slog.String("bundle_dir", in.BundleDir), slog.Any("error", err))
		return nil, toStatus(err)
	}
	return s.respond(resp)
}

func (s *TriageService) summarize(ctx context.Context, in api.BundleRequest) (api.SummarizeResponse, error) {
	summary, err := s.pipeline.Summarize(ctx, in.BundleDir)
	if err != nil {
		return api.SummarizeResponse{}, err
	}
	resp := api.SummarizeResponse{Summary: summary}
	if in.OutputDir != "" {
		paths, err := output.WriteSummary(in.OutputDir, summary)
		if err != nil {
			return api.SummarizeResponse{}, err
		}
		resp.Outputs = &paths
	}
	return resp, nil
}

// Inspect returns the event-based console report data for a bundle.
func (s *TriageService) Inspect(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	in, err := api.FromProtoBundleRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if s.pipeline == nil {
		return nil, status.Error(codes.FailedPrecondition, "pipeline not configured")
	}

	start := time.Now()
	result, err := s.pipeline.Inspect(ctx, in.BundleDir)
	metrics.ObserveRun("rpc_inspect", time.Since(start), metrics.OutcomeOf(err))
	if err != nil {
		s.logger.Warn("inspect failed", slog.String("bundle_dir", in.BundleDir), slog.Any("error", err))
		return nil, toStatus(err)
	}
	return s.respond(result)
}

func (s *TriageService) respond(v any) (*structpb.Struct, error) {
	out, err := api.ToProtoStruct(v)
	if err != nil {
		s.logger.Error("response conversion failed", slog.Any("error", err))
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, utils.ErrBundleNotFound), errors.Is(err, utils.ErrBundleNotDir):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, utils.ErrNoEvents):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
