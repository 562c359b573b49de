package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/mirador-crashkit/internal/api"
	"github.com/miradorstack/mirador-crashkit/internal/models"
	"github.com/miradorstack/mirador-crashkit/internal/utils"
)

type pipelineStub struct {
	inspection models.Inspection
	summary    models.Summary
	err        error
	bundles    []string
}

func (p *pipelineStub) Inspect(ctx context.Context, bundleDir string) (models.Inspection, error) {
	p.bundles = append(p.bundles, bundleDir)
	return p.inspection, p.err
}

func (p *pipelineStub) Summarize(ctx context.Context, bundleDir string) (models.Summary, error) {
	p.bundles = append(p.bundles, bundleDir)
	return p.summary, p.err
}

func request(t *testing.T, bundle, out string) *structpb.Struct {
	t.Helper()
	req, err := api.NewBundleRequest(bundle, out)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return req
}

func TestSummarizeWritesOutputs(t *testing.T) {
	stub := &pipelineStub{summary: models.Summary{BundleDir: "/b", ReportCount: 1, OS: models.EnvRecord{}}}
	service := NewTriageService(nil, stub)
	outDir := t.TempDir()

	resp, err := service.Summarize(context.Background(), request(t, "/b", outDir))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields := resp.AsMap()
	if fields["summary"].(map[string]any)["report_count"] != float64(1) {
		t.Fatalf("unexpected response %v", fields)
	}
	outputs := fields["outputs"].(map[string]any)
	if outputs["summary_json"] != filepath.Join(outDir, "summary.json") {
		t.Fatalf("unexpected outputs %v", outputs)
	}
	if _, err := os.Stat(filepath.Join(outDir, "summary.txt")); err != nil {
		t.Fatalf("summary.txt not written: %v", err)
	}
}

func TestSummarizeWithoutOutputDir(t *testing.T) {
	stub := &pipelineStub{summary: models.Summary{BundleDir: "/b"}}
	resp, err := NewTriageService(nil, stub).Summarize(context.Background(), request(t, "/b", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := resp.AsMap()["outputs"]; ok {
		t.Fatalf("expected no outputs when output_dir is unset")
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "not found", err: utils.NewAppError("open bundle", "/b", utils.ErrBundleNotFound), want: codes.NotFound},
		{name: "not dir", err: utils.NewAppError("open bundle", "/b", utils.ErrBundleNotDir), want: codes.NotFound},
		{name: "no events", err: utils.NewAppError("inspect", "/b", utils.ErrNoEvents), want: codes.FailedPrecondition},
		{name: "cancelled", err: context.Canceled, want: codes.Canceled},
		{name: "other", err: errors.New("boom"), want: codes.Internal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			service := NewTriageService(nil, &pipelineStub{err: tc.err})
			_, err := service.Inspect(context.Background(), request(t, "/b", ""))
			if status.Code(err) != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestMissingBundleDir(t *testing.T) {
	stub := &pipelineStub{}
	service := NewTriageService(nil, stub)
	empty, _ := structpb.NewStruct(map[string]any{})

	if _, err := service.Summarize(context.Background(), empty); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := service.Inspect(context.Background(), empty); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if len(stub.bundles) != 0 {
		t.Fatalf("pipeline should not run without bundle_dir")
	}
}

func TestInspectResponse(t *testing.T) {
	stub := &pipelineStub{inspection: models.Inspection{BundleDir: "/b", EventCount: 4, KeyLines: []string{"l1"}}}
	resp, err := NewTriageService(nil, stub).Inspect(context.Background(), request(t, "/b", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.AsMap()["event_count"] != float64(4) {
		t.Fatalf("unexpected response %v", resp.AsMap())
	}
}
