package api

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/mirador-crashkit/internal/models"
	"github.com/miradorstack/mirador-crashkit/internal/output"
)

// BundleRequest is the decoded form of a Summarize or Inspect request.
type BundleRequest struct {
	BundleDir string
	OutputDir string
}

// SummarizeResponse is the payload returned by Summarize.
type SummarizeResponse struct {
	Summary models.Summary `json:"summary"`
	Outputs *output.Paths  `json:"outputs,omitempty"`
}

// FromProtoBundleRequest maps a request Struct into a BundleRequest.
func FromProtoBundleRequest(req *structpb.Struct) (BundleRequest, error) {
	if req == nil {
		return BundleRequest{}, fmt.Errorf("request is nil")
	}
	bundle, err := stringField(req, "bundle_dir")
	if err != nil {
		return BundleRequest{}, err
	}
	if bundle == "" {
		return BundleRequest{}, fmt.Errorf("bundle_dir is required")
	}
	out, err := stringField(req, "output_dir")
	if err != nil {
		return BundleRequest{}, err
	}
	return BundleRequest{BundleDir: bundle, OutputDir: out}, nil
}

// NewBundleRequest builds a request Struct for the triage client.
func NewBundleRequest(bundleDir, outputDir string) (*structpb.Struct, error) {
	fields := map[string]any{"bundle_dir": bundleDir}
	if outputDir != "" {
		fields["output_dir"] = outputDir
	}
	return structpb.NewStruct(fields)
}

// ToProtoStruct converts any JSON-encodable value into a Struct using its
// JSON field names.
func ToProtoStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("convert response: %w", err)
	}
	return out, nil
}

func stringField(req *structpb.Struct, name string) (string, error) {
	v, ok := req.GetFields()[name]
	if !ok {
		return "", nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return strings.TrimSpace(kind.StringValue), nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", fmt.Errorf("%s must be a string", name)
	}
}
