package api

import (
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/mirador-crashkit/internal/models"
)

func TestFromProtoBundleRequest(t *testing.T) {
	req, err := NewBundleRequest(" /bundles/crash-1 ", "/out")
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	got, err := FromProtoBundleRequest(req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.BundleDir != "/bundles/crash-1" || got.OutputDir != "/out" {
		t.Fatalf("unexpected request %+v", got)
	}
}

func TestFromProtoBundleRequestErrors(t *testing.T) {
	wrongType, _ := structpb.NewStruct(map[string]any{"bundle_dir": 12.0})
	empty, _ := structpb.NewStruct(map[string]any{})

	for name, req := range map[string]*structpb.Struct{
		"nil":        nil,
		"missing":    empty,
		"wrong type": wrongType,
	} {
		if _, err := FromProtoBundleRequest(req); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestToProtoStruct(t *testing.T) {
	in := models.Inspection{
		BundleDir:  "/b",
		EventCount: 3,
		Suspects:   []models.SuspectScore{{Name: "Disk/FS instability", Count: 2}},
		KeyLines:   []string{"line"},
	}
	got, err := ToProtoStruct(in)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	fields := got.AsMap()
	if fields["bundle_dir"] != "/b" || fields["event_count"] != float64(3) {
		t.Fatalf("unexpected fields %v", fields)
	}
	if fields["time_range"] != nil {
		t.Fatalf("expected null time range, got %v", fields["time_range"])
	}
	suspects := fields["suspects"].([]any)
	if suspects[0].(map[string]any)["name"] != "Disk/FS instability" {
		t.Fatalf("unexpected suspects %v", suspects)
	}
}
