package signal

import (
	"testing"

	"github.com/spf13/afero"
)

func TestEmitAppends(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := NewSink(fs, "/gha/output")
	if err := sink.Emit("1.21.50", true); err != nil {
		t.Fatalf("Emit changed: %v", err)
	}
	if err := sink.Emit("1.21.51", false); err != nil {
		t.Fatalf("Emit unchanged: %v", err)
	}
	data, err := afero.ReadFile(fs, "/gha/output")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "1.21.50\n/\n" {
		t.Fatalf("signal file = %q", data)
	}
}

func TestDisabledSinkIsNoop(t *testing.T) {
	fs := afero.NewMemMapFs()
	sink := NewSink(fs, "  ")
	if sink.Enabled() {
		t.Fatal("blank path should disable the sink")
	}
	if err := sink.Emit("1.0", true); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	var nilSink *Sink
	if err := nilSink.Emit("1.0", true); err != nil {
		t.Fatalf("nil sink Emit: %v", err)
	}
}

func TestEmitChangedRequiresVersion(t *testing.T) {
	if err := NewSink(afero.NewMemMapFs(), "/out").Emit("", true); err == nil {
		t.Fatal("expected error for changed run without version")
	}
}
