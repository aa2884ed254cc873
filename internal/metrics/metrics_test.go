package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistered(t *testing.T) {
	FilesTotal.WithLabelValues("ok")
	FlowsTotal.WithLabelValues("included")
	WriterErrors.WithLabelValues("csv")

	if n := testutil.CollectAndCount(FilesTotal, "flowreport_files_total"); n < 1 {
		t.Errorf("expected flowreport_files_total series, got %d", n)
	}
	if n := testutil.CollectAndCount(BuildDuration); n != 1 {
		t.Errorf("expected one build duration histogram, got %d", n)
	}
}
