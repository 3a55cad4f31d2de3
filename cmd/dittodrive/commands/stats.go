package commands

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"

	"github.com/marmos91/dittodrive/internal/cli/output"
	"github.com/marmos91/dittodrive/pkg/metrics"
)

// metricPrefix selects the drive's own metrics from the registry.
const metricPrefix = "dittodrive_"

func newStatsCmd() *cobra.Command {
	return driveCommand("stats", "Show drive statistics",
		`Show the drive id, the root user, the number of entries and the number
owned by the acting user. When metrics are enabled, the drive metrics
of this process follow.`,
		cobra.NoArgs,
		func(ctx context.Context, s *session, _ *cobra.Command, _ []string) error {
			return s.stats(ctx)
		})
}

func (s *session) stats(ctx context.Context) error {
	st, err := s.svc.Stats(ctx, s.user)
	if err != nil {
		return err
	}
	if s.out.Format() != output.FormatTable {
		return s.out.Print(st)
	}

	err = output.KeyValues(s.out.Writer(), [][2]string{
		{"Filesystem", st.FileSystemID.String()},
		{"Root user", st.RootUser},
		{"Entries", strconv.Itoa(st.Entries)},
		{"Owned by " + s.user, strconv.Itoa(st.Owned)},
	})
	if err != nil {
		return err
	}

	if reg := metrics.GetRegistry(); reg != nil {
		_, _ = fmt.Fprintln(s.out.Writer())
		return writeMetrics(s.out.Writer(), reg, metricPrefix)
	}
	return nil
}

// writeMetrics prints every sample of the families named with prefix,
// one "name{labels} value" line each. Histograms print their count and sum.
func writeMetrics(w io.Writer, g prometheus.Gatherer, prefix string) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := formatLabels(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				_, _ = fmt.Fprintf(w, "%s%s %s\n", name, labels, formatFloat(m.GetCounter().GetValue()))
			case dto.MetricType_GAUGE:
				_, _ = fmt.Fprintf(w, "%s%s %s\n", name, labels, formatFloat(m.GetGauge().GetValue()))
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				_, _ = fmt.Fprintf(w, "%s_count%s %d\n", name, labels, h.GetSampleCount())
				_, _ = fmt.Fprintf(w, "%s_sum%s %s\n", name, labels, formatFloat(h.GetSampleSum()))
			}
		}
	}
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, lp := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
