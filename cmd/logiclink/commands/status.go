package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/logiclink/logiclink/internal/cli/health"
	"github.com/logiclink/logiclink/internal/cli/output"
	"github.com/logiclink/logiclink/internal/cli/timeutil"
	"github.com/logiclink/logiclink/pkg/config"
)

var (
	statusOutput string
	statusPort   int
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status of a running capture",
	Long: `Query the status server of a running "logiclink run" and display
its health and the counters of the capture session.

The port defaults to metrics.port of the configuration.

Examples:
  # Check status
  logiclink status

  # Query another port, as JSON
  logiclink status --port 9191 --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusPort, "port", 0, "Status server port (default: from config)")
	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table|json|yaml)")
}

// CaptureStatus is what status prints.
type CaptureStatus struct {
	Running   bool            `json:"running" yaml:"running"`
	Healthy   bool            `json:"healthy" yaml:"healthy"`
	Message   string          `json:"message" yaml:"message"`
	StartedAt string          `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime    string          `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Session   *health.Session `json:"session,omitempty" yaml:"session,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	printer, err := output.NewStdoutPrinter(statusOutput)
	if err != nil {
		return err
	}

	port := statusPort
	if port == 0 {
		cfg, err := config.Load(GetConfigFile())
		if err != nil {
			return err
		}
		port = cfg.Metrics.Port
	}

	client := health.NewClient(fmt.Sprintf("http://localhost:%d", port), 2*time.Second)
	st := queryStatus(cmd.Context(), client)

	if printer.Format() != output.FormatTable {
		return printer.Print(st)
	}
	return printStatusTable(printer, st)
}

func queryStatus(ctx context.Context, client *health.Client) CaptureStatus {
	st := CaptureStatus{Message: "No capture is running"}

	h, err := client.Health(ctx)
	if err != nil {
		return st
	}
	st.Running = true
	st.Healthy = h.Healthy()
	st.StartedAt = h.Data.StartedAt
	st.Uptime = h.Data.Uptime
	if st.Healthy {
		st.Message = "Status server is running and healthy"
	} else {
		st.Message = fmt.Sprintf("Status server is running but unhealthy: %s", h.Error)
	}

	s, err := client.Session(ctx)
	if err != nil {
		st.Message = fmt.Sprintf("Session query failed: %v", err)
		return st
	}
	st.Session = s
	return st
}

func printStatusTable(p *output.Printer, st CaptureStatus) error {
	switch {
	case !st.Running:
		p.Error(st.Message)
		return nil
	case !st.Healthy:
		p.Warning(st.Message)
	default:
		p.Success(st.Message)
	}

	pairs := [][2]string{
		{"Started", timeutil.FormatTime(st.StartedAt)},
		{"Uptime", timeutil.FormatUptime(st.Uptime)},
	}
	if s := st.Session; s != nil {
		state := "finished"
		if s.Running {
			state = "capturing"
		}
		pairs = append(pairs,
			[2]string{"Session", s.ID},
			[2]string{"State", state},
			[2]string{"Duration", timeutil.Compact(time.Duration(s.DurationMs) * time.Millisecond)},
			[2]string{"Blocks", output.Count(s.Blocks)},
			[2]string{"Received", output.Bytes(s.Bytes)},
			[2]string{"Samples/channel", output.Samples(s.Samples)},
			[2]string{"Discarded", output.Count(s.Discarded)},
			[2]string{"Rate", output.Rate(s.Mbps)},
		)
	}
	return output.SimpleTable(p.Writer(), pairs)
}
