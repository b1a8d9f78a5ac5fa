package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/capexwatch/internal/api"
	"github.com/wonny/capexwatch/internal/scheduler"
	"github.com/wonny/capexwatch/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "API 서버 + 파이프라인 스케줄러 실행",
	Long: `HTTP API, 대시보드 WebSocket, 주기적 파이프라인 스케줄러를 함께 실행합니다.

Examples:
  go run ./cmd/capexwatch serve
  go run ./cmd/capexwatch serve --port 9000 --run-now
  go run ./cmd/capexwatch serve --no-scheduler`,
	RunE: runServe,
}

var (
	servePort        string
	serveRunNow      bool
	serveNoScheduler bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default: PORT)")
	serveCmd.Flags().BoolVar(&serveRunNow, "run-now", false, "run the pipeline once at startup")
	serveCmd.Flags().BoolVar(&serveNoScheduler, "no-scheduler", false, "disable the periodic pipeline job")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, bootstrapOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if servePort != "" {
		a.cfg.Port = servePort
	}

	hub := api.NewHub(a.log)
	defer hub.Close()

	router := api.NewRouter(a.orchestrator, hub, a.metrics, a.cfg.API, a.log)
	server := api.New(a.cfg, a.log, router)

	var (
		sched   *scheduler.Scheduler
		jobName string
	)
	if a.cfg.Scheduler.Enabled && !serveNoScheduler {
		sched = scheduler.New(a.log, scheduler.DefaultOptions())
		job := jobs.NewPipelineJob(a.orchestrator, hub, a.cfg.Scheduler.Schedule, a.log)
		jobName = job.Name()
		if err := sched.AddJob(job); err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(server.Start)

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if sched != nil {
		sched.Start()
		g.Go(func() error {
			<-gctx.Done()
			sched.Stop()
			return nil
		})
		if serveRunNow {
			g.Go(func() error {
				if _, err := sched.RunJob(jobName); err != nil {
					a.log.WithError(err).Warn("Startup run skipped")
				}
				return nil
			})
		}
	}

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	if a.metrics != nil {
		fmt.Println("  GET  /metrics")
	}
	fmt.Println("  GET  /ws/dashboard")
	fmt.Println("  GET  /api/dashboard")
	fmt.Println("  GET  /api/runs/{runID}/{kind}")
	fmt.Println("  POST /api/runs")
	fmt.Println("  GET  /api/scenarios/presets")
	fmt.Println("  POST /api/scenarios/simulate")
	if sched != nil {
		fmt.Printf("\nPipeline schedule: %s\n", a.cfg.Scheduler.Schedule)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := g.Wait(); err != nil {
		return err
	}
	a.log.Info("Server stopped")
	return nil
}
