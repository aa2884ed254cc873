package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FlowMonReport/internal/config"
	"FlowMonReport/internal/logging"
	"FlowMonReport/internal/model"
	"FlowMonReport/internal/report"
	"FlowMonReport/internal/writer"

	"github.com/gorilla/mux"
	"github.com/m-lab/go/rtx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

var configPath = flag.String("config", "configs/config.yaml", "path of the YAML config file")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadOrDefault(*configPath)
	rtx.Must(err, "Failed to load configuration")
	rtx.Must(logging.Setup(cfg.Log.Level, cfg.Log.Format), "Failed to set up logging")

	builder, err := report.NewBuilderFromConfig(cfg)
	rtx.Must(err, "Failed to create report builder")

	apiHandler := &APIHandler{builder: builder, dir: cfg.Report.InputDir}

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: logging.MakeAccessLogHandler(newRouter(apiHandler)),
	}

	go func() {
		logging.Logger.Infof("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.WithError(err).Fatalf("Could not listen on %s", server.Addr)
		}
	}()

	// gRPC health service
	lis, err := net.Listen("tcp", cfg.API.GRPCAddr)
	rtx.Must(err, "Failed to listen on %s", cfg.API.GRPCAddr)
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	go func() {
		logging.Logger.Infof("gRPC health server starting on %s", cfg.API.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logging.Logger.WithError(err).Fatal("gRPC server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("API server shutting down...")

	healthServer.Shutdown()
	grpcServer.GracefulStop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rtx.Must(server.Shutdown(ctx), "Server forced to shutdown")
	logging.Logger.Info("API server exited.")
}

func newRouter(h *APIHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/report", h.reportHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/report.csv", h.reportCSVHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// APIHandler serves reports built on demand from the trace directory.
type APIHandler struct {
	builder *report.Builder
	dir     string
}

func (h *APIHandler) build(w http.ResponseWriter, r *http.Request) (*model.Report, bool) {
	rep, err := h.builder.Build(r.Context(), h.dir)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to build report: %v", err), http.StatusInternalServerError)
		return nil, false
	}
	return rep, true
}

// reportHandler returns the report of the trace directory as JSON.
func (h *APIHandler) reportHandler(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}
	if rep.Skipped == nil {
		rep.Skipped = []model.SkippedFile{}
	}

	jsonBytes, err := json.Marshal(rep)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal response: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(jsonBytes)
}

// reportCSVHandler returns the results table.
func (h *APIHandler) reportCSVHandler(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.build(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := writer.MarshalCSV(rep, &buf); err != nil {
		http.Error(w, fmt.Sprintf("failed to marshal table: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
