package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/vue-exporter/internal/config"
	"github.com/sweeney/vue-exporter/internal/poller"
	"github.com/sweeney/vue-exporter/internal/sink"
	"github.com/sweeney/vue-exporter/internal/vue"
)

// Exit status when no Vue session can ever be established.
const exitBadCredentials = 2

func main() {
	configPath := flag.String("config", "/etc/vue-exporter/config.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath, "./config.toml")
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if cfg.Vue.Username == "" || cfg.Vue.Password == "" {
		log.Fatal("Vue credentials missing — set VUE_USERNAME and VUE_PASSWORD")
	}

	log.Printf("vue-exporter starting (interval: %s, metrics: %s%s)",
		cfg.Vue.PollInterval, cfg.Web.ListenAddr, cfg.Web.MetricsPath)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	reg := prometheus.NewRegistry()
	recorders := sink.Multi{sink.NewPromSink(reg)}

	var mqttSink *sink.MQTTSink
	if cfg.MQTT.Enabled {
		mqttSink, err = sink.NewMQTTSink(cfg.MQTT)
		if err != nil {
			log.Fatalf("connecting to MQTT broker: %v", err)
		}
		recorders = append(recorders, mqttSink)
		log.Printf("republishing to MQTT at %s", cfg.MQTT.Broker)
	}

	srv := serveMetrics(cfg.Web, reg)

	client := vue.NewHTTPClient(cfg.Vue.APIBase)
	sched := poller.New(client, recorders, cfg.Vue)

	runErr := sched.Run(ctx)

	log.Println("shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("stopping metrics server: %v", err)
	}
	if mqttSink != nil {
		if err := mqttSink.Close(); err != nil {
			log.Printf("closing MQTT sink: %v", err)
		}
	}

	// Run only fails when no session could ever be established.
	if errors.Is(runErr, poller.ErrInitialLogin) {
		log.Printf("unable to log in — check VUE_USERNAME/VUE_PASSWORD: %v", runErr)
		os.Exit(exitBadCredentials)
	}
	log.Println("exiting")
}

// serveMetrics starts the Prometheus exposition endpoint in the background.
func serveMetrics(cfg config.WebConfig, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server: %v", err)
		}
	}()
	return srv
}
