package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ablewear/ablewear/config"
	"github.com/ablewear/ablewear/internal/adminapi"
	"github.com/ablewear/ablewear/internal/app"
	"github.com/ablewear/ablewear/internal/mailer"
	"github.com/ablewear/ablewear/internal/shopapi"
	"github.com/ablewear/ablewear/internal/suggest"
	"github.com/ablewear/ablewear/internal/webserver"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	h        = flag.Bool("h", false, "help usage")
	showVer  = flag.Bool("v", false, "show version")
	conffile = flag.String("c", "/etc/ablewear.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and initialize the database, all data is lost")
	dev      = flag.Bool("x", false, "debug mode")
)

var (
	BuildVersion string
	ReleaseDate  string
)

func printVersion() {
	fmt.Printf("ablewear %s (built %s)\n", BuildVersion, ReleaseDate)
}

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		os.Exit(0)
	}
	if *showVer {
		printVersion()
		os.Exit(0)
	}

	cfg := config.LoadConfig(*conffile)
	if *dev {
		cfg.System.Debug = true
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.DropAll()
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	var suggestClient suggest.Client
	if cfg.Suggest.Enabled {
		suggestClient = suggest.NewGatewayClient(cfg.Suggest)
	}

	mailService, err := mailer.New(cfg.Smtp)
	if err != nil {
		zap.S().Errorf("mailer init failed: %v", err)
	} else {
		if err := mailService.Attach(application.Bus()); err != nil {
			zap.S().Errorf("mailer attach failed: %v", err)
		}
		defer mailService.Release()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := webserver.Init(application)
	shopapi.InitRouter(suggestClient)
	adminapi.InitRouter()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(ctx)
	})

	if err := g.Wait(); err != nil {
		zap.S().Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
