package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/freundallein/queuewatch/chassis/config"
	log "github.com/freundallein/queuewatch/chassis/logging"
	"github.com/freundallein/queuewatch/chassis/metrics"
	"github.com/freundallein/queuewatch/chassis/profile"
	"github.com/freundallein/queuewatch/chassis/queue"
	"github.com/freundallein/queuewatch/chassis/storage"
	"github.com/freundallein/queuewatch/demo"
)

type options struct {
	deleteReceived bool
	limit          int
}

// bindFlags registers flags that override the loaded config in place.
func bindFlags(fs *pflag.FlagSet, appCfg *config.AppConfig) *options {
	opts := &options{}
	fs.StringVarP(&appCfg.Queue.URL, "queue", "q", appCfg.Queue.URL, "queue url")
	fs.StringVar(&appCfg.AWS.Region, "region", appCfg.AWS.Region, "aws region, the profile region is used when empty")
	fs.StringVar(&appCfg.AWS.CredentialsProfile, "profile", appCfg.AWS.CredentialsProfile, "credentials profile name")
	fs.StringVar(&appCfg.AWS.CredentialsFile, "credentials-file", appCfg.AWS.CredentialsFile, "shared credentials file")
	fs.StringVar(&appCfg.AWS.AccessKey, "access-key", appCfg.AWS.AccessKey, "access key written into the profile")
	fs.StringVar(&appCfg.AWS.SecretKey, "secret-key", appCfg.AWS.SecretKey, "secret key written into the profile")
	fs.StringVar(&appCfg.AWS.Endpoint, "endpoint", appCfg.AWS.Endpoint, "custom service endpoint")
	fs.IntVar(&appCfg.Queue.MaxMessages, "max-messages", appCfg.Queue.MaxMessages, "messages per receive, 1..10")
	fs.IntVar(&appCfg.Queue.WaitTime, "wait-time", appCfg.Queue.WaitTime, "receive long polling seconds, 0..20")
	fs.IntVar(&appCfg.Watch.MaxSeconds, "max-seconds", appCfg.Watch.MaxSeconds, "how long wait blocks")
	fs.IntVar(&appCfg.Watch.PollInterval, "poll-interval", appCfg.Watch.PollInterval, "seconds between existence checks")
	fs.StringVar(&appCfg.Storage.DSN, "dsn", appCfg.Storage.DSN, "postgres journal dsn, journal is off when empty")
	fs.StringVar(&appCfg.Metrics.Addr, "metrics-addr", appCfg.Metrics.Addr, "metrics listen address, off when empty")
	fs.StringVar(&appCfg.LogLevel, "loglevel", appCfg.LogLevel, "log level")
	fs.BoolVar(&opts.deleteReceived, "delete", false, "delete received messages")
	fs.IntVar(&opts.limit, "limit", 20, "journal entries shown by history")
	return opts
}

// prepareProfile writes the configured keys into the credentials file and loads the profile back.
func prepareProfile(appCfg *config.AppConfig) (*profile.Profile, error) {
	path := appCfg.AWS.CredentialsFile
	if path == "" {
		var err error
		path, err = profile.DefaultCredentialsFile()
		if err != nil {
			return nil, err
		}
		appCfg.AWS.CredentialsFile = path
	}
	name := appCfg.AWS.CredentialsProfile
	if appCfg.AWS.AccessKey != "" && appCfg.AWS.SecretKey != "" {
		if err := profile.WriteProfile(path, name, appCfg.AWS.AccessKey, appCfg.AWS.SecretKey); err != nil {
			return nil, err
		}
		if appCfg.AWS.Region != "" {
			if err := profile.AddRegion(path, name, appCfg.AWS.Region); err != nil {
				return nil, err
			}
		}
		log.WithFields(log.Fields{
			"event":   "profile_written",
			"profile": name,
			"path":    path,
		}).Info("credentials profile updated")
	}
	prof, err := profile.Load(path, name)
	if err != nil {
		return nil, err
	}
	if appCfg.AWS.Region == "" {
		appCfg.AWS.Region = prof.Region
	}
	return prof, nil
}

func describeProfile(prof *profile.Profile, path string) string {
	key := prof.AccessKey
	if len(key) > 4 {
		key = "****" + key[len(key)-4:]
	}
	return fmt.Sprintf("profile %s (%s)\n  access key: %s\n  region: %s", prof.Name, path, key, prof.Region)
}

func openJournal(ctx context.Context, appCfg *config.AppConfig) (storage.Journal, error) {
	if appCfg.Storage.DSN == "" {
		return storage.NopJournal{}, nil
	}
	return storage.InitPGJournal(ctx, storage.Config{DSN: appCfg.Storage.DSN})
}

func fail(event string, err error) int {
	log.WithFields(log.Fields{
		"event": event,
	}).Error(err)
	return 1
}

func main() {
	os.Exit(start())
}

func start() int {
	appCfg, err := config.Read()
	if err != nil {
		return fail("config_read_failed", err)
	}
	fs := pflag.NewFlagSet("producer", pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	opts := bindFlags(fs, appCfg)
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	appCfg.Normalize()
	log.Init("producer", appCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prof, err := prepareProfile(appCfg)
	if err != nil {
		return fail("profile_failed", err)
	}
	client, err := queue.InitAWSQueue(queue.Config{
		Region:             appCfg.AWS.Region,
		CredentialsFile:    appCfg.AWS.CredentialsFile,
		CredentialsProfile: appCfg.AWS.CredentialsProfile,
		Endpoint:           appCfg.AWS.Endpoint,
		Retries:            appCfg.AWS.Retries,
	})
	if err != nil {
		return fail("queue_init_failed", err)
	}
	journal, err := openJournal(ctx, appCfg)
	if err != nil {
		return fail("journal_init_failed", err)
	}
	defer journal.Close()

	if appCfg.Metrics.Addr != "" {
		srv := metrics.NewServer(appCfg.Metrics.Addr)
		srv.Start(func(err error) {
			log.WithFields(log.Fields{
				"event": "metrics_server_failed",
			}).Error(err)
		})
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.WithFields(log.Fields{
					"event": "metrics_shutdown_failed",
				}).Error(err)
			}
		}()
	}
	log.WithFields(log.Fields{
		"event":   "init_service",
		"run":     uuid.NewString(),
		"profile": prof.Name,
		"region":  appCfg.AWS.Region,
	}).Info("producer initialized")

	s := &session{
		prog: demo.New(&demo.Config{
			Queue:       client,
			Journal:     journal,
			Out:         os.Stdout,
			MaxMessages: appCfg.Queue.MaxMessages,
		}),
		cfg:     appCfg,
		out:     os.Stdout,
		stdin:   os.Stdin,
		delete:  opts.deleteReceived,
		limit:   opts.limit,
		profile: describeProfile(prof, appCfg.AWS.CredentialsFile),
	}
	if err := s.run(ctx, fs.Args()); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			fs.Usage()
			return 2
		}
		log.WithFields(log.Fields{
			"event": "command_failed",
			"args":  fs.Args(),
		}).Error(err)
		return 1
	}
	return 0
}
