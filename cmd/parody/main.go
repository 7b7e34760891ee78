package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/makeaparody/api/internal/client"
	"github.com/makeaparody/api/internal/config"
	"github.com/makeaparody/api/internal/model"
	"github.com/makeaparody/api/internal/pipeline"
	"github.com/makeaparody/api/internal/service"
)

// Build flags
var version = ""
var commit = ""
var date = ""

func main() {
	// Create signal based context
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Launch command
	cmd := newCommand()
	if err := cmd.ParseAndRun(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *ffcli.Command {
	fs := flag.NewFlagSet("parody", flag.ExitOnError)

	return &ffcli.Command{
		ShortUsage: "parody [flags] <subcommand>",
		FlagSet:    fs,
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			newVersionCommand(),
			newRunCommand(),
			newLyricsCommand(),
			newInstrumentalCommand(),
		},
	}
}

func newVersionCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "version",
		ShortUsage: "parody version",
		ShortHelp:  "print version",
		Exec: func(ctx context.Context, args []string) error {
			v := version
			if v == "" {
				if buildInfo, ok := debug.ReadBuildInfo(); ok {
					v = buildInfo.Main.Version
				}
			}
			if v == "" {
				v = "dev"
			}
			versionFields := []string{v}
			if commit != "" {
				versionFields = append(versionFields, commit)
			}
			if date != "" {
				versionFields = append(versionFields, date)
			}
			fmt.Println(strings.Join(versionFields, " "))
			return nil
		},
	}
}

func commandOptions() []ff.Option {
	return []ff.Option{
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithEnvVarPrefix("parody"),
	}
}

func newRunCommand() *ffcli.Command {
	cmd := "run"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	var song, artist, topic, style, title, gender, modelName, output string
	var pollInterval time.Duration
	var pollMaxTicks int
	fs.StringVar(&song, "song", "", "song title")
	fs.StringVar(&artist, "artist", "", "artist (optional)")
	fs.StringVar(&topic, "topic", "", "what the parody is about")
	fs.StringVar(&style, "style", "", "music style tags")
	fs.StringVar(&title, "title", "", "title for the generated track")
	fs.StringVar(&gender, "vocal-gender", "any", "vocal gender (any, male, female)")
	fs.StringVar(&modelName, "model", "", "music model (defaults to SUNO_MODEL)")
	fs.DurationVar(&pollInterval, "poll-interval", 0, "status poll interval (defaults to SUNO_POLL_INTERVAL)")
	fs.IntVar(&pollMaxTicks, "poll-max", 0, "maximum status checks (defaults to SUNO_POLL_MAX_TICKS)")
	fs.StringVar(&output, "output", "", "write the final session snapshot as JSON to this file")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("parody %s [flags]", cmd),
		Options:    commandOptions(),
		ShortHelp:  "search, rewrite and generate a parody song",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if pollInterval > 0 {
				cfg.Suno.PollInterval = pollInterval
			}
			if pollMaxTicks > 0 {
				cfg.Suno.PollMaxTicks = pollMaxTicks
			}
			if strings.TrimSpace(topic) == "" {
				return fmt.Errorf("%w: --topic is required", model.ErrMissingInput)
			}

			ctrl, err := newController(ctx, cfg)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			snap, err := ctrl.Search(ctx, model.NewSongQuery(song, artist))
			if err != nil {
				return err
			}
			if snap.LyricsError != nil {
				return fmt.Errorf("lyrics: %s", snap.LyricsError.Message)
			}
			log.Printf("Lyrics: %s (%s)", snap.Lyrics.Title, snap.Lyrics.SourceURL)
			if snap.Instrumental != nil {
				log.Printf("Instrumental: https://www.youtube.com/watch?v=%s", snap.Instrumental.VideoID)
			} else if snap.InstrumentalError != nil {
				log.Printf("Instrumental: %s", snap.InstrumentalError.Message)
			}

			snap, err = ctrl.Rewrite(ctx, topic)
			if err != nil {
				return err
			}
			fmt.Println(snap.Parody.Text)

			if _, err := ctrl.GenerateMusic(ctx, service.MusicOptions{
				Style:       style,
				Title:       title,
				VocalGender: model.ParseVocalGender(gender),
				Model:       modelName,
			}); err != nil {
				return err
			}

			snap, err = ctrl.Wait(ctx)
			if errors.Is(err, context.Canceled) {
				snap = ctrl.Cancel()
			} else if err != nil {
				return err
			}

			if output != "" {
				if err := writeSnapshot(output, snap); err != nil {
					return err
				}
			}

			switch snap.State {
			case pipeline.StateComplete:
				fmt.Println(snap.Music.AudioURL)
				if snap.Music.ArchivedURL != "" {
					fmt.Println(snap.Music.ArchivedURL)
				}
				return nil
			case pipeline.StateFailed:
				return fmt.Errorf("music: %s", snap.MusicError.Message)
			}
			return fmt.Errorf("music generation stopped in state %s", snap.State)
		},
	}
}

func newLyricsCommand() *ffcli.Command {
	cmd := "lyrics"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	var song, artist string
	fs.StringVar(&song, "song", "", "song title")
	fs.StringVar(&artist, "artist", "", "artist (optional)")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("parody %s [flags]", cmd),
		Options:    commandOptions(),
		ShortHelp:  "print normalized lyrics for a song",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			svc := service.NewLyricsService(client.NewGeniusClient(&cfg.Genius))
			result, err := svc.FetchLyrics(ctx, model.NewSongQuery(song, artist))
			if err != nil {
				return err
			}
			fmt.Printf("%s\n%s\n\n%s\n", result.Title, result.SourceURL, result.Text)
			return nil
		},
	}
}

func newInstrumentalCommand() *ffcli.Command {
	cmd := "instrumental"
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	_ = fs.String("config", "", "config file (optional)")

	var song, artist string
	fs.StringVar(&song, "song", "", "song title")
	fs.StringVar(&artist, "artist", "", "artist (optional)")

	return &ffcli.Command{
		Name:       cmd,
		ShortUsage: fmt.Sprintf("parody %s [flags]", cmd),
		Options:    commandOptions(),
		ShortHelp:  "find an instrumental version of a song",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			yt, err := client.NewYouTubeClient(ctx, &cfg.YouTube)
			if err != nil {
				return err
			}
			result, err := service.NewInstrumentalService(yt).FindInstrumental(ctx, model.NewSongQuery(song, artist))
			if err != nil {
				return err
			}
			if result == nil {
				return fmt.Errorf("%w: no instrumental found", model.ErrNotFound)
			}
			fmt.Printf("%s\n%s\nhttps://www.youtube.com/watch?v=%s\n", result.Title, result.ChannelTitle, result.VideoID)
			return nil
		},
	}
}

// newController wires a standalone controller with the same stages the
// server uses
func newController(ctx context.Context, cfg *config.Config) (*pipeline.Controller, error) {
	yt, err := client.NewYouTubeClient(ctx, &cfg.YouTube)
	if err != nil {
		return nil, err
	}
	suno := client.NewSunoClient(&cfg.Suno)
	poller := service.NewPoller(suno, cfg.Suno.PollInterval, cfg.Suno.PollMaxTicks).
		WithTick(func(tick int, status string) {
			fmt.Fprintf(os.Stderr, "  [%d] %s\n", tick, status)
		})

	deps := pipeline.Deps{
		Lyrics:       service.NewLyricsService(client.NewGeniusClient(&cfg.Genius)),
		Instrumental: service.NewInstrumentalService(yt),
		Rewriter:     service.NewParodyService(client.NewGroqClient(&cfg.Groq)),
		Music:        service.NewMusicService(suno, cfg.CallbackURL(), cfg.Suno.Model),
		Poller:       poller,
	}
	if cfg.R2.AccessKeyID != "" && cfg.R2.SecretAccessKey != "" {
		r2, err := client.NewR2Client(&cfg.R2)
		if err != nil {
			log.Printf("Warning: R2 client not initialized: %v", err)
		} else {
			deps.Archiver = service.NewArchiveService(r2)
		}
	}
	return pipeline.NewController("cli", deps), nil
}

func writeSnapshot(path string, snap pipeline.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
