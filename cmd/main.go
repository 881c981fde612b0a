package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"

	"fable/pkg/generate"
	"fable/pkg/inference"
	"fable/pkg/server"
	"fable/pkg/store"
	"fable/pkg/studio"
)

func main() {
	ctx, done := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	geminiKey := os.Getenv("GEMINI_API_KEY")
	images := generate.NewClient(generate.StaticCredential(geminiKey))

	var writer inference.Writer
	openAIKey := os.Getenv("OPENAI_API_KEY")
	openAIBase := os.Getenv("OPENAI_BASE_URL")
	if openAIKey != "" || openAIBase != "" {
		w := inference.NewOpenAIWriter(openAIKey, os.Getenv("OPENAI_MODEL"))
		if openAIBase != "" {
			// Local OpenAI-compatible servers pick their own model.
			w.ChangeBaseURL(openAIBase)
			w.SetModel("")
		}
		writer = w
	} else {
		w, err := inference.NewGeminiWriter(geminiKey, os.Getenv("GEMINI_MODEL"))
		if err != nil {
			log.Fatal("No usable story backend", "err", err)
		}
		writer = w
	}
	writer = inference.NewCached(writer, 30*time.Minute)

	st := &studio.Studio{
		Images: images,
		Speech: images,
		Writer: writer,
	}
	if raw := os.Getenv("FABLE_RATE_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatal("Invalid FABLE_RATE_INTERVAL", "err", err)
		}
		st.Interval = interval
	}

	dataDir := os.Getenv("FABLE_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	snapshots, err := store.New(dataDir, 0)
	if err != nil {
		log.Fatal("Failed to open snapshot store", "err", err)
	}

	srv := server.NewServer(ctx, st, snapshots)

	books, err := snapshots.Load()
	if err != nil {
		log.Warnf("Failed to load storybook snapshot: %v", err)
	} else {
		srv.Books = books
		log.Infof("Loaded %d storybooks", len(books))
	}
	if settings, err := snapshots.LoadSettings(); err == nil {
		srv.Settings = settings
	}

	addr := ":8080"
	if envAddr := os.Getenv("PORT"); envAddr != "" {
		addr = ":" + envAddr
	}

	finishedShutDown := make(chan struct{})
	go func() {
		<-ctx.Done()
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error(err)
		}
		done()
		close(finishedShutDown)
	}()

	if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(err)
	}
	<-finishedShutDown
}
