package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	chromem "github.com/philippgille/chromem-go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/policydesk/policydesk/plugin/docload"
	"github.com/policydesk/policydesk/plugin/vectorstore"
	"github.com/policydesk/policydesk/server"
	"github.com/policydesk/policydesk/server/profile"
	v1 "github.com/policydesk/policydesk/server/router/api/v1"
	"github.com/policydesk/policydesk/store"
	"github.com/policydesk/policydesk/store/db"
)

// policyDocumentPath is the fixed ingestion input. Ingestion takes no flags:
// one file, one chunking policy, one collection.
const policyDocumentPath = "data/policy.md"

var rootCmd = &cobra.Command{
	Use:   "policydesk",
	Short: "Retrieval-augmented expense-policy chat assistant",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := profile.FromEnv()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		driver, err := db.NewDriver(p)
		if err != nil {
			return err
		}
		claims := store.New(driver)
		defer claims.Close()
		if err := claims.Migrate(ctx); err != nil {
			return err
		}

		vs, err := vectorstore.New(p.Data, embedFunc(p))
		if err != nil {
			return err
		}

		oracle, err := v1.NewLLMOracle(p)
		if err != nil {
			return err
		}

		api := v1.NewAPIV1Service(p, claims, store.NewChatStore(), v1.NewAgent(oracle, v1.NewToolSet(vs, claims)))
		srv := server.New(p, api)

		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			slog.Info("serving", "addr", p.ListenAddr(), "driver", p.Driver, "chunks", vs.Count())
			return srv.ListenAndServe()
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
		return g.Wait()
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed the policy document into the vector store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := profile.FromEnv()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		text, err := docload.Load(policyDocumentPath)
		if err != nil {
			return err
		}
		chunks := docload.Split(text, docload.DefaultChunkSize, docload.DefaultChunkOverlap)
		slog.Info("chunked policy document", "path", policyDocumentPath, "chunks", len(chunks))

		vs, err := vectorstore.New(p.Data, embedFunc(p))
		if err != nil {
			return err
		}
		if err := vs.UpsertChunks(ctx, chunks); err != nil {
			return err
		}
		slog.Info("ingestion complete", "indexed", vs.Count())
		return nil
	},
}

func embedFunc(p *profile.Profile) chromem.EmbeddingFunc {
	return chromem.NewEmbeddingFuncOpenAICompat(p.LLMBaseURL, p.LLMAPIKey, p.EmbeddingModel, nil)
}

func main() {
	_ = godotenv.Load()
	rootCmd.AddCommand(serveCmd, ingestCmd)
	if err := rootCmd.Execute(); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}
