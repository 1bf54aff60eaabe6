/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/socialmock/apiserver/config"
	"github.com/socialmock/apiserver/internal/changes"
	"github.com/socialmock/apiserver/internal/indexer"
	"github.com/socialmock/apiserver/internal/mq"
	"github.com/socialmock/apiserver/internal/search"
	"github.com/socialmock/apiserver/internal/server"
	"github.com/socialmock/apiserver/internal/store"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serverSync bool

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the socialmock API server",
	Long: `Starts the socialmock API server. Usage:

	socialmock server
	socialmock server --sync
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open message queue: %v\n", err)
			os.Exit(1)
		}
		defer queue.Close()

		publisher := changes.NewPublisher(queue, cfg.MQ.ChannelPrefix)
		st, err := store.Open(ctx, cfg, store.WithChangeSink(publisher))
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
			os.Exit(1)
		}

		srv, err := server.New(cfg, st)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
			os.Exit(1)
		}

		if serverSync {
			index, err := search.Open(ctx, cfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to open search index: %v\n", err)
				os.Exit(1)
			}
			defer index.Close()

			worker := indexer.New(queue, index, cfg.MQ.ChannelPrefix)
			go func() {
				if err := worker.Run(ctx); err != nil {
					log.Printf("indexer stopped: %v", err)
				}
			}()
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("shutdown: %v", err)
			}
		}()

		log.Printf("listening on %s%s", srv.Addr(), cfg.APIPrefix)
		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().BoolVar(&serverSync, "sync", false, "Run the post search indexer in the same process")
}
