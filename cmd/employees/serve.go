package main

import (
	"github.com/Sternrassler/employee-client/internal/fakeapi"
	"github.com/Sternrassler/employee-client/pkg/repository"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newFakeAPICmd(a *app) *cobra.Command {
	var (
		addr string
		seed int
	)

	cmd := &cobra.Command{
		Use:   "fake-api",
		Short: "Serve an in-memory employee API for local use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.FakeAPI.Addr
			}
			if !cmd.Flags().Changed("seed") {
				seed = a.cfg.FakeAPI.Seed
			}

			if !a.debug {
				gin.SetMode(gin.ReleaseMode)
			}

			repo := repository.NewMemory(fakeapi.Seed(seed)...)
			return fakeapi.New(repo).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":3000", "listen address")
	cmd.Flags().IntVar(&seed, "seed", 25, "number of generated records")
	return cmd
}
