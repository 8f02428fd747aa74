package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const DefaultSeedCount = 1000

var seedCmd = &cobra.Command{
	Use:   "seed [count]",
	Short: "Fill the configured storage with fake books",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count := DefaultSeedCount
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid count %q: must be a positive integer", args[0])
			}
			count = n
		}

		config, err := LoadAndInitConfigs(GitCommit, GitTag, BuildTime, configFile)
		if err != nil {
			return fmt.Errorf("failed to setup app configuration: %w", err)
		}
		logger, flusher := SetupLogging(config, nil)
		defer func() { _ = flusher() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), config.Server.ShutdownTimeout)
		storage, err := NewBookStorage(ctx, logger, config)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to setup book storage: %w", err)
		}
		defer func() {
			if cerr := storage.Close(context.Background()); cerr != nil {
				logger.Error("failed to close book storage", zap.Error(cerr))
			}
		}()

		inserted, err := SeedBooks(cmd.Context(), storage, gofakeit.New(0), count)
		logger.Info("seeding completed", zap.Int("books.inserted", inserted), zap.Int("books.requested", count))
		if err != nil {
			return fmt.Errorf("failed to seed books: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d books inserted\n", inserted)
		return nil
	},
}

// SeedBooks inserts count fake books. Each name is suffixed with its index
// so that seeded books never collide with each other.
func SeedBooks(ctx context.Context, storage BookStorage, faker *gofakeit.Faker, count int) (int, error) {
	for i := 0; i < count; i++ {
		book := Book{
			Name:   fmt.Sprintf("%s-%d", faker.BookTitle(), i),
			Author: faker.BookAuthor(),
			Year:   int32(faker.Year()),
		}
		if _, err := storage.Add(ctx, book); err != nil {
			return i, err
		}
	}
	return count, nil
}
