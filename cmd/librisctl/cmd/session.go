package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/libris-app/libris/domain"
	"github.com/libris-app/libris/mongodb"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	Short:   "Manage user sessions",
	Aliases: []string{"sessions"},
}

// withSessionRepo connects to MongoDB, runs fn, and tears the connection
// down again. librisctl is a maintenance tool and connects per invocation.
func withSessionRepo(fn func(ctx context.Context, repo domain.SessionRepository) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer mongodb.CloseMongoDB(ctx)

	repo, err := mongodb.NewSessionRepository(ctx, mongodb.GetDB())
	if err != nil {
		return fmt.Errorf("failed to initialize session repository: %w", err)
	}
	return fn(ctx, repo)
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		if userID == "" {
			return fmt.Errorf("--user is required")
		}

		return withSessionRepo(func(ctx context.Context, repo domain.SessionRepository) error {
			sessions, err := repo.ListSessionsByUserID(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions found.")
				return nil
			}
			out, err := yaml.Marshal(sessions)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		})
	},
}

var sessionRevokeCmd = &cobra.Command{
	Use:   "revoke",
	Short: "Revoke every session of a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		if userID == "" {
			return fmt.Errorf("--user is required")
		}

		return withSessionRepo(func(ctx context.Context, repo domain.SessionRepository) error {
			n, err := repo.RevokeUserSessions(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to revoke sessions: %w", err)
			}
			fmt.Printf("Revoked %d session(s).\n", n)
			return nil
		})
	},
}

var sessionPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete all expired sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSessionRepo(func(ctx context.Context, repo domain.SessionRepository) error {
			n, err := repo.CleanupExpiredSessions(ctx)
			if err != nil {
				return fmt.Errorf("failed to purge expired sessions: %w", err)
			}
			fmt.Printf("Deleted %d expired session(s).\n", n)
			return nil
		})
	},
}

func init() {
	sessionListCmd.Flags().String("user", "", "User ID to list sessions for")
	sessionRevokeCmd.Flags().String("user", "", "User ID whose sessions to revoke")

	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionRevokeCmd)
	sessionCmd.AddCommand(sessionPurgeCmd)
	rootCmd.AddCommand(sessionCmd)
}
