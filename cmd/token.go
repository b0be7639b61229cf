package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token --uid <id>",
	Short: "Issue a bearer credential for a user",
	Run: func(cmd *cobra.Command, args []string) {
		uid, _ := cmd.Flags().GetInt64("uid")
		ip, _ := cmd.Flags().GetString("ip")
		if uid <= 0 {
			fmt.Println("--uid is required")
			os.Exit(1)
		}

		env, err := openCommandEnv(cmd)
		if err != nil {
			fmt.Printf("Failed to start: %v\n", err)
			os.Exit(1)
		}
		defer env.close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		token, err := env.app.UserService.IssueToken(ctx, uid, ip)
		if err != nil {
			fmt.Printf("Failed to issue token for uid %d: %v\n", uid, err)
			os.Exit(1)
		}
		fmt.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	fs := tokenCmd.Flags()
	fs.StringP("config", "c", "", "config file path")
	fs.Int64("uid", 0, "user id")
	fs.String("ip", "", "client address recorded in the credential")
}
