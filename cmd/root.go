package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configDefault 内置默认配置，首次运行时写入磁盘
var configDefault string

var rootCmd = &cobra.Command{
	Use:   "fast-asset-delivery",
	Short: "Fast Asset Delivery: signed, time limited downloads for digital goods",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.HelpTemplate()
		cmd.Help()
	},
}

// Execute runs the root command with the embedded default configuration
// Execute 执行根命令
func Execute(c string) {
	configDefault = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
