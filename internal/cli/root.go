package cli

import (
	"fmt"
	"os"

	"github.com/hostwatch/hostwatch/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile      string
	outputFormat string
	serverURL    string
	adminToken   string
	apiClient    *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "hostwatch",
	Short: "hostwatch CLI - host monitoring and alerting",
	Long: `The hostwatch CLI manages a hostwatch collector: registering hosts,
configuring checks, inspecting samples and working with alerts.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Config commands never need a client
		if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}
		return initClient()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.hostwatch/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "collector URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&adminToken, "token", "", "admin token (overrides config)")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("admin_token", rootCmd.PersistentFlags().Lookup("token"))

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newHostCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newAlertCmd())
	rootCmd.AddCommand(newEvaluateCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		configDir := home + "/.hostwatch"
		_ = os.MkdirAll(configDir, 0700)
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("HOSTWATCH")
	viper.AutomaticEnv()

	viper.SetDefault("server_url", "http://localhost:8080")
	viper.SetDefault("output", "table")

	_ = viper.ReadInConfig()
}

func initClient() error {
	url := viper.GetString("server_url")
	if serverURL != "" {
		url = serverURL
	}
	token := viper.GetString("admin_token")
	if adminToken != "" {
		token = adminToken
	}

	apiClient = client.NewClient(client.Config{
		BaseURL:    url,
		AdminToken: token,
	})
	return nil
}

func getOutputFormat() string {
	if outputFormat != "" && outputFormat != "table" {
		return outputFormat
	}
	return viper.GetString("output")
}
