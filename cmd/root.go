/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nullmodem",
	Short: "Virtual null-modem pairs for serial development and testing",
	Long: `nullmodem emulates crossed serial cables entirely in software.

Endpoints come in fixed pairs: everything written on one side appears on the
other, and modem control lines follow real null-modem wiring (RTS raises the
partner's CTS, DTR raises the partner's DSR and DCD).

Use 'up' to expose pairs as pseudo-terminals for external programs, or
'watch' for an interactive dashboard over a pair.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.nullmodem.yaml)")
	rootCmd.PersistentFlags().IntP("ports", "n", 8, "number of virtual endpoints (must be even)")

	viper.BindPFlag("ports", rootCmd.PersistentFlags().Lookup("ports"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".nullmodem")
	}

	viper.SetEnvPrefix("NULLMODEM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
