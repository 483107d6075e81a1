/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	nullmodem "github.com/allbin/go-nullmodem"
	"github.com/allbin/go-nullmodem/internal/bridge"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// upCmd represents the up command
var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Expose virtual null-modem pairs as pseudo-terminals",
	Long: `Create virtual null-modem pairs and expose every endpoint as a
pseudo-terminal, so external programs can use the pairs with ordinary
serial tooling.

Endpoint 2k is wired to endpoint 2k+1. Bytes written to one pty come out
of its partner's pty; modem line semantics stay inside the engine and are
not representable on the pty side.

Examples:
  nullmodem up
  nullmodem up --ports 2
  nullmodem up -n 16

Press Ctrl+C to tear the pairs down.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ports := viper.GetInt("ports")

		reg, err := nullmodem.NewRegistry(nullmodem.WithPortCount(ports))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer reg.Shutdown()

		var bridges []*bridge.Bridge
		var handles []nullmodem.Port
		defer func() {
			for _, br := range bridges {
				br.Close()
			}
			for _, p := range handles {
				p.Close()
			}
		}()

		for _, index := range reg.Indices() {
			p, err := reg.Open(index)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error opening endpoint %d: %v\n", index, err)
				os.Exit(1)
			}
			handles = append(handles, p)

			br, err := bridge.New(p)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error bridging endpoint %d: %v\n", index, err)
				os.Exit(1)
			}
			bridges = append(bridges, br)
		}

		fmt.Printf("%d null-modem pair(s) up:\n", reg.PairCount())
		for i := 0; i < len(bridges); i += 2 {
			fmt.Printf("  tnt%-2d %s  <->  tnt%-2d %s\n",
				bridges[i].Index(), bridges[i].SlaveName(),
				bridges[i+1].Index(), bridges[i+1].SlaveName())
		}
		fmt.Println("Press Ctrl+C to tear down")

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		fmt.Println("\nTearing down...")
	},
}

func init() {
	rootCmd.AddCommand(upCmd)
}
