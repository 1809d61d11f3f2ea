// Contracta CLI: инструмент командной строки для типов контрактов,
// шаблонов, контрактов и рендеринга.
//
// Использование:
//
//	contracta [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	type          Типы контрактов и версии шаблонов
//	contract      Снимки контрактов
//	render        Рендеринг (в том числе локальный, без API)
//	preview       Синхронный предпросмотр на сервере
//	placeholders  Каталог токенов шаблона
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Contracta/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "contracta",
		Short:         "Contracta CLI: contract templates and rendering",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := "http://localhost:8080"
	if v := os.Getenv("CONTRACTA_API_URL"); v != "" {
		defaultURL = v
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewTypeCmd(clientFn, outputFn),
		cli.NewContractCmd(clientFn, outputFn),
		cli.NewRenderCmd(clientFn, outputFn),
		cli.NewPreviewCmd(clientFn, outputFn),
		cli.NewPlaceholdersCmd(outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
