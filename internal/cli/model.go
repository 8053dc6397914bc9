package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevenseconds/vibescout/internal/config"
)

var modelCmd = &cobra.Command{
	Use:   "model",
	Short: "Inspect or switch the active embedding model",
}

var modelGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the active and stored embedding models",
	RunE:  runModelGet,
}

var modelSetCmd = &cobra.Command{
	Use:   "set <provider>",
	Short: "Switch the active embedding provider",
	Long: `set changes provider.provider (and persists it to the config file) for
the next process to pick up. Store.CurrentModel is set implicitly by the
first Insert under a model and cannot be changed directly — run
"vibescout index --force" afterward to re-embed existing content under
the new model.
`,
	Args: cobra.ExactArgs(1),
	RunE: runModelSet,
}

func init() {
	rootCmd.AddCommand(modelCmd)
	modelCmd.AddCommand(modelGetCmd)
	modelCmd.AddCommand(modelSetCmd)
}

func runModelGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	stored, err := a.store.CurrentModel(ctx)
	if err != nil {
		return fmt.Errorf("cli: read current model: %w", err)
	}

	fmt.Printf("Active provider: %s (%s)\n", a.cfg.Provider.Provider, a.embedder.Name())
	if stored == "" {
		fmt.Println("Store model: (unset — nothing indexed yet)")
		return nil
	}
	fmt.Printf("Store model:     %s\n", stored)
	if stored != a.embedder.Name() {
		fmt.Println("Warning: store model does not match the active provider; searches will fail until reindexed.")
	}
	return nil
}

func runModelSet(cmd *cobra.Command, args []string) error {
	providerName := args[0]

	path, err := config.ConfigFilePath(cfgFile)
	if err != nil {
		return err
	}
	loader := config.NewLoader()
	if cfgFile != "" {
		loader = config.NewLoaderForPath(cfgFile)
	}
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("cli: load config: %w", err)
	}

	cfg.Provider.Provider = providerName
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("cli: invalid configuration after switching provider: %w", err)
	}
	if err := config.Save(cfg, path); err != nil {
		return fmt.Errorf("cli: save config: %w", err)
	}

	fmt.Printf("Active embedding provider set to %q in %s.\n", providerName, path)
	fmt.Println("Run \"vibescout index --force\" to re-embed existing content under the new model.")
	return nil
}
