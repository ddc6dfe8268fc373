package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gavel-labs/gavel/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the records portal, embedding provider, and
generation service.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to index and retrieve chunks.`,
	RunE:  runSettingsEmbedding,
}

var settingsGenerationCmd = &cobra.Command{
	Use:   "generation",
	Short: "Configure generation service",
	Long:  `Configure the model and API key used to generate answers.`,
	RunE:  runSettingsGeneration,
}

var settingsPortalCmd = &cobra.Command{
	Use:   "portal",
	Short: "Configure the records portal",
	Long:  `Point the scraper at a different Granicus archive.`,
	RunE:  runSettingsPortal,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsGenerationCmd)
	settingsCmd.AddCommand(settingsPortalCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Portal]")
	cmd.Printf("  Base URL: %s\n", settings.Portal.BaseURL)
	cmd.Printf("  View ID: %d\n", settings.Portal.ViewID)
	cmd.Printf("  Rate limit: %.1f req/s\n", settings.Portal.RequestsPerSecond)
	cmd.Println()

	cmd.Println("[Data]")
	cmd.Printf("  Directory: %s\n", settings.Data.Dir)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  URL: %s\n", settings.Index.URL)
	cmd.Printf("  Collection: %s\n", settings.Index.Collection)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !settings.Embedding.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Generation]")
	cmd.Printf("  Model: %s\n", settings.Generation.Model)
	switch {
	case settings.Generation.APIKey != "":
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Generation.APIKey))
	case os.Getenv("ANTHROPIC_API_KEY") != "":
		cmd.Printf("  API Key: (from environment)\n")
	default:
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Printf("  Temperature: %.1f\n", settings.Generation.Temperature)
	cmd.Printf("  Max tokens: %d\n", settings.Generation.MaxTokens)
	cmd.Printf("  Top K: %d\n", settings.Generation.TopK)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Sizes: min %d, target %d, max %d\n",
		settings.Chunking.MinSize, settings.Chunking.TargetSize, settings.Chunking.MaxSize)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'gavel settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Gavel Settings Wizard")
	cmd.Println("=====================")
	cmd.Println()

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Step 1: Records Portal")
	cmd.Println("----------------------")
	if err := configurePortal(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Embedding Provider")
	cmd.Println("--------------------------")
	cmd.Println("Chunks are embedded for retrieval. Ollama needs no API key.")
	cmd.Println()
	if err := configureEmbeddingProvider(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Step 3: Generation Service")
	cmd.Println("--------------------------")
	cmd.Println("Answers are generated with the Anthropic API.")
	cmd.Println()
	if err := configureGenerationService(cmd, reader); err != nil {
		return err
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureEmbeddingProvider(cmd, reader)
}

func runSettingsGeneration(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configureGenerationService(cmd, reader)
}

func runSettingsPortal(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)
	return configurePortal(cmd, reader)
}

func configurePortal(cmd *cobra.Command, reader *bufio.Reader) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Printf("Enter portal base URL [%s]: ", settings.Portal.BaseURL)
	baseURL := readLine(reader)
	if baseURL == "" {
		baseURL = settings.Portal.BaseURL
	}

	cmd.Printf("Enter archive view ID [%d]: ", settings.Portal.ViewID)
	viewInput := readLine(reader)
	viewID := settings.Portal.ViewID
	if viewInput != "" {
		viewID, err = strconv.Atoi(viewInput)
		if err != nil {
			return fmt.Errorf("invalid view ID %q", viewInput)
		}
	}

	if err := settingsService.SetPortal(baseURL, viewID); err != nil {
		return fmt.Errorf("failed to configure portal: %w", err)
	}

	cmd.Printf("Portal configured: %s (view %d)\n\n", strings.TrimRight(baseURL, "/"), viewID)
	return nil
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var baseURL string
	if selectedProvider.IsLocal() {
		defaultURL := domain.DefaultSettings().Embedding.BaseURL
		if settings, err := settingsService.Get(); err == nil && settings.Embedding.BaseURL != "" {
			defaultURL = settings.Embedding.BaseURL
		}
		cmd.Printf("Enter Ollama URL [%s]: ", defaultURL)
		baseURL = readLine(reader)
		if baseURL == "" {
			baseURL = defaultURL
		}
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, baseURL, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

func configureGenerationService(cmd *cobra.Command, reader *bufio.Reader) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Printf("Enter model name [%s]: ", settings.Generation.Model)
	model := readLine(reader)
	if model == "" {
		model = settings.Generation.Model
	}
	if err := settingsService.SetGenerationModel(model); err != nil {
		return fmt.Errorf("failed to set generation model: %w", err)
	}

	envKey := os.Getenv("ANTHROPIC_API_KEY") != ""
	switch {
	case envKey:
		cmd.Print("Enter Anthropic API key [keep ANTHROPIC_API_KEY from environment]: ")
	case settings.Generation.APIKey != "":
		cmd.Printf("Enter Anthropic API key [keep %s]: ", maskAPIKey(settings.Generation.APIKey))
	default:
		cmd.Print("Enter Anthropic API key: ")
	}
	apiKey := readPassword()
	cmd.Println()

	if apiKey == "" {
		if !envKey && settings.Generation.APIKey == "" {
			return errors.New("an API key is required (or export ANTHROPIC_API_KEY)")
		}
	} else {
		if err := settingsService.SetGenerationKey(apiKey); err != nil {
			return fmt.Errorf("failed to set generation API key: %w", err)
		}
	}

	cmd.Printf("Generation service configured: %s\n\n", model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
