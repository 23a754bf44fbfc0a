package cli

import (
	"fmt"
	"os"

	"storyreel/internal/config"
	"storyreel/internal/genai"
	"storyreel/internal/paths"
	"storyreel/internal/story"
)

// loadProject resolves the project directory, its config, and the storyboard.
// The project root must already exist; init creates it.
func loadProject() (paths.ProjectPaths, config.Config, story.Storyboard, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return paths.ProjectPaths{}, config.Config{}, story.Storyboard{}, err
	}

	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return pp, config.Config{}, story.Storyboard{}, fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return pp, config.Config{}, story.Storyboard{}, fmt.Errorf("project directory does not exist: %s (run init first)", pp.Root)
	}
	if err := pp.EnsureMetaDirs(); err != nil {
		return pp, config.Config{}, story.Storyboard{}, err
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return pp, config.Config{}, story.Storyboard{}, err
	}

	board, err := story.Load(pp.StoryboardFile)
	if err != nil {
		return pp, cfg, story.Storyboard{}, err
	}

	return pp, cfg, board, nil
}

// keyStoreFor returns the credential source: the STORYREEL_API_KEY env var
// wins, otherwise the project key file.
func keyStoreFor(pp paths.ProjectPaths) genai.KeyStore {
	if key := os.Getenv("STORYREEL_API_KEY"); key != "" {
		return genai.StaticKeyStore{Key: key}
	}
	return genai.NewFileKeyStore(pp.KeysFile)
}

// serviceFor builds the generation client for the configured endpoint.
func serviceFor(pp paths.ProjectPaths, cfg config.Config) (genai.Service, error) {
	baseURL := cfg.Service.BaseURL
	if env := os.Getenv("STORYREEL_SERVICE_URL"); env != "" {
		baseURL = env
	}
	if baseURL == "" {
		return nil, fmt.Errorf("no service endpoint configured: set service.base_url in %s or STORYREEL_SERVICE_URL", pp.ConfigFile)
	}
	return genai.NewClient(baseURL, keyStoreFor(pp)), nil
}
