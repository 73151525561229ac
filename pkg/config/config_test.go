package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if len(cfg.Campaigns) != 2 || cfg.Defaults.MaxPosts != 300 || cfg.Defaults.Since != "2019-12-12" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HG_TEST_TOKEN", "secret-from-env")
	path := writeFile(t, dir, "hashgraph.yaml", `
data_dir: ./out/data
api:
  bearer_token: ${HG_TEST_TOKEN}
  timeout: 5s
campaigns:
  - name: climate
    hashtags: ["#ClimateAction", "#Net0"]
    max_posts: 50
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "./out/data" || cfg.OutputDir != "figures" {
		t.Errorf("dirs: %q %q", cfg.DataDir, cfg.OutputDir)
	}
	if cfg.API.BearerToken != "secret-from-env" {
		t.Errorf("token not expanded: %q", cfg.API.BearerToken)
	}
	if cfg.API.Timeout != 5*time.Second || cfg.API.PageSize != 100 {
		t.Errorf("api: %+v", cfg.API)
	}
	if len(cfg.Campaigns) != 1 {
		t.Fatalf("campaign list should be replaced, got %d", len(cfg.Campaigns))
	}

	cp, err := cfg.Campaign("climate")
	if err != nil {
		t.Fatal(err)
	}
	if cp.MaxPosts != 50 || cp.Since != "2019-12-12" || cp.Lang != "en" || cp.Title != "climate" || cp.FilePrefix != "climate" {
		t.Errorf("resolved campaign: %+v", cp)
	}
	if _, err := cfg.Campaign("nope"); !errors.Is(err, ErrUnknownCampaign) {
		t.Errorf("expected ErrUnknownCampaign, got %v", err)
	}
}

func TestLoadStrict(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.yaml", "data_dirr: typo\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "YAML") {
		t.Errorf("expected strict decode error, got %v", err)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, "secrets.env", BearerTokenEnv+"=from-dotenv\n")
	path := writeFile(t, dir, "cfg.yaml", "env_file: "+envPath+"\n")

	os.Unsetenv(BearerTokenEnv)
	t.Cleanup(func() { os.Unsetenv(BearerTokenEnv) })

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.API.BearerToken != "from-dotenv" {
		t.Errorf("token from dotenv = %q", cfg.API.BearerToken)
	}

	missing := writeFile(t, dir, "missing.yaml", "env_file: "+filepath.Join(dir, "absent.env")+"\n")
	if _, err := Load(missing); err == nil {
		t.Error("an explicit env_file that does not exist should fail")
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 0
	cfg.Defaults.Since = "12/12/2019"
	cfg.Campaigns = append(cfg.Campaigns, Campaign{Name: "pro"}, Campaign{})

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{"workers", "defaults.since", "duplicate name", "name must be set", "at least one hashtag"} {
		if !strings.Contains(msg, want) {
			t.Errorf("missing %q in %q", want, msg)
		}
	}
}
