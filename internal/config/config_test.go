package config

import "testing"

func TestBuildRequiresLibraryName(t *testing.T) {
	_, err := Build(Raw{InputDir: "in", OutputPath: "out.def"})
	if err == nil {
		t.Errorf("expected an error when -lib is missing")
	}
}

func TestBuildRequiresInputDir(t *testing.T) {
	_, err := Build(Raw{LibraryName: "X", OutputPath: "out.def"})
	if err == nil {
		t.Errorf("expected an error when -i is missing")
	}
}

func TestBuildDefaultsConcurrency(t *testing.T) {
	cfg, err := Build(Raw{LibraryName: "X", InputDir: "in", OutputPath: "out.def"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if cfg.Concurrency <= 0 {
		t.Errorf("expected a positive default concurrency, got %d", cfg.Concurrency)
	}
}

func TestBuildRejectsBadRegex(t *testing.T) {
	_, err := Build(Raw{LibraryName: "X", InputDir: "in", OutputPath: "out.def", Include: "(unterminated"})
	if err == nil {
		t.Errorf("expected an error for an invalid include regex")
	}
}

func TestCacheSettingsOmitsUnsetFields(t *testing.T) {
	cfg, err := Build(Raw{LibraryName: "X", InputDir: "in", OutputPath: "out.def", Include: "ns"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	settings := cfg.CacheSettings()
	if settings["y"] != "ns" {
		t.Errorf("expected y=ns in cache settings, got %q", settings["y"])
	}
	if _, ok := settings["n"]; ok {
		t.Errorf("did not expect an 'n' entry when -n was never set")
	}
}

func TestWarnFnWithCache(t *testing.T) {
	cfg, err := Build(Raw{LibraryName: "X", InputDir: "in", OutputPath: "out.def", PluginPath: "plug.so", UseCache: true})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !cfg.WarnFnWithCache() {
		t.Errorf("expected WarnFnWithCache to be true when both plugin and cache are set")
	}
}
