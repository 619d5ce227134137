package main

import (
	"fmt"
	"os"
	"time"

	"github.com/clawmancat/symgen/internal/common"
	"github.com/clawmancat/symgen/internal/config"
	"github.com/clawmancat/symgen/internal/demangle"
	"github.com/clawmancat/symgen/internal/manifest"
	"github.com/clawmancat/symgen/internal/pluginfilter"
	"github.com/clawmancat/symgen/internal/scanner"
	"github.com/clawmancat/symgen/internal/tu"
	"github.com/clawmancat/symgen/internal/workpool"
)

func failedStart(message string, err error) {
	_, _ = fmt.Fprintln(os.Stderr, fmt.Sprint("failed to start symgen: ", message, ": ", err))
	os.Exit(1)
}

func main() {
	showVersionAndExit := common.CmdEnvBool("Show version and exit", false,
		"version", "")
	showVersionAndExitShort := common.CmdEnvBool("Show version and exit", false,
		"v", "")
	libraryName := common.CmdEnvString("Library name emitted after LIBRARY.", "",
		"lib", "SYMGEN_LIB")
	inputDir := common.CmdEnvString("Input directory, recursively scanned for .obj files.", "",
		"i", "SYMGEN_I")
	outputPath := common.CmdEnvString("Output .def path.", "",
		"o", "SYMGEN_O")
	include := common.CmdEnvString("Space-separated include regexes, matched against namespace components.", "",
		"y", "SYMGEN_Y")
	exclude := common.CmdEnvString("Space-separated exclude regexes, matched against namespace components.", "",
		"n", "SYMGEN_N")
	forceInclude := common.CmdEnvString("Space-separated force-include regexes, matched against the full demangled name.", "",
		"yo", "SYMGEN_YO")
	forceExclude := common.CmdEnvString("Space-separated force-exclude regexes, matched against the full demangled name.", "",
		"no", "SYMGEN_NO")
	pluginPath := common.CmdEnvString("Path to an optional filter plugin.", "",
		"fn", "SYMGEN_FN")
	useCache := common.CmdEnvBool("Enable the per-TU on-disk decision cache.", false,
		"cache", "SYMGEN_CACHE")
	emitOrdinal := common.CmdEnvBool("Emit dense ordinals with NONAME.", false,
		"ordinal", "SYMGEN_ORDINAL")
	concurrency := common.CmdEnvInt("Worker count, default hardware concurrency.", 0,
		"j", "SYMGEN_J")
	verbose := common.CmdEnvBool("Verbose logging.", false,
		"verbose", "SYMGEN_VERBOSE")
	trace := common.CmdEnvBool("Trace logging (implies verbose).", false,
		"trace", "SYMGEN_TRACE")

	common.ParseCmdFlagsCombiningWithEnv()

	if *showVersionAndExit || *showVersionAndExitShort {
		fmt.Println(common.GetVersion())
		os.Exit(0)
	}

	level := common.Normal
	if *verbose || *trace {
		level = common.Verbose
	}
	log := common.New(os.Stderr, level)

	cfg, err := config.Build(config.Raw{
		LibraryName:  *libraryName,
		InputDir:     *inputDir,
		OutputPath:   *outputPath,
		Include:      *include,
		Exclude:      *exclude,
		ForceInclude: *forceInclude,
		ForceExclude: *forceExclude,
		PluginPath:   *pluginPath,
		Concurrency:  *concurrency,
		UseCache:     *useCache,
		EmitOrdinal:  *emitOrdinal,
		Verbose:      *verbose,
		Trace:        *trace,
	})
	if err != nil {
		failedStart("invalid configuration", err)
	}

	log.Normalf(fmt.Sprintf("settings: y=%q n=%q yo=%q no=%q fn=%q cache=%v ordinal=%v j=%d",
		cfg.Rules.Include.Raw, cfg.Rules.Exclude.Raw, cfg.Rules.ForceInclude.Raw, cfg.Rules.ForceExclude.Raw,
		cfg.PluginPath, cfg.UseCache, cfg.EmitOrdinal, cfg.Concurrency))

	if cfg.WarnFnWithCache() {
		log.Warningf("plugin filter (-fn) is combined with -cache: a cached decision does not record which plugin produced it, so changing the plugin between runs can leave stale decisions in place")
	}

	var plugin pluginfilter.Filter = pluginfilter.AlwaysKeep
	if cfg.PluginPath != "" {
		loaded, err := pluginfilter.Load(cfg.PluginPath)
		if err != nil {
			failedStart("failed to load filter plugin "+cfg.PluginPath, err)
		}
		plugin = loaded
	}

	start := time.Now()

	paths, err := scanner.FindObjectFiles(cfg.InputDir)
	if err != nil {
		failedStart("failed to scan input directory "+cfg.InputDir, err)
	}

	settings := cfg.CacheSettings()
	demangler := demangle.NewMSVCDemangler()

	task := func(objPath string) (tu.Result, error) {
		p := &tu.Processor{
			Demangler: demangler,
			Rules:     cfg.Rules,
			Plugin:    plugin,
			Settings:  settings,
			UseCache:  cfg.UseCache,
			Log:       log.Fork(objPath),
		}
		return p.Process(objPath)
	}

	global, errs := workpool.Run(paths, int(cfg.Concurrency), task)
	if len(errs) > 0 {
		failedStart("failed to process one or more translation units", errs[0])
	}

	if err := manifest.Write(cfg.OutputPath, cfg.LibraryName, global, cfg.EmitOrdinal); err != nil {
		failedStart("failed to write manifest "+cfg.OutputPath, err)
	}

	log.Normalf(fmt.Sprintf("processed %d object files, exported %d symbols in %s", len(paths), len(global), time.Since(start)))
}
