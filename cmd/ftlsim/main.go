// Package main is the ftlsim command-line entry point.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/flashbench/ftlsim/internal/config"
	"github.com/flashbench/ftlsim/internal/ftl"
	"github.com/flashbench/ftlsim/internal/log"
	"github.com/flashbench/ftlsim/internal/metrics"
	"github.com/flashbench/ftlsim/internal/report"
	"github.com/flashbench/ftlsim/internal/runinfo"
	"github.com/flashbench/ftlsim/internal/workload"
)

var (
	appName, gitTag, gitCommit string
)

func main() {
	var (
		showVersion  = kingpin.Flag("version", "show version and exit").Default().Bool()
		logLevel     = kingpin.Flag("log-level", "set log level: debug, info, warn, error").Default("info").Envar("FTLSIM_LOG_LEVEL").String()
		configFile   = kingpin.Flag("config-file", "path to config file").Default("").Envar("FTLSIM_CONFIG_FILE").String()
		scenarioFile = kingpin.Flag("scenario-file", "path to a scenario file pinning workload+policy+geometry, applied on top of config-file").Default("").String()
		policyName   = kingpin.Flag("policy", "GC victim-selection policy name").Default("").String()
		seed         = kingpin.Flag("seed", "RNG seed override").Default("0").Int64()
		outCSV       = kingpin.Flag("out-csv", "append the run summary to this CSV file").Default("").String()
	)
	kingpin.Parse()

	log.SetLevel(*logLevel)
	log.SetApplication(appName)

	if *showVersion {
		fmt.Printf("%s %s-%s\n", appName, gitTag, gitCommit)
		os.Exit(0)
	}

	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.Warnf("failed to set GOMAXPROCS: %s", err)
	}

	cfg, err := config.NewConfig(*configFile)
	if err != nil {
		log.Errorln("create config failed: ", err)
		os.Exit(1)
	}

	if *scenarioFile != "" {
		if err := config.LoadScenario(*scenarioFile, cfg); err != nil {
			log.Errorln("load scenario failed: ", err)
			os.Exit(1)
		}
	}

	if *policyName != "" {
		cfg.Policy = *policyName
	}
	if *seed != 0 {
		cfg.RNGSeed = *seed
	}

	if err := cfg.Validate(); err != nil {
		log.Errorln("validate config failed: ", err)
		os.Exit(1)
	}

	summary, err := run(cfg)
	if err != nil {
		log.Errorln("run failed: ", err)
		os.Exit(1)
	}

	row := report.Row{Summary: summary, Run: runinfo.Collect()}
	if *outCSV != "" {
		if err := report.AppendCSV(*outCSV, row); err != nil {
			log.Errorln("write csv summary failed: ", err)
			os.Exit(1)
		}
	}
	if err := report.WriteJSON(os.Stdout, row); err != nil {
		log.Errorln("write json summary failed: ", err)
		os.Exit(1)
	}

	log.Infof("run complete: policy=%s waf=%.3f gc_count=%d", summary.Policy, summary.WAF, summary.GCCount)
}

func run(cfg *config.Config) (metrics.Summary, error) {
	pol, err := cfg.NewPolicy()
	if err != nil {
		return metrics.Summary{}, err
	}

	dev := ftl.NewDevice(cfg.DeviceConfig())
	sim := ftl.NewSimulator(dev, pol, cfg.SimulatorConfig())

	if err := sim.Warmup(); err != nil {
		return metrics.Summary{}, err
	}

	ops := workload.GenerateHotCold(cfg.WorkloadConfig())
	if err := sim.Run(ops); err != nil {
		return metrics.Summary{}, err
	}

	return metrics.Summarize(dev, pol.Name(), int64(len(ops)), cfg.IOProfile, cfg.Note), nil
}
