package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/signalsfoundry/plant-ots/control"
	"github.com/signalsfoundry/plant-ots/core"
	"github.com/signalsfoundry/plant-ots/internal/logging"
	"github.com/signalsfoundry/plant-ots/model"
	"github.com/signalsfoundry/plant-ots/session"
	"github.com/signalsfoundry/plant-ots/turnctrl"
)

func main() {
	plantType := flag.String("plant", "column", "plant variant: column or heat_exchanger")
	scenarioName := flag.String("scenario", "Normal Operations", "training scenario name")
	configPath := flag.String("config", "", "optional plant config JSON (defaults are built in)")
	turns := flag.Int("turns", 30, "number of turns to run")
	controller := flag.String("controller", "policy", "advisory controller: policy or mpc")
	interval := flag.Duration("interval", 0, "wall-clock pause between turns (0 = as fast as possible)")
	listScenarios := flag.Bool("list-scenarios", false, "print the scenario library and exit")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *listScenarios {
		for _, s := range model.ScenarioLibrary {
			fmt.Printf("%-22s %-14s %-12s %s\n", s.Name, s.Plant, s.Difficulty, s.Description)
		}
		return
	}

	cfg, err := loadConfig(model.PlantType(*plantType), *configPath)
	if err != nil {
		log.Error(ctx, "failed to load plant config", logging.String("error", err.Error()))
		os.Exit(1)
	}

	scenario, ok := model.FindScenario(*scenarioName, cfg.Type)
	if !ok {
		log.Error(ctx, "unknown scenario",
			logging.String("scenario", *scenarioName),
			logging.String("plant", string(cfg.Type)))
		os.Exit(1)
	}

	sess, err := session.New(cfg, scenario, log, nil)
	if err != nil {
		log.Error(ctx, "failed to start session", logging.String("error", err.Error()))
		os.Exit(1)
	}

	ctl, err := buildController(*controller, cfg)
	if err != nil {
		log.Error(ctx, "failed to build controller", logging.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Printf("Session %s: %s / %q (%s), %d turns under %s control\n",
		sess.ID, cfg.Name, scenario.Name, scenario.Difficulty, *turns, ctl.Name())

	mode := turnctrl.AsFast
	if *interval > 0 {
		mode = turnctrl.Paced
	}
	pacer := turnctrl.NewPacer(*interval, mode)

	err = pacer.Run(ctx, *turns, func(ctx context.Context, turn int) error {
		rec, err := sess.ExecuteControllerTurn(ctx, ctl)
		if err != nil {
			return err
		}
		printTurn(cfg.Type, rec)
		return nil
	})
	switch {
	case err == nil:
	case sess.Over():
		fmt.Println("Run ended in emergency shutdown.")
	default:
		log.Error(ctx, "run aborted", logging.String("error", err.Error()))
	}

	fmt.Println("Summary:", sess.Score())
	for _, ev := range sess.Events() {
		fmt.Printf("  turn %3d [%s] %s\n", ev.Turn, strings.ToUpper(string(ev.Severity)), ev.Message)
	}
}

func loadConfig(plant model.PlantType, path string) (*model.PlantConfig, error) {
	if path != "" {
		return core.LoadPlantConfigFile(path)
	}
	return core.DefaultConfigFor(plant)
}

func buildController(name string, cfg *model.PlantConfig) (control.Controller, error) {
	switch name {
	case "policy":
		return control.NewPolicyController(cfg)
	case "mpc":
		return control.NewMPCController(cfg)
	default:
		return nil, fmt.Errorf("unknown controller %q", name)
	}
}

func printTurn(plant model.PlantType, rec session.TurnRecord) {
	res := rec.Result
	switch plant {
	case model.PlantExchanger:
		fmt.Printf("turn %3d [%-9s] T_hot_out=%6.1f C  Q=%7.0f kW  dP_hot=%5.2f bar  score=%5.1f (%s)\n",
			rec.Turn, res.Outcome,
			res.State[model.TagHotOutT], res.State[model.TagHeatDuty],
			res.State[model.TagHotDP], rec.Score.Total, rec.Score.Grade)
	default:
		fmt.Printf("turn %3d [%-9s] xB=%.4f  dP=%5.3f bar  T_top=%5.1f C  score=%5.1f (%s)\n",
			rec.Turn, res.Outcome,
			res.State[model.TagPurity], res.State[model.TagColumnDP],
			res.State[model.TagOverheadT], rec.Score.Total, rec.Score.Grade)
	}
	if res.Safety.ESDTriggered {
		fmt.Printf("         ESD: %s\n", res.Safety.ESDReason)
	}
}
