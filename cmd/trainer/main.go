package main

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"forestdash/internal/config"
	"forestdash/internal/data"
	"forestdash/internal/models"
	"forestdash/internal/training"
	"forestdash/pkg/utils"
)

var (
	cfgFile  string
	settings *config.Settings
	logger   *zap.Logger
)

// savedModel is what run writes with --model-out.
type savedModel struct {
	Dataset  string
	Target   string
	Features []string
	Forest   *models.RandomForest
}

func main() {
	root := &cobra.Command{
		Use:   "trainer",
		Short: "Train dashboard models and generate synthetic data",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			s, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			settings = s
			logger = utils.Configure(s.Log.File, s.Log.Level)
			return nil
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML settings file (default ./forestdash.yaml)")
	root.AddCommand(runCmd(), genPatientsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var (
		task       string
		engineName string
		dataset    string
		target     string
		feats      []string
		estimators int
		maxDepth   int
		positive   string
		modelOut   string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one training pass and log its metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := data.LoadFixtures()
			if err != nil {
				return err
			}
			presets := training.DefaultPresets()
			if dataset != "" {
				p := presets[data.Task(task)]
				ds, err := reg.Get(dataset)
				if err != nil {
					return err
				}
				p.Dataset, p.Target, p.Features, p.Signal = ds.Name, ds.Target, nil, nil
				for _, h := range ds.Headers() {
					if h != ds.Target {
						p.Features = append(p.Features, h)
					}
				}
				presets[data.Task(task)] = p
			}
			session, err := training.NewSession(presets, reg)
			if err != nil {
				return err
			}
			if _, err := session.SetTask(data.Task(task)); err != nil {
				return err
			}
			if target != "" {
				if _, err := session.SetTargetColumn(target); err != nil {
					return err
				}
			}
			if len(feats) > 0 {
				if _, err := session.SetSelectedFeatures(feats); err != nil {
					return err
				}
			}
			patch := training.HyperparameterPatch{}
			if cmd.Flags().Changed("estimators") {
				patch.NEstimators = &estimators
			}
			if cmd.Flags().Changed("max-depth") {
				patch.MaxDepth = &maxDepth
			}
			if _, err := session.SetHyperparameters(patch); err != nil {
				return err
			}

			if engineName == "" {
				engineName = settings.Training.Engine
			}
			var engine training.Engine
			switch engineName {
			case "fitted":
				f := training.NewFitted(settings.Training.Seed)
				f.Positive = positive
				engine = f
			case "synthetic":
				engine = training.NewSimulator(settings.Training.Delay, settings.Training.FailureRate, settings.Training.Seed)
			default:
				return fmt.Errorf("unknown engine %q", engineName)
			}

			st := session.Snapshot()
			ds, err := session.Dataset()
			if err != nil {
				return err
			}
			logger.Info("training",
				zap.String("engine", engine.Name()),
				zap.String("dataset", st.Dataset),
				zap.String("target", st.TargetColumn),
				zap.Strings("features", st.SelectedFeatures),
				zap.Int("estimators", st.Hyperparameters.NEstimators))

			start := time.Now()
			res, err := engine.Train(cmd.Context(), st, ds)
			took := time.Since(start)
			if err != nil {
				logger.Warn("training failed", zap.String("engine", engine.Name()), zap.Duration("took", took), zap.Error(err))
				return fmt.Errorf("train: %w", err)
			}

			logger.Info("training finished", zap.String("engine", engine.Name()), zap.Duration("took", took))
			m := res.Metrics
			switch res.Task {
			case data.Regression:
				logger.Info("regression metrics", zap.Float64("r2", m.R2), zap.Float64("rmse", m.RMSE), zap.Float64("mae", m.MAE))
			default:
				logger.Info("classification metrics",
					zap.Float64("accuracy", m.Accuracy),
					zap.Float64("precision", m.Precision),
					zap.Float64("recall", m.Recall),
					zap.Any("confusion_matrix", m.ConfusionMatrix))
			}
			for _, fi := range res.FeatureImportance {
				logger.Debug("importance", zap.String("feature", fi.Feature), zap.Float64("weight", fi.Importance))
			}

			if modelOut == "" {
				return nil
			}
			if res.Model == nil {
				return fmt.Errorf("engine %s produces no model to save", engine.Name())
			}
			return saveModel(modelOut, savedModel{Dataset: st.Dataset, Target: st.TargetColumn, Features: res.Encoded, Forest: res.Model})
		},
	}
	f := cmd.Flags()
	f.StringVar(&task, "task", string(data.Classification), "regression|classification")
	f.StringVar(&engineName, "engine", "", "synthetic|fitted (default from settings)")
	f.StringVar(&dataset, "dataset", "", "dataset to train on instead of the task preset")
	f.StringVar(&target, "target", "", "target column")
	f.StringSliceVar(&feats, "features", nil, "feature columns")
	f.IntVar(&estimators, "estimators", 100, "trees in the forest")
	f.IntVar(&maxDepth, "max-depth", 10, "maximum tree depth")
	f.StringVar(&positive, "positive", "", "target value counted as the positive class (fitted)")
	f.StringVar(&modelOut, "model-out", "", "gob file for the fitted forest")
	return cmd
}

func saveModel(path string, m savedModel) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(m); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	logger.Info("model saved", zap.String("path", path), zap.Int("trees", len(m.Forest.Trees)))
	return nil
}

func genPatientsCmd() *cobra.Command {
	var (
		n    int
		seed uint64
		out  string
	)
	cmd := &cobra.Command{
		Use:   "gen-patients",
		Short: "Write a synthetic patient vitals CSV",
		RunE: func(_ *cobra.Command, _ []string) error {
			logger.Info("generating patients", zap.Int("n", n), zap.Uint64("seed", seed), zap.String("out", out))
			if err := data.WritePatientsCSV(n, seed, out); err != nil {
				return fmt.Errorf("write patients: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 1000, "number of patients")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "generator seed")
	cmd.Flags().StringVar(&out, "out", "data/patients.csv", "output CSV path")
	return cmd
}
