package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nurtas/bloomcast/internal/adapters/modelregistry"
	"github.com/nurtas/bloomcast/internal/domain/trainer"
)

type trainFlags struct {
	algorithm string
	all       bool
	compare   bool
	retrain   bool
}

func newTrainCmd(r *rootState) *cobra.Command {
	var flags trainFlags

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train forecasting models and store the metrics",
		Long: "Trains one algorithm (or every supported one with --all) on the stored\n" +
			"sales history, falling back to synthetic data when history is too short,\n" +
			"and persists the results in the model registry. --compare prints the\n" +
			"stored results without training; --retrain retrains the current best.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.runTrain(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}
	cmd.Flags().StringVar(&flags.algorithm, "algorithm", "", "algorithm to train: "+fmt.Sprint(trainer.Algorithms()))
	cmd.Flags().BoolVar(&flags.all, "all", false, "train and compare every supported algorithm")
	cmd.Flags().BoolVar(&flags.compare, "compare", false, "compare already-trained models without training")
	cmd.Flags().BoolVar(&flags.retrain, "retrain", false, "retrain the current best model")
	return cmd
}

func (r *rootState) runTrain(ctx context.Context, out io.Writer, flags trainFlags) error {
	if !flags.all && !flags.compare && !flags.retrain && flags.algorithm == "" {
		return fmt.Errorf("one of --algorithm, --all, --compare or --retrain is required")
	}

	svc := r.buildService(ctx)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop(context.Background())

	switch {
	case flags.compare:
		doc := svc.ModelsDocument(ctx)
		if len(doc.Models) == 0 {
			return fmt.Errorf("no trained models in the registry; run train --all first")
		}
		recs := make([]modelregistry.Record, 0, len(doc.Models))
		for _, rec := range doc.Models {
			recs = append(recs, rec)
		}
		sort.Slice(recs, func(i, j int) bool { return recs[i].Algorithm < recs[j].Algorithm })
		best, _ := svc.BestModel(ctx)
		printRecords(out, recs, best.Algorithm)
		return nil

	case flags.retrain:
		rec, err := svc.RetrainBest(ctx)
		if err != nil {
			return err
		}
		printRecords(out, []modelregistry.Record{rec}, rec.Algorithm)
		return nil

	case flags.all:
		recs, err := svc.TrainAll(ctx)
		if err != nil {
			return err
		}
		best, _ := svc.BestModel(ctx)
		printRecords(out, recs, best.Algorithm)
		return nil
	}

	rec, isBest, err := svc.TrainModel(ctx, flags.algorithm)
	if err != nil {
		return err
	}
	bestMark := ""
	if isBest {
		bestMark = rec.Algorithm
	}
	printRecords(out, []modelregistry.Record{rec}, bestMark)
	return nil
}

func printRecords(out io.Writer, recs []modelregistry.Record, best string) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ALGORITHM\tACCURACY\tMAE\tMAPE\tRMSE\tSAMPLES\t")
	for _, rec := range recs {
		mark := ""
		if rec.Algorithm == best {
			mark = " *"
		}
		fmt.Fprintf(w, "%s%s\t%.1f%%\t%.2f\t%.3f\t%.2f\t%d\t\n",
			rec.Algorithm, mark,
			rec.Metrics.Accuracy*100,
			rec.Metrics.MAE,
			rec.Metrics.MAPE,
			rec.Metrics.RMSE,
			rec.TrainingSamples+rec.TestSamples,
		)
	}
	_ = w.Flush()
	if best != "" {
		fmt.Fprintf(out, "\nbest model: %s\n", best)
	}
}
