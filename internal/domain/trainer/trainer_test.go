package trainer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/nurtas/bloomcast/internal/domain/model"
	"github.com/nurtas/bloomcast/internal/domain/trainer"
)

var testNow = time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)

// linearData builds a noiseless dataset where the label is an exact linear
// function of two features.
func linearData(n int) trainer.TrainingData {
	data := trainer.TrainingData{FeatureNames: []string{"season_factor", "weekday_factor"}}
	for i := 0; i < n; i++ {
		x1 := float64(i) * 0.1
		x2 := float64(i % 7)
		data.Features = append(data.Features, []float64{x1, x2})
		data.Labels = append(data.Labels, 4+2*x1+0.5*x2)
	}
	return data
}

func TestTrainerFactory(t *testing.T) {
	Convey("Given the trainer factory", t, func() {
		Convey("When creating each supported algorithm", func() {
			for _, name := range trainer.Algorithms() {
				tr, err := trainer.New(name)
				So(err, ShouldBeNil)
				So(tr.Algorithm(), ShouldEqual, name)
			}
		})

		Convey("When the algorithm name is unknown", func() {
			tr, err := trainer.New("gradient_boosting")
			So(tr, ShouldBeNil)
			So(errors.Is(err, trainer.ErrUnknownAlgorithm), ShouldBeTrue)
		})
	})
}

func TestTrainingDataSplit(t *testing.T) {
	Convey("Given a 100-sample dataset", t, func() {
		data := linearData(100)

		Convey("When splitting with a 0.2 holdout", func() {
			train, test := data.Split(0.2)

			So(train.Len(), ShouldEqual, 80)
			So(test.Len(), ShouldEqual, 20)

			Convey("Then the cut is chronological", func() {
				So(train.Labels[0], ShouldEqual, data.Labels[0])
				So(test.Labels[0], ShouldEqual, data.Labels[80])
				So(test.Labels[19], ShouldEqual, data.Labels[99])
			})
		})

		Convey("When the ratio is out of range", func() {
			train, test := data.Split(1.5)
			So(train.Len(), ShouldEqual, 80)
			So(test.Len(), ShouldEqual, 20)
		})
	})
}

func TestSynthetic(t *testing.T) {
	Convey("Given the synthetic demand generator", t, func() {
		Convey("When generating 90 days with a fixed seed", func() {
			data := trainer.Synthetic(90, 7, testNow)

			Convey("Then it covers every day, store and SKU", func() {
				So(data.Len(), ShouldEqual, 90*3*6)
				So(data.FeatureNames, ShouldResemble, trainer.FeatureNames)
			})

			Convey("Then the feature columns stay in their model ranges", func() {
				for _, row := range data.Features {
					So(len(row), ShouldEqual, 6)
					So(row[0], ShouldBeBetweenOrEqual, 0.7, 1.3)  // season
					So(row[1], ShouldBeIn, []float64{1.0, 1.4})   // weekday
					So(row[2], ShouldBeIn, []float64{1.0, 3.5})   // holiday
					So(row[3], ShouldBeBetweenOrEqual, -10, 30)   // temperature
					So(row[4], ShouldBeIn, []float64{0, 2, 5})    // precipitation
					So(row[5], ShouldBeBetweenOrEqual, 0, 0.9)    // trend
				}
				for _, label := range data.Labels {
					So(label, ShouldBeGreaterThanOrEqualTo, 0)
				}
			})

			Convey("Then the window crossing March 8 carries holiday rows", func() {
				holidayRows := 0
				for _, row := range data.Features {
					if row[2] == 3.5 {
						holidayRows++
					}
				}
				// 90 days back from June 4 covers March 8 and Nauryz.
				So(holidayRows, ShouldEqual, 2*3*6)
			})
		})

		Convey("When generating twice with the same seed", func() {
			a := trainer.Synthetic(30, 42, testNow)
			b := trainer.Synthetic(30, 42, testNow)
			So(a, ShouldResemble, b)
		})

		Convey("When the seeds differ", func() {
			a := trainer.Synthetic(30, 1, testNow)
			b := trainer.Synthetic(30, 2, testNow)
			So(a.Labels, ShouldNotResemble, b.Labels)
		})

		Convey("When days is not positive", func() {
			data := trainer.Synthetic(0, 5, testNow)
			So(data.Len(), ShouldEqual, 90*3*6)
		})
	})
}

func TestLinearRegression(t *testing.T) {
	Convey("Given an exactly linear dataset", t, func() {
		data := linearData(50)

		tr, err := trainer.New(trainer.AlgorithmLinearRegression)
		So(err, ShouldBeNil)

		Convey("When training", func() {
			res, err := tr.Train(context.Background(), data)
			So(err, ShouldBeNil)

			Convey("Then the coefficients are recovered", func() {
				So(res.Params["intercept"], ShouldAlmostEqual, 4, 1e-6)
				So(res.Params["season_factor"], ShouldAlmostEqual, 2, 1e-6)
				So(res.Params["weekday_factor"], ShouldAlmostEqual, 0.5, 1e-6)
			})

			Convey("Then the holdout is fit perfectly", func() {
				So(res.Algorithm, ShouldEqual, trainer.AlgorithmLinearRegression)
				So(res.Metrics.MAE, ShouldBeLessThan, 1e-6)
				So(res.Metrics.Accuracy, ShouldBeGreaterThan, 0.999)
				So(res.TrainingSamples, ShouldEqual, 40)
				So(res.TestSamples, ShouldEqual, 10)
				So(res.Metrics.SampleSize, ShouldEqual, 10)
			})
		})

		Convey("When a feature column is constant", func() {
			flat := trainer.TrainingData{FeatureNames: []string{"x"}}
			for i := 0; i < 12; i++ {
				flat.Features = append(flat.Features, []float64{1})
				flat.Labels = append(flat.Labels, float64(i))
			}

			_, err := tr.Train(context.Background(), flat)
			So(errors.Is(err, trainer.ErrSingular), ShouldBeTrue)
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := tr.Train(ctx, data)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "training cancelled")
		})
	})
}

func TestDecisionTree(t *testing.T) {
	Convey("Given synthetic demand data", t, func() {
		data := trainer.Synthetic(90, 11, testNow)

		tr, err := trainer.New(trainer.AlgorithmDecisionTree)
		So(err, ShouldBeNil)

		Convey("When training", func() {
			res, err := tr.Train(context.Background(), data)
			So(err, ShouldBeNil)

			So(res.Algorithm, ShouldEqual, trainer.AlgorithmDecisionTree)
			So(res.Params["max_depth"], ShouldEqual, 10)
			So(res.Params["min_samples_split"], ShouldEqual, 5)

			Convey("Then feature importance is normalized over all columns", func() {
				imp, ok := res.Params["feature_importance"].(map[string]float64)
				So(ok, ShouldBeTrue)
				So(len(imp), ShouldEqual, len(trainer.FeatureNames))

				total := 0.0
				for _, v := range imp {
					So(v, ShouldBeGreaterThanOrEqualTo, 0)
					total += v
				}
				So(total, ShouldAlmostEqual, 1, 1e-9)
			})

			Convey("Then evaluation is capped at 100 holdout samples", func() {
				So(res.TestSamples, ShouldEqual, 324)
				So(res.Metrics.SampleSize, ShouldEqual, 100)
				So(res.Metrics.RMSE, ShouldBeGreaterThan, 0)
				So(res.Metrics.Accuracy, ShouldBeBetweenOrEqual, 0, 1)
			})
		})
	})
}

func TestRandomForest(t *testing.T) {
	Convey("Given synthetic demand data", t, func() {
		data := trainer.Synthetic(90, 5, testNow)

		Convey("When training a seeded forest", func() {
			tr, err := trainer.New(trainer.AlgorithmRandomForest,
				trainer.WithEstimators(15), trainer.WithSeed(3))
			So(err, ShouldBeNil)

			res, err := tr.Train(context.Background(), data)
			So(err, ShouldBeNil)

			So(res.Algorithm, ShouldEqual, trainer.AlgorithmRandomForest)
			So(res.Params["n_estimators"], ShouldEqual, 15)

			Convey("Then the out-of-bag score is a valid R-squared", func() {
				oob, ok := res.Params["oob_score"].(float64)
				So(ok, ShouldBeTrue)
				So(oob, ShouldBeBetweenOrEqual, 0, 1)
			})

			Convey("Then the run is reproducible under the seed", func() {
				again, err := tr.Train(context.Background(), data)
				So(err, ShouldBeNil)
				So(again.Metrics, ShouldResemble, res.Metrics)
				So(again.Params["oob_score"], ShouldEqual, res.Params["oob_score"])
			})
		})

		Convey("When the context is cancelled before the first tree", func() {
			tr, err := trainer.New(trainer.AlgorithmRandomForest, trainer.WithEstimators(5))
			So(err, ShouldBeNil)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err = tr.Train(ctx, data)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "training cancelled after 0 trees")
		})
	})
}

func TestTrainingDataValidation(t *testing.T) {
	Convey("Given a linear trainer", t, func() {
		tr, err := trainer.New(trainer.AlgorithmLinearRegression)
		So(err, ShouldBeNil)

		Convey("When the dataset is too small", func() {
			_, err := tr.Train(context.Background(), linearData(5))
			So(errors.Is(err, trainer.ErrNotEnoughData), ShouldBeTrue)
		})

		Convey("When a row has the wrong width", func() {
			data := linearData(20)
			data.Features[7] = []float64{1, 2, 3}

			_, err := tr.Train(context.Background(), data)
			So(errors.Is(err, trainer.ErrBadShape), ShouldBeTrue)
		})

		Convey("When feature names are missing", func() {
			data := linearData(20)
			data.FeatureNames = nil

			_, err := tr.Train(context.Background(), data)
			So(errors.Is(err, trainer.ErrBadShape), ShouldBeTrue)
		})
	})
}

func TestFromSales(t *testing.T) {
	Convey("Given real sales history", t, func() {
		records := []model.SalesRecord{
			{Date: time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), Store: "almaty_2", SKU: "Тюльпан_красный", Quantity: 30},
			{Date: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC), Store: "almaty_1", SKU: "Роза_красная_60см", Quantity: 12},
			{Date: time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), Store: "almaty_1", SKU: "Роза_красная_60см", Quantity: 55},
		}

		Convey("When building training data", func() {
			data, err := trainer.FromSales(records, 9)
			So(err, ShouldBeNil)

			Convey("Then rows are ordered chronologically", func() {
				So(data.Len(), ShouldEqual, 3)
				So(data.Labels, ShouldResemble, []float64{12, 55, 30})
			})

			Convey("Then calendar features reflect the dates", func() {
				So(data.FeatureNames, ShouldResemble, trainer.FeatureNames)

				// March 8 is a holiday and a Saturday in 2025.
				So(data.Features[1][1], ShouldEqual, 1.4)
				So(data.Features[1][2], ShouldEqual, 3.5)

				// March 7 is a plain Friday, trend starts at zero.
				So(data.Features[0][1], ShouldEqual, 1.0)
				So(data.Features[0][2], ShouldEqual, 1.0)
				So(data.Features[0][5], ShouldEqual, 0)

				// Two days after the first record.
				So(data.Features[2][5], ShouldAlmostEqual, 0.02, 1e-9)
			})
		})

		Convey("When the seed is fixed the filler columns repeat", func() {
			a, err := trainer.FromSales(records, 4)
			So(err, ShouldBeNil)
			b, err := trainer.FromSales(records, 4)
			So(err, ShouldBeNil)
			So(a, ShouldResemble, b)
		})

		Convey("When there are no records", func() {
			_, err := trainer.FromSales(nil, 1)
			So(errors.Is(err, trainer.ErrNotEnoughData), ShouldBeTrue)
		})
	})
}
