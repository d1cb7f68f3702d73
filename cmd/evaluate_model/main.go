// Command evaluate_model scores a model artifact against the labelled
// survey CSV before it is deployed.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"heartfelt/logger"
	"heartfelt/ml"
)

func main() {
	modelPath := flag.String("model_path", "./models/heart_tree.json", "model artifact path")
	modelType := flag.String("model_type", ml.ModelTypeDecisionTree, "decision_tree or random_forest")
	dataPath := flag.String("data", "", "survey CSV with a HeartDisease column")
	minAccuracy := flag.Float64("min_accuracy", 0, "exit non-zero below this accuracy")
	flag.Parse()

	log, err := logger.New(logger.Config{Level: "info", Format: "console"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *dataPath == "" {
		log.Fatal("data is required")
	}

	model, err := ml.LoadModel(*modelType, *modelPath)
	if err != nil {
		log.Fatal("failed to load model", zap.String("path", *modelPath), zap.Error(err))
	}

	records, err := readRecords(*dataPath)
	if err != nil {
		log.Fatal("failed to read dataset", zap.String("path", *dataPath), zap.Error(err))
	}

	m := ml.Evaluate(model, records)
	log.Info("evaluation finished",
		zap.Int("rows", m.Total),
		zap.Int("failed", m.Failed),
		zap.Float64("accuracy", m.Accuracy()),
		zap.Float64("precision", m.Precision()),
		zap.Float64("recall", m.Recall()),
	)
	fmt.Printf("accuracy=%.4f precision=%.4f recall=%.4f\n", m.Accuracy(), m.Precision(), m.Recall())

	if m.Accuracy() < *minAccuracy {
		log.Fatal("accuracy below threshold", zap.Float64("min_accuracy", *minAccuracy))
	}
}

func readRecords(path string) ([]ml.LabeledRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ml.ReadDataset(file)
}
