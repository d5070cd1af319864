// Package spatcv provides a spatially-aware machine learning pipeline for
// geographic point data: it detects spatial autocorrelation in the
// response, selects a cross-validation strategy that respects it, trains a
// boosted-tree model with cross-validated early stopping, diagnoses
// overfitting, and projects the model onto a covariate grid.
//
// # Why spatial cross-validation
//
// Randomly partitioned folds leak information when nearby samples share
// their environment: a model evaluated that way looks better than it will
// perform on unsurveyed terrain. spatcv measures the leakage risk first
// (global Moran's I plus a Mantel permutation test) and only falls back to
// stratified random folds when the response shows no spatial structure.
//
// # Quick start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/geospatial-ml/spatcv/dataset"
//	    "github.com/geospatial-ml/spatcv/pipeline"
//	)
//
//	func main() {
//	    schema, _ := dataset.NewFeatureSchema([]string{"elev", "ndvi"})
//	    ss, err := dataset.NewSampleSet(schema, samples) // your survey data
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    result, err := pipeline.Run(ss, pipeline.NewConfig().WithSeed(42))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("strategy:", result.Strategy)
//	    fmt.Println("best iteration:", result.Model.TrainedRounds())
//	}
//
// # Packages
//
//   - dataset: validated samples and the named feature schema
//   - geo: great-circle distances, neighbor graphs, block projection
//   - autocorr: Moran's I and Mantel autocorrelation detection
//   - cv: spatial-block and stratified random fold strategies
//   - boost: gradient-boosted trees with cross-validated early stopping
//   - diag: overfit diagnostics over the evaluation log
//   - grid, predict: covariate grids and model projection
//   - pipeline: end-to-end orchestration with one root seed
//
// Every random choice in the pipeline derives deterministically from the
// root seed, so identical inputs reproduce identical folds, models, and
// surfaces.
package spatcv
