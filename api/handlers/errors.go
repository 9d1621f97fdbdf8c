package handlers

import "errors"

var (
	errNoArtifacts = errors.New("no trained model is loaded")
	errNoRawData   = errors.New("raw dataset is not loaded")
	errNoHistory   = errors.New("prediction history is not enabled")
)
