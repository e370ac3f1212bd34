package model

import "errors"

// ErrUnknownAnalysisType is returned for selector values outside cnn/rnn/hybrid.
var ErrUnknownAnalysisType = errors.New("unknown analysis type")
