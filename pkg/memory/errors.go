package memory

import "errors"

var errDuplicatePair = errors.New("memory: connection already exists for pair")
