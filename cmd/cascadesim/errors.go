package main

import "errors"

// Sentinel boundary errors. The simulation never starts when one of
// these is returned: config and topology loading are the only places a
// cascadesim run can fail before the deterministic core takes over.
var (
	ErrConfigIO    = errors.New("config io error")
	ErrConfigParse = errors.New("config parse error")
	ErrInputIO     = errors.New("input io error")
	ErrInputParse  = errors.New("input parse error")
)
