package engine

import "errors"

// ErrDutNotLoaded is returned by any operation that touches the DUT
// handle before a design has ever been loaded.
var ErrDutNotLoaded = errors.New("DUT not loaded")

// ErrDutIsLoading is returned when Load or ModifyProbedPoints is called
// while a previous Load/ModifyProbedPoints is still in flight.
var ErrDutIsLoading = errors.New("DUT is currently (re)loading")
