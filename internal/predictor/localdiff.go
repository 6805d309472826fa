package predictor

// LocalSamples holds the centered current sample and its four causal
// neighbors. Missing neighbors at image edges are zero, except the
// north-east neighbor on the last column, which falls back to north.
type LocalSamples struct {
	Cur       int32
	North     int32
	NorthEast int32
	NorthWest int32
	West      int32
}

// LocalDiff is the neighbor-narrow local sum together with the central
// and directional differences derived from it.
type LocalDiff struct {
	LocalSum int32
	DC       int32
	DN       int32
	DW       int32
	DNW      int32
}

// ComputeLocalDiff evaluates the neighbor-narrow local sum for the
// sample's position and the four differences against it. In
// column-oriented mode the local sum collapses to 4*north (or 4*west on
// the first line).
//
// On the first line the directional differences are zero; on the first
// column, north substitutes for the unavailable west and north-west
// neighbors. The very first sample of a band has no neighborhood at all:
// its local sum and central difference are both zero.
func ComputeLocalDiff(ctrl CtrlSignals, s LocalSamples, columnOriented bool) LocalDiff {
	var out LocalDiff
	var term1, term2 int32
	if columnOriented {
		if !ctrl.FirstLine {
			term1 = 4 * s.North
		} else {
			term1 = 4 * s.West
		}
	} else {
		switch {
		case !ctrl.FirstLine && !ctrl.FirstInLine && !ctrl.LastInLine:
			term1 = s.West + s.NorthWest
			term2 = s.North + s.NorthEast
		case ctrl.FirstLine && !ctrl.FirstInLine:
			term1 = 4 * s.West
		case !ctrl.FirstLine && ctrl.FirstInLine:
			term1 = 2*s.North + 2*s.NorthEast
		case !ctrl.FirstLine && ctrl.LastInLine:
			term1 = s.West + s.NorthWest
			term2 = 2 * s.North
		}
	}
	out.LocalSum = term1 + term2

	if ctrl.FirstLine && ctrl.FirstInLine {
		out.LocalSum = 0
		out.DC = 0
	} else {
		out.DC = 4*s.Cur - out.LocalSum
	}

	if !ctrl.FirstLine {
		out.DN = 4*s.North - out.LocalSum
		if !ctrl.FirstInLine {
			out.DW = 4*s.West - out.LocalSum
			out.DNW = 4*s.NorthWest - out.LocalSum
		} else {
			out.DW = 4*s.North - out.LocalSum
			out.DNW = 4*s.North - out.LocalSum
		}
	}

	return out
}
