package domain

// AggregatePolicy resolves several records sharing one (source, destination) pair.
type AggregatePolicy string

const (
	AggregateSum    AggregatePolicy = "sum"
	AggregateLast   AggregatePolicy = "last"
	AggregateMax    AggregatePolicy = "max"
	AggregateReject AggregatePolicy = "reject"
)

func (p AggregatePolicy) Valid() bool {
	switch p {
	case AggregateSum, AggregateLast, AggregateMax, AggregateReject:
		return true
	}
	return false
}

// UnknownEntityPolicy applies when a canonical list is pinned and a record
// names an identifier outside it.
type UnknownEntityPolicy string

const (
	UnknownDrop UnknownEntityPolicy = "drop"
	UnknownFail UnknownEntityPolicy = "fail"
)

func (p UnknownEntityPolicy) Valid() bool {
	return p == UnknownDrop || p == UnknownFail
}

type Palette string

const (
	PaletteReds    Palette = "reds"
	PaletteViridis Palette = "viridis"
	PaletteMagma   Palette = "magma"
)
