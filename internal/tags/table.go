package tags

import (
	"fmt"
	"io"

	"filling_line/internal/models"
)

// ID identifies one tag of the address space.
type ID int

const (
	MachineName ID = iota
	MachineSerialNumber
	Plant
	ProductionSegment
	ProductionLine

	ProductionOrder
	Article
	Quantity
	CurrentLotNumber
	ExpirationDate

	TargetFillVolume
	TargetLineSpeed
	TargetProductTemperature
	TargetCO2Pressure
	TargetCapTorque
	TargetCycleTime

	ActualFillVolume
	ActualLineSpeed
	ActualProductTemperature
	ActualCO2Pressure
	ActualCapTorque
	ActualCycleTime
	FillAccuracyDeviation

	MachineStatus
	CurrentStation
	ProductLevelTank
	CleaningCycleStatus
	QualityCheckWeight
	QualityCheckLevel

	GoodBottles
	BadBottlesVolume
	BadBottlesWeight
	BadBottlesCap
	BadBottlesOther
	TotalBadBottles
	TotalBottles

	GoodBottlesOrder
	BadBottlesOrder
	TotalBottlesOrder
	ProductionOrderProgress

	ActiveAlarms
	AlarmCount

	Count
)

type binding struct {
	name string
	kind Kind
	read func(s *models.MachineState) Value
}

// bindings is indexed by ID; its length is fixed by Count so a tag added to
// the enum without a binding leaves a zero entry that init rejects.
var bindings = [Count]binding{
	MachineName:         {"MachineName", KindString, func(s *models.MachineState) Value { return StringValue(s.Identity.Name) }},
	MachineSerialNumber: {"MachineSerialNumber", KindString, func(s *models.MachineState) Value { return StringValue(s.Identity.SerialNumber) }},
	Plant:               {"Plant", KindString, func(s *models.MachineState) Value { return StringValue(s.Identity.Plant) }},
	ProductionSegment:   {"ProductionSegment", KindString, func(s *models.MachineState) Value { return StringValue(s.Identity.ProductionSegment) }},
	ProductionLine:      {"ProductionLine", KindString, func(s *models.MachineState) Value { return StringValue(s.Identity.ProductionLine) }},

	ProductionOrder:  {"ProductionOrder", KindString, func(s *models.MachineState) Value { return StringValue(s.Order.Number) }},
	Article:          {"Article", KindString, func(s *models.MachineState) Value { return StringValue(s.Order.Article) }},
	Quantity:         {"Quantity", KindUInt32, func(s *models.MachineState) Value { return UInt32Value(s.Order.Quantity) }},
	CurrentLotNumber: {"CurrentLotNumber", KindString, func(s *models.MachineState) Value { return StringValue(s.LotNumber) }},
	ExpirationDate:   {"ExpirationDate", KindDateTime, func(s *models.MachineState) Value { return DateTimeValue(s.ExpirationDate) }},

	TargetFillVolume:         {"TargetFillVolume", KindDouble, target(models.FillVolume)},
	TargetLineSpeed:          {"TargetLineSpeed", KindDouble, target(models.LineSpeed)},
	TargetProductTemperature: {"TargetProductTemperature", KindDouble, target(models.ProductTemperature)},
	TargetCO2Pressure:        {"TargetCO2Pressure", KindDouble, target(models.CO2Pressure)},
	TargetCapTorque:          {"TargetCapTorque", KindDouble, target(models.CapTorque)},
	TargetCycleTime:          {"TargetCycleTime", KindDouble, target(models.CycleTime)},

	ActualFillVolume:         {"ActualFillVolume", KindDouble, actual(models.FillVolume)},
	ActualLineSpeed:          {"ActualLineSpeed", KindDouble, actual(models.LineSpeed)},
	ActualProductTemperature: {"ActualProductTemperature", KindDouble, actual(models.ProductTemperature)},
	ActualCO2Pressure:        {"ActualCO2Pressure", KindDouble, actual(models.CO2Pressure)},
	ActualCapTorque:          {"ActualCapTorque", KindDouble, actual(models.CapTorque)},
	ActualCycleTime:          {"ActualCycleTime", KindDouble, actual(models.CycleTime)},
	FillAccuracyDeviation:    {"FillAccuracyDeviation", KindDouble, func(s *models.MachineState) Value { return DoubleValue(s.FillAccuracyDeviation()) }},

	MachineStatus:       {"MachineStatus", KindString, func(s *models.MachineState) Value { return StringValue(string(s.Status)) }},
	CurrentStation:      {"CurrentStation", KindString, func(s *models.MachineState) Value { return StringValue(fmt.Sprintf("Station %d", s.Station)) }},
	ProductLevelTank:    {"ProductLevelTank", KindDouble, func(s *models.MachineState) Value { return DoubleValue(s.TankLevel) }},
	CleaningCycleStatus: {"CleaningCycleStatus", KindString, func(s *models.MachineState) Value { return StringValue(string(s.Cleaning)) }},
	QualityCheckWeight:  {"QualityCheckWeight", KindString, func(s *models.MachineState) Value { return StringValue(s.QualityCheckWeight) }},
	QualityCheckLevel:   {"QualityCheckLevel", KindString, func(s *models.MachineState) Value { return StringValue(s.QualityCheckLevel) }},

	GoodBottles:      {"GoodBottles", KindUInt32, func(s *models.MachineState) Value { return UInt32Value(s.Counters.GoodBottles) }},
	BadBottlesVolume: {"BadBottlesVolume", KindUInt32, func(s *models.MachineState) Value { return UInt32Value(s.Counters.BadBottlesVolume) }},
	BadBottlesWeight: {"BadBottlesWeight", KindUInt32, func(s *models.MachineState) Value { return UInt32Value(s.Counters.BadBottlesWeight) }},
	BadBottlesCap:    {"BadBottlesCap", KindUInt32, func(s *models.MachineState) Value { return UInt32Value(s.Counters.BadBottlesCap) }},
	BadBottlesOther:  {"BadBottlesOther", KindUInt32, func(s *models.MachineState) Value { return UInt32Value(s.Counters.BadBottlesOther) }},
	TotalBadBottles:  {"TotalBadBottles", KindUInt32, func(s *models.MachineState) Value { return UInt32Value(s.Counters.TotalBadBottles()) }},
	TotalBottles:     {"TotalBottles", KindUInt32, func(s *models.MachineState) Value { return UInt32Value(s.Counters.TotalBottles()) }},

	GoodBottlesOrder:        {"GoodBottlesOrder", KindUInt32, func(s *models.MachineState) Value { return UInt32Value(s.Order.GoodBottles) }},
	BadBottlesOrder:         {"BadBottlesOrder", KindUInt32, func(s *models.MachineState) Value { return UInt32Value(s.Order.BadBottles) }},
	TotalBottlesOrder:       {"TotalBottlesOrder", KindUInt32, func(s *models.MachineState) Value { return UInt32Value(s.Order.TotalBottles()) }},
	ProductionOrderProgress: {"ProductionOrderProgress", KindDouble, func(s *models.MachineState) Value { return DoubleValue(s.Order.Progress()) }},

	ActiveAlarms: {"ActiveAlarms", KindStringArray, func(s *models.MachineState) Value { return StringArrayValue(s.AlarmMessages()) }},
	AlarmCount:   {"AlarmCount", KindUInt32, func(s *models.MachineState) Value { return UInt32Value(uint32(len(s.Alarms))) }},
}

var byName = make(map[string]ID, Count)

func init() {
	for id := ID(0); id < Count; id++ {
		b := bindings[id]
		if b.name == "" || b.kind == 0 || b.read == nil {
			panic(fmt.Sprintf("tags: tag %d has no binding", id))
		}
		if _, dup := byName[b.name]; dup {
			panic(fmt.Sprintf("tags: duplicate tag name %q", b.name))
		}
		byName[b.name] = id
	}
}

func target(p models.ParameterID) func(s *models.MachineState) Value {
	return func(s *models.MachineState) Value { return DoubleValue(s.Params[p].Target) }
}

func actual(p models.ParameterID) func(s *models.MachineState) Value {
	return func(s *models.MachineState) Value { return DoubleValue(s.Params[p].Actual) }
}

// Name returns the tag name as exposed to clients.
func (id ID) Name() string {
	if id < 0 || id >= Count {
		return ""
	}
	return bindings[id].name
}

// Kind returns the declared wire type of the tag.
func (id ID) Kind() Kind {
	if id < 0 || id >= Count {
		return 0
	}
	return bindings[id].kind
}

// Lookup resolves a tag name.
func Lookup(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// Values is one reading of every tag, indexed by ID.
type Values [Count]Value

// Read evaluates every binding against s.
func Read(s models.MachineState) Values {
	var out Values
	for id := ID(0); id < Count; id++ {
		out[id] = bindings[id].read(&s)
	}
	return out
}

// WriteTable prints the tag table, one "name<TAB>kind" line per tag.
func WriteTable(w io.Writer) error {
	for id := ID(0); id < Count; id++ {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", id.Name(), id.Kind()); err != nil {
			return err
		}
	}
	return nil
}
