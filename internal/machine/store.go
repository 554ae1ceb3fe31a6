package machine

import (
	"time"

	"filling_line/internal/models"
)

// Tank limits in percent.
const (
	TankFull         = 100.0
	DefaultTankFloor = 10.0
)

// store is the parameter store. It is only touched with Machine.mu held.
type store struct {
	identity models.Identity
	order    models.ProductionOrder

	lot        string
	expiration time.Time

	params models.Parameters

	status    models.MachineStatus
	cleaning  models.CleaningStatus
	tankLevel float64
	station   int
	tickCount uint64

	qualityWeight string
	qualityLevel  string

	counters models.Counters
}

func defaultStore() store {
	var params models.Parameters
	params[models.FillVolume] = models.ProcessParameter{Target: 1000.0, Actual: 999.2}
	params[models.LineSpeed] = models.ProcessParameter{Target: 450.0, Actual: 448.0}
	params[models.ProductTemperature] = models.ProcessParameter{Target: 6.5, Actual: 6.3}
	params[models.CO2Pressure] = models.ProcessParameter{Target: 3.8, Actual: 3.75}
	params[models.CapTorque] = models.ProcessParameter{Target: 22.0, Actual: 21.8}
	params[models.CycleTime] = models.ProcessParameter{Target: 2.67, Actual: 2.68}

	return store{
		identity: models.Identity{
			Name:              "FluidFill Express #2",
			SerialNumber:      "FFE2000-2023-002",
			Plant:             "Dortmund Beverage Center",
			ProductionSegment: "Non-Alcoholic Beverages",
			ProductionLine:    "Juice Filling Line 3",
		},
		order: models.ProductionOrder{
			Number:   "PO-2024-JUICE-5567",
			Article:  "ART-JUICE-APPLE-1L",
			Quantity: 25000,
		},
		lot:           "LOT-2024-APPLE-0456",
		expiration:    time.Date(2026, time.September, 23, 0, 0, 0, 0, time.UTC),
		params:        params,
		status:        models.StatusStopped,
		cleaning:      models.CleaningNormal,
		tankLevel:     67.3,
		station:       1,
		qualityWeight: models.QualityPass,
		qualityLevel:  models.QualityPass,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

