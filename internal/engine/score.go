package engine

import (
	"math"
	"sort"

	"maintenance-status-backend/internal/model"
)

// Scoring weights. The score is a relative ranking heuristic for deciding
// which machines deserve attention first, not a calibrated probability.
const (
	stoppageHoursWeight  = 2
	totalOrdersWeight    = 3
	openOrdersWeight     = 5
	criticalCategoryMult = 1.5
)

// MachineScore is the per-machine aggregate the problem report is built from.
type MachineScore struct {
	MachineID      int64                 `json:"machineId"`
	MachineName    string                `json:"machineName"`
	Category       model.MachineCategory `json:"category"`
	TotalStoppages int                   `json:"totalStoppages"`
	StoppageHours  float64               `json:"stoppageHours"`
	TotalOrders    int                   `json:"totalOrders"`
	OpenOrders     int                   `json:"openOrders"`
	Score          float64               `json:"score"`
}

// ScoreMachines aggregates order and stoppage history into a risk score per
// machine and returns the ranking, highest score first. Orders of any type
// count; open means neither done nor cancelled. Critical machines carry a
// 1.5x multiplier.
func ScoreMachines(machines []model.Machine, orders []model.MaintenanceOrder, stoppages []model.Stoppage) []MachineScore {
	byMachine := make(map[int64]*MachineScore, len(machines))
	scores := make([]MachineScore, len(machines))
	for i, m := range machines {
		scores[i] = MachineScore{MachineID: m.ID, MachineName: m.Name, Category: m.Category}
		byMachine[m.ID] = &scores[i]
	}

	for _, o := range orders {
		s, ok := byMachine[o.MachineID]
		if !ok {
			continue
		}
		s.TotalOrders++
		if IsOpen(o) {
			s.OpenOrders++
		}
	}

	for _, st := range stoppages {
		s, ok := byMachine[st.MachineID]
		if !ok {
			continue
		}
		s.TotalStoppages++
		s.StoppageHours += st.DurationHours
	}

	for i := range scores {
		s := &scores[i]
		weight := 1.0
		if s.Category == model.CategoryCritical {
			weight = criticalCategoryMult
		}
		raw := (s.StoppageHours*stoppageHoursWeight +
			float64(s.TotalOrders)*totalOrdersWeight +
			float64(s.OpenOrders)*openOrdersWeight) * weight
		s.Score = math.Round(raw*10) / 10
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].MachineID < scores[j].MachineID
	})
	return scores
}
