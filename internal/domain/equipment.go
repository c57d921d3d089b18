package domain

import "time"

// EquipmentReport is a snapshot of device health for one trading point,
// upserted as a single status row. Unlike events it carries no history; a
// missed report is simply superseded by the next one.
type EquipmentReport struct {
	PointID       int
	ClientCamera  bool
	ChefCamera    bool
	CashierCamera bool
	ScaleCamera   bool
	ScaleLink     bool
	Microphone    bool
	Speaker       bool
	CPUTemp       float64
	Hour          int
	CheckedAt     time.Time
}
